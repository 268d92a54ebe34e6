package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	smokeBaseURL string
	smokeTimeout time.Duration
)

// requiredMetrics must be exported by a healthy server
var requiredMetrics = []string{"call_signature_enforced"}

func newSmokeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Check health and metrics of a running server",
		RunE:  runSmoke,
	}

	cmd.Flags().StringVar(&smokeBaseURL, "base", "http://localhost:5001", "Server base URL")
	cmd.Flags().DurationVar(&smokeTimeout, "timeout", 5*time.Second, "Timeout per check")

	return cmd
}

func runSmoke(cmd *cobra.Command, args []string) error {
	base := strings.TrimRight(smokeBaseURL, "/")
	out := cmd.OutOrStdout()
	failed := false

	health, err := fetch(cmd.Context(), base+"/healthz", smokeTimeout)
	if err != nil {
		fmt.Fprintf(out, "✗ health: %v\n", err)
		failed = true
	} else {
		var body struct {
			Status            string `json:"status"`
			SignatureEnforced bool   `json:"signature_enforced"`
		}
		if err := json.Unmarshal(health, &body); err != nil || body.Status != "ok" {
			fmt.Fprintf(out, "✗ health: unexpected body %s\n", strings.TrimSpace(string(health)))
			failed = true
		} else {
			fmt.Fprintf(out, "✓ health: ok (signature enforced: %t)\n", body.SignatureEnforced)
			if !body.SignatureEnforced {
				fmt.Fprintln(out, "⚠ webhook signatures are bypassed on this server")
			}
		}
	}

	exposition, err := fetch(cmd.Context(), base+"/metrics", smokeTimeout)
	if err != nil {
		fmt.Fprintf(out, "✗ metrics: %v\n", err)
		failed = true
	} else if missing := missingMetrics(string(exposition), requiredMetrics); len(missing) > 0 {
		fmt.Fprintf(out, "✗ metrics: missing %s\n", strings.Join(missing, ", "))
		failed = true
	} else {
		fmt.Fprintln(out, "✓ metrics: ok")
	}

	if failed {
		return fmt.Errorf("smoke check failed")
	}
	return nil
}

func fetch(parent context.Context, url string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return body, nil
}

func missingMetrics(exposition string, names []string) []string {
	var missing []string
	for _, name := range names {
		if !strings.Contains(exposition, "\n"+name+" ") && !strings.HasPrefix(exposition, name+" ") {
			missing = append(missing, name)
		}
	}
	return missing
}
