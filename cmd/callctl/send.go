package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/call-assistant/pkg/signature"
)

var (
	sendBaseURL    string
	sendPublicBase string
	sendToken      string
	sendFields     []string
	sendTimeout    time.Duration
)

func newSendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <status|recording|transcription|validate>",
		Short: "Post a signed callback to a running server",
		Long: `Post a form-encoded provider callback. When --token is set the request is
signed over --public-base plus the callback path, the same URL the server
reconstructs from PUBLIC_BASE_URL.`,
		Example: `  callctl send recording -f RecordingSid=RE1 -f CallSid=CA123 -f RecordingDuration=42`,
		Args:    cobra.ExactArgs(1),
		RunE:    runSend,
	}

	cmd.Flags().StringVar(&sendBaseURL, "base", "http://localhost:5001", "Server base URL")
	cmd.Flags().StringVar(&sendPublicBase, "public-base", "", "Public base URL used for signing (defaults to --base)")
	cmd.Flags().StringVar(&sendToken, "token", "", "Auth token; unsigned when empty")
	cmd.Flags().StringArrayVarP(&sendFields, "field", "f", nil, "Form field as key=value (repeatable)")
	cmd.Flags().DurationVar(&sendTimeout, "timeout", 10*time.Second, "Request timeout")

	return cmd
}

func runSend(cmd *cobra.Command, args []string) error {
	path, err := callbackPath(args[0])
	if err != nil {
		return err
	}
	form, err := parseFields(sendFields)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), sendTimeout)
	defer cancel()

	target := strings.TrimRight(sendBaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if sendToken != "" {
		publicBase := sendPublicBase
		if publicBase == "" {
			publicBase = sendBaseURL
		}
		signedURL := strings.TrimRight(publicBase, "/") + path
		req.Header.Set(signature.HeaderName, signature.Compute(sendToken, signedURL, form))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %d\n", http.MethodPost, path, resp.StatusCode)
	if len(body) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("callback rejected with status %d", resp.StatusCode)
	}
	return nil
}
