package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/call-assistant/pkg/signature"
)

var (
	signToken  string
	signURL    string
	signFields []string
)

func newSignCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the webhook signature for a callback URL and form body",
		Example: `  callctl sign --token $TWILIO_AUTH_TOKEN \
    --url https://calls.example.com/api/voice/status \
    -f CallSid=CA123 -f CallStatus=completed`,
		RunE: runSign,
	}

	cmd.Flags().StringVar(&signToken, "token", "", "Auth token used as the HMAC key")
	cmd.Flags().StringVar(&signURL, "url", "", "Full public callback URL")
	cmd.Flags().StringArrayVarP(&signFields, "field", "f", nil, "Form field as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func runSign(cmd *cobra.Command, args []string) error {
	form, err := parseFields(signFields)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), signature.Compute(signToken, signURL, form))
	return nil
}
