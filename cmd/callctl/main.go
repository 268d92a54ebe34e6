// Command callctl signs and sends provider callbacks and smoke-checks a deployment.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "callctl",
		Short:         "Operator tooling for the call assistant API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSignCommand(),
		newSendCommand(),
		newSmokeCommand(),
	)
	return root
}
