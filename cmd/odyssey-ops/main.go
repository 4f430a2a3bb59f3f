package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-comercial/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "odyssey-ops",
		Short:         "Operational tooling for the Odyssey commercial service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.AddCommand(
		cli.NewQuoteCommand(),
		cli.NewJobsCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		var exitErr cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
