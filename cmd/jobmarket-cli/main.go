// Package main provides the jobmarket command line tool: terminal reports of
// the generated datasets and a probe for a running dashboard.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/jobmarket/pkg/logger"
)

func newRootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)
	root := &cobra.Command{
		Use:           "jobmarket-cli",
		Short:         "IT job market dashboard tools",
		Long:          "Renders mock IT labor-market datasets in the terminal and probes a running dashboard with concurrent filter changes.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWith(logFormat, cmd.ErrOrStderr()); err != nil {
				return err
			}
			return logger.SetLevelString(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(newReportCmd(), newProbeCmd())
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
