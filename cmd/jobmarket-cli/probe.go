package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/jobmarket/internal/probe"
)

func newProbeCmd() *cobra.Command {
	var (
		cfg        probe.Config
		noProgress bool
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Fire concurrent filter changes at a running dashboard",
		Long:  "Submits random filter changes with a bounded number of workers, validates every returned bundle against the schema and checks that each change got its own cycle.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !noProgress {
				cfg.Progress = cmd.ErrOrStderr()
			}
			stats, err := probe.Run(cmd.Context(), cfg)
			if stats != nil {
				cmd.Printf("submitted %d, applied %d, rejected %d, backpressure %d, failed %d in %s\n",
					stats.Submitted, stats.Applied, stats.Rejected, stats.Backpressure, stats.Failed, stats.Duration)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&cfg.BaseURL, "url", "u", probe.DefaultBaseURL, "Base URL of the dashboard")
	cmd.Flags().IntVarP(&cfg.Changes, "changes", "n", probe.DefaultChanges, "Number of filter changes")
	cmd.Flags().IntVarP(&cfg.Workers, "workers", "w", probe.DefaultWorkers, "Concurrent workers")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", probe.DefaultTimeout, "HTTP request timeout")
	cmd.Flags().IntVar(&cfg.InvalidEvery, "invalid-every", 10, "Send a reversed salary range every n changes; 0 disables")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", 0, "Seed for the change generator; 0 means time based")
	cmd.Flags().StringVarP(&cfg.OutputFile, "out", "o", "", "Write results to this JSON file")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log every violation")
	return cmd
}
