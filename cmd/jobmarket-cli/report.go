package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/jobmarket/internal/domain/filter"
	"github.com/okian/jobmarket/internal/domain/generate"
	"github.com/okian/jobmarket/internal/domain/model"
	"github.com/okian/jobmarket/internal/probe"
	"github.com/okian/jobmarket/internal/report"
)

type reportOptions struct {
	minSalary string
	maxSalary string
	positions []string
	kinds     []string
	seed      int64
	server    string
	timeout   time.Duration
}

func newReportCmd() *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the datasets for a filter",
		Long:  "Generates one bundle for the given salary range and positions and renders it as terminal tables and charts. With --server the filter is applied to a running dashboard and its bundle is rendered instead.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.minSalary, "min", "", "Minimum salary; falls back to the default when empty or not numeric")
	cmd.Flags().StringVar(&opts.maxSalary, "max", "", "Maximum salary; falls back to the default when empty or not numeric")
	cmd.Flags().StringSliceVarP(&opts.positions, "position", "p", nil, "Selected position keys (repeatable or comma separated)")
	cmd.Flags().StringSliceVarP(&opts.kinds, "kind", "k", nil, "Only render these dataset kinds")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Seed for the randomized generators; 0 means time based")
	cmd.Flags().StringVar(&opts.server, "server", "", "Base URL of a running dashboard")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout in server mode")
	return cmd
}

func runReport(cmd *cobra.Command, opts *reportOptions) error {
	kinds := make([]model.Kind, 0, len(opts.kinds))
	for _, s := range opts.kinds {
		k, err := model.ParseKind(s)
		if err != nil {
			return err
		}
		kinds = append(kinds, k)
	}

	st := filter.Parse(opts.minSalary, opts.maxSalary, opts.positions, filter.StandardDefaults())

	var (
		b   *model.Bundle
		err error
	)
	if opts.server != "" {
		b, err = remoteBundle(cmd, opts, st)
	} else {
		b, err = localBundle(opts.seed, st)
	}
	if err != nil {
		return err
	}
	return report.NewRenderer(cmd.OutOrStdout(), report.WithKinds(kinds...)).Render(b)
}

func localBundle(seed int64, st filter.State) (*model.Bundle, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	var opts []generate.Option
	if seed != 0 {
		opts = append(opts,
			generate.WithSource(generate.NewSource(seed)),
			generate.WithHistorySource(generate.NewSource(seed)))
	}
	return generate.New(opts...).Generate(st, 1, model.ReasonStartup), nil
}

func remoteBundle(cmd *cobra.Command, opts *reportOptions, st filter.State) (*model.Bundle, error) {
	selected := make([]string, len(st.Selected))
	for i, k := range st.Selected {
		selected[i] = string(k)
	}
	client := probe.NewHTTPClient(opts.server, opts.timeout)
	status, body, err := client.Post(cmd.Context(), "/api/filter", map[string]any{
		"min_salary": st.MinSalary,
		"max_salary": st.MaxSalary,
		"selected":   selected,
	})
	if err != nil {
		return nil, fmt.Errorf("apply filter: %w", err)
	}
	if status != http.StatusOK {
		var e struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &e)
		return nil, fmt.Errorf("apply filter: %d %s: %s", status, e.Code, e.Message)
	}
	var b model.Bundle
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	return &b, nil
}
