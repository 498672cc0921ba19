package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/sync/errgroup"

	"github.com/okian/jobmarket/internal/schemas"
	"github.com/okian/jobmarket/pkg/logger"
)

// Run executes a complete probe against a running dashboard. It returns the
// collected statistics and a non-nil error if any invariant was violated.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	cfg = normalize(cfg)
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("probe")

	log.Info(ctx, "starting probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("changes", cfg.Changes),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	client := NewHTTPClient(cfg.BaseURL, cfg.Timeout)

	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, err
	}

	positions, err := client.Positions(ctx)
	if err != nil {
		return stats, fmt.Errorf("position catalog: %w", err)
	}

	changes := newChangeGenerator(cfg.Seed, positions, cfg.InvalidEvery).generate(cfg.Changes)
	results, violations := submitChanges(ctx, cfg, client, changes)

	if err := verifyCycles(results); err != nil {
		violations = append(violations, err)
	}
	if err := verifyLatest(ctx, client, results); err != nil {
		violations = append(violations, err)
	}

	tally(stats, results)
	stats.Violations = len(violations)
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	if cfg.OutputFile != "" {
		if err := saveResults(cfg.OutputFile, results); err != nil {
			log.Warn(ctx, "failed to save results", logger.Error(err))
		}
	}

	displayFinalStats(ctx, stats)

	if len(violations) > 0 {
		if cfg.Verbose {
			for _, v := range violations {
				log.Error(ctx, "violation", logger.Error(v))
			}
		}
		return stats, errors.Join(violations...)
	}
	log.Info(ctx, "probe completed successfully")
	return stats, ctx.Err()
}

func normalize(cfg Config) Config {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Changes <= 0 {
		cfg.Changes = DefaultChanges
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	status, _, err := client.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnhealthy, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrServiceUnhealthy, status)
	}
	return nil
}

// submitChanges sends changes with a bounded number of in-flight requests.
// Results keep the order of changes.
func submitChanges(ctx context.Context, cfg Config, client *HTTPClient, changes []Change) ([]Result, []error) {
	results := make([]Result, len(changes))
	var (
		mu         sync.Mutex
		violations []error
	)

	var bar *pb.ProgressBar
	if cfg.Progress != nil {
		bar = pb.New(len(changes)).SetWriter(cfg.Progress).Start()
		defer bar.Finish()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, ch := range changes {
		g.Go(func() error {
			started := time.Now()
			status, body, err := client.Send(gctx, ch)
			var res Result
			if err != nil {
				res = Result{Change: ch, Outcome: OutcomeFailed, Error: err.Error()}
			} else {
				res, err = classify(ch, status, body)
				if err != nil && res.Error == "" {
					res.Error = err.Error()
				}
			}
			res.Latency = time.Since(started)
			results[i] = res
			if err != nil {
				mu.Lock()
				violations = append(violations, fmt.Errorf("change %s (%s): %w", ch.ID, ch.Kind, err))
				mu.Unlock()
			}
			if bar != nil {
				bar.Increment()
			}
			// Failures are collected, not propagated, so one bad response
			// does not cancel the remaining changes.
			return nil
		})
	}
	_ = g.Wait()
	return results, violations
}

// verifyLatest checks that the stored snapshot is at least as new as every
// cycle the probe observed.
func verifyLatest(ctx context.Context, client *HTTPClient, results []Result) error {
	b, body, err := client.Latest(ctx)
	if err != nil {
		return err
	}
	if err := schemas.ValidateBundleJSON(body); err != nil {
		return fmt.Errorf("%w: latest snapshot: %v", ErrViolation, err)
	}
	for _, r := range results {
		if r.Cycle > b.Cycle {
			return fmt.Errorf("%w: latest cycle %d older than observed %d", ErrViolation, b.Cycle, r.Cycle)
		}
	}
	return nil
}

func tally(stats *Stats, results []Result) {
	stats.Submitted = len(results)
	for _, r := range results {
		switch r.Outcome {
		case OutcomeApplied:
			stats.Applied++
		case OutcomeRejected:
			stats.Rejected++
		case OutcomeBackpressure:
			stats.Backpressure++
		default:
			stats.Failed++
		}
	}
}

// saveResults writes the results as a JSON array.
func saveResults(filename string, results []Result) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return os.WriteFile(filename, data, 0o600)
}

// displayFinalStats logs the final statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	rate := 0.0
	if stats.Submitted > 0 {
		rate = float64(stats.Applied) / float64(stats.Submitted) * percentMultiplier
	}
	logger.Named("probe").Info(ctx, "final statistics",
		logger.Duration("duration", stats.Duration),
		logger.Int("submitted", stats.Submitted),
		logger.Int("applied", stats.Applied),
		logger.Int("rejected", stats.Rejected),
		logger.Int("backpressure", stats.Backpressure),
		logger.Int("failed", stats.Failed),
		logger.Int("violations", stats.Violations),
		logger.Float64("appliedRate", rate))
}
