// Package service is the view-sync orchestrator: it owns the filter state,
// serializes generation cycles and publishes every dataset to its views.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	eventqueue "github.com/okian/jobmarket/internal/adapters/mq/queue"
	cycleworker "github.com/okian/jobmarket/internal/adapters/mq/worker"
	"github.com/okian/jobmarket/internal/adapters/repository"
	"github.com/okian/jobmarket/internal/domain/filter"
	"github.com/okian/jobmarket/internal/domain/generate"
	"github.com/okian/jobmarket/internal/domain/market"
	"github.com/okian/jobmarket/internal/domain/model"
	"github.com/okian/jobmarket/internal/domain/types"
	"github.com/okian/jobmarket/pkg/logger"
	"github.com/okian/jobmarket/pkg/metrics"
)

const (
	defaultQueueSize      = 64
	defaultPublishTimeout = 2 * time.Second
	defaultRetention      = 32
	shutdownTimeout       = 5 * time.Second
)

// Service implements the dashboard core used by the HTTP API and the CLI.
type Service struct {
	mu sync.RWMutex

	store     *repository.SnapshotStore
	queue     *eventqueue.InMemoryQueue
	worker    *cycleworker.InMemoryWorker
	generator *generate.Generator
	cancel    context.CancelFunc

	sinksMu   sync.RWMutex
	sinks     map[model.Kind][]subscription
	observers map[uint64]CycleObserver
	nextSub   uint64

	queueSize      int
	publishTimeout time.Duration
	retention      int
	initial        filter.State
	defaults       filter.Defaults
	randomSource   generate.Source
	historySource  generate.Source

	started   bool
	startedAt time.Time

	logger logger.Logger
}

// New constructs a Service. Nothing runs until Start.
func New(opts ...Option) *Service {
	s := &Service{
		sinks:          make(map[model.Kind][]subscription),
		observers:      make(map[uint64]CycleObserver),
		queueSize:      defaultQueueSize,
		publishTimeout: defaultPublishTimeout,
		retention:      defaultRetention,
		initial:        filter.New(filter.DefaultMinSalary, filter.DefaultMaxSalary),
		defaults:       filter.StandardDefaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start wires the components, launches the orchestrator loop and runs the
// startup cycle so a snapshot is available as soon as Start returns.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	if err := s.initial.Validate(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}

	s.logger.Info(ctx, "starting dashboard service...")

	s.store = repository.NewSnapshotStore(repository.WithRetention(s.retention))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.generator = generate.New(
		generate.WithSource(s.randomSource),
		generate.WithHistorySource(s.historySource),
	)
	s.worker = cycleworker.NewInMemoryWorker(
		s.queue,
		s.generator,
		publisher{s: s},
		s.initial,
		cycleworker.WithLogger(s.logger.Named("orchestrator")),
	)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	go s.worker.Run(runCtx)

	s.started = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	if _, err := s.submit(ctx, model.ReasonStartup, nil); err != nil {
		s.Stop()
		return fmt.Errorf("startup cycle: %w", err)
	}

	s.logger.Info(ctx, "dashboard service started",
		logger.Int("queueSize", s.queueSize),
		logger.String("filter", s.initial.String()),
	)
	return nil
}

// Stop drains the orchestrator and releases its resources.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping dashboard service...")

	_ = s.queue.Close()
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := s.worker.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "orchestrator shutdown", logger.Error(err))
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "dashboard service stopped")
}

// OnFilterChanged replaces the whole filter and returns the refreshed bundle.
func (s *Service) OnFilterChanged(ctx context.Context, st filter.State) (*model.Bundle, error) {
	next := filter.New(st.MinSalary, st.MaxSalary, st.Selected...)
	return s.submit(ctx, model.ReasonFilterReplaced, func(filter.State) (filter.State, error) {
		return next, nil
	})
}

// SetSalaryRange changes the bounds and keeps the selection.
func (s *Service) SetSalaryRange(ctx context.Context, minSalary, maxSalary int) (*model.Bundle, error) {
	return s.submit(ctx, model.ReasonSalaryChanged, func(cur filter.State) (filter.State, error) {
		return cur.WithSalary(minSalary, maxSalary), nil
	})
}

// TogglePosition adds or removes key from the selection.
func (s *Service) TogglePosition(ctx context.Context, key market.PositionKey) (*model.Bundle, error) {
	return s.submit(ctx, model.ReasonPositionToggle, func(cur filter.State) (filter.State, error) {
		return cur.Toggle(key), nil
	})
}

// Refresh reruns every generator against the current filter.
func (s *Service) Refresh(ctx context.Context) (*model.Bundle, error) {
	return s.submit(ctx, model.ReasonRefresh, nil)
}

// submit enqueues one trigger and waits for its cycle. The caller may stop
// waiting through ctx; the cycle itself is never cancelled.
func (s *Service) submit(ctx context.Context, reason model.Reason, apply eventqueue.Mutation) (*model.Bundle, error) {
	s.mu.RLock()
	if !s.started {
		s.mu.RUnlock()
		return nil, ErrStopped
	}
	q, w := s.queue, s.worker
	s.mu.RUnlock()

	t := eventqueue.NewTrigger(reason, apply)
	if err := q.Enqueue(ctx, t); err != nil {
		switch {
		case errors.Is(err, eventqueue.ErrFull):
			metrics.RecordTriggerRejected("backpressure")
			return nil, ErrBackpressure
		case errors.Is(err, eventqueue.ErrClosed):
			metrics.RecordTriggerRejected("stopped")
			return nil, ErrStopped
		default:
			return nil, fmt.Errorf("enqueue %s: %w", reason, err)
		}
	}

	select {
	case o := <-t.Reply:
		switch {
		case o.Err == nil:
			return o.Bundle, nil
		case errors.Is(o.Err, eventqueue.ErrClosed):
			return nil, ErrStopped
		default:
			return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, o.Err)
		}
	case <-w.Done():
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for %s cycle: %w", reason, ctx.Err())
	}
}

// Latest returns the last complete bundle.
func (s *Service) Latest(ctx context.Context) (*model.Bundle, error) {
	store, err := s.snapshots()
	if err != nil {
		return nil, err
	}
	b, err := store.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return b, nil
}

// Dataset returns the last published dataset of kind.
func (s *Service) Dataset(ctx context.Context, kind model.Kind) (model.Dataset, error) {
	store, err := s.snapshots()
	if err != nil {
		return model.Dataset{}, err
	}
	d, err := store.Get(ctx, kind)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return d, nil
}

// Recent returns up to n recent cycles, newest first.
func (s *Service) Recent(ctx context.Context, n int) ([]repository.CycleRef, error) {
	store, err := s.snapshots()
	if err != nil {
		return nil, err
	}
	return store.Recent(ctx, n)
}

func (s *Service) snapshots() (*repository.SnapshotStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, ErrStopped
	}
	return s.store, nil
}

// Filter returns the current filter.
func (s *Service) Filter() filter.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.worker == nil {
		return s.initial.Clone()
	}
	return s.worker.Filter()
}

// Defaults returns the fallback bounds for raw input.
func (s *Service) Defaults() filter.Defaults {
	return s.defaults
}

// State returns the orchestrator state.
func (s *Service) State() cycleworker.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.worker == nil {
		return cycleworker.Idle
	}
	return s.worker.Phase()
}

// Positions lists the positions with their labels in canonical order.
func (s *Service) Positions() []types.Option {
	keys := market.PositionKeys()
	out := make([]types.Option, len(keys))
	for i, k := range keys {
		out[i] = types.Option{Key: string(k), Label: market.PositionLabel(k)}
	}
	return out
}

// Regions lists the regions with their names in canonical order.
func (s *Service) Regions() []types.RegionOption {
	regions := market.Regions()
	out := make([]types.RegionOption, len(regions))
	for i, r := range regions {
		out[i] = types.RegionOption{Key: string(r.Key), Label: r.Name, SalaryCoef: r.SalaryCoef, DemandCoef: r.DemandCoef}
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":   s.started,
		"queueSize": s.queueSize,
	}
	if s.worker != nil {
		f := s.worker.Filter()
		stats["state"] = s.worker.Phase().String()
		stats["cycles"] = s.worker.Cycles()
		stats["rejected"] = s.worker.Rejected()
		stats["filter"] = f.String()
		stats["avgSalary"] = f.AvgSalary()
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["snapshots"] = s.store.Count(ctx)
		stats["uptimeSeconds"] = int(time.Since(s.startedAt).Seconds())
		if refs, err := s.store.Recent(ctx, 5); err == nil {
			stats["recentCycles"] = refs
		}
	}
	s.sinksMu.RLock()
	subs := 0
	for _, list := range s.sinks {
		subs += len(list)
	}
	stats["subscribers"] = subs
	stats["observers"] = len(s.observers)
	s.sinksMu.RUnlock()
	return stats
}
