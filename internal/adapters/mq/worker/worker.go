// Package worker runs the orchestrator loop: one goroutine that takes
// triggers off the queue and turns each into a full generation cycle.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/jobmarket/internal/adapters/mq/queue"
	"github.com/okian/jobmarket/internal/domain/filter"
	"github.com/okian/jobmarket/internal/domain/model"
	"github.com/okian/jobmarket/pkg/logger"
	"github.com/okian/jobmarket/pkg/metrics"
)

// ErrStopped is returned to triggers that reach a stopped worker.
var ErrStopped = errors.New("worker stopped")

// Phase is the orchestrator state.
type Phase int32

// Orchestrator states.
const (
	Idle Phase = iota
	Generating
	Publishing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Generating:
		return "generating"
	case Publishing:
		return "publishing"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Generator produces a bundle from one filter snapshot.
type Generator interface {
	Generate(s filter.State, cycle uint64, reason model.Reason) *model.Bundle
}

// Publisher pushes a bundle to the views. It must not fail the cycle.
type Publisher interface {
	Publish(ctx context.Context, b *model.Bundle)
}

// Queue defines how the worker receives triggers.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Trigger
}

// Worker runs generation cycles until stopped.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker owns the filter state and serializes every cycle.
type InMemoryWorker struct {
	queue     Queue
	generator Generator
	publisher Publisher
	name      string
	now       func() time.Time

	mu     sync.RWMutex
	state  filter.State
	cycle  uint64
	phase  atomic.Int32
	failed atomic.Uint64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker that starts from initial.
func NewInMemoryWorker(q Queue, gen Generator, pub Publisher, initial filter.State, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		generator: gen,
		publisher: pub,
		name:      "orchestrator",
		now:       time.Now,
		state:     initial.Clone(),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run consumes triggers until ctx ends, Shutdown is called or the queue closes.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	triggers := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-triggers:
			if !ok {
				return
			}
			w.process(ctx, t)
		}
	}
}

// Shutdown stops the loop after the cycle in progress.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when the loop has exited.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

// Filter returns a copy of the current filter.
func (w *InMemoryWorker) Filter() filter.State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state.Clone()
}

// Cycles returns the number of completed cycles.
func (w *InMemoryWorker) Cycles() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cycle
}

// Rejected returns the number of triggers refused by validation.
func (w *InMemoryWorker) Rejected() uint64 {
	return w.failed.Load()
}

// Phase returns the current orchestrator state.
func (w *InMemoryWorker) Phase() Phase {
	return Phase(w.phase.Load())
}

func (w *InMemoryWorker) setPhase(p Phase) {
	w.phase.Store(int32(p))
	metrics.UpdateOrchestratorState(int(p))
}

// process runs one cycle. The mutation is applied and validated before any
// generator runs; a rejected trigger leaves the state untouched.
func (w *InMemoryWorker) process(ctx context.Context, t queue.Trigger) {
	start := w.now()

	current := w.Filter()
	next := current
	var err error
	if t.Apply != nil {
		next, err = t.Apply(current)
	}
	if err == nil {
		err = next.Validate()
	}
	if err != nil {
		w.failed.Add(1)
		metrics.RecordTriggerRejected("invalid_filter")
		w.logger.Debug(ctx, "trigger rejected",
			logger.String("trigger", t.ID.String()),
			logger.String("reason", string(t.Reason)),
			logger.Error(err),
		)
		t.Respond(queue.Outcome{Err: err})
		return
	}
	next = filter.New(next.MinSalary, next.MaxSalary, next.Selected...)

	w.mu.Lock()
	w.state = next
	w.cycle++
	cycle := w.cycle
	w.mu.Unlock()
	metrics.UpdateFilter(len(next.Selected), next.AvgSalary())

	w.setPhase(Generating)
	genStart := w.now()
	b := w.generator.Generate(next, cycle, t.Reason)
	metrics.RecordGenerateLatency(millis(w.now().Sub(genStart)))

	w.setPhase(Publishing)
	w.publisher.Publish(ctx, b)
	w.setPhase(Idle)

	took := w.now().Sub(start)
	metrics.RecordCycle(string(t.Reason), millis(took))
	w.logger.Debug(ctx, "cycle completed",
		logger.Uint64("cycle", cycle),
		logger.String("reason", string(t.Reason)),
		logger.String("filter", next.String()),
		logger.Duration("took", took),
	)
	t.Respond(queue.Outcome{Bundle: b})
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
