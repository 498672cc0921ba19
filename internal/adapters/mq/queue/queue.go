// Package queue holds the bounded trigger queue feeding the orchestrator loop.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jobmarket/internal/domain/filter"
	"github.com/okian/jobmarket/internal/domain/model"
	"github.com/okian/jobmarket/pkg/metrics"
)

const defaultQueueCapacity = 64

// Mutation derives the next filter from the current one.
type Mutation func(current filter.State) (filter.State, error)

// Outcome is the reply of one trigger.
type Outcome struct {
	Bundle *model.Bundle
	Err    error
}

// Trigger asks the orchestrator for one generation cycle.
type Trigger struct {
	ID         uuid.UUID
	Reason     model.Reason
	Apply      Mutation
	Reply      chan Outcome
	EnqueuedAt time.Time
}

// NewTrigger builds a trigger with a buffered reply channel.
func NewTrigger(reason model.Reason, apply Mutation) Trigger {
	return Trigger{
		ID:     uuid.New(),
		Reason: reason,
		Apply:  apply,
		Reply:  make(chan Outcome, 1),
	}
}

// Respond delivers o without blocking. Only the first response is kept.
func (t Trigger) Respond(o Outcome) {
	if t.Reply == nil {
		return
	}
	select {
	case t.Reply <- o:
	default:
	}
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a trigger. It fails with ErrFull or ErrClosed.
	Enqueue(ctx context.Context, t Trigger) error
	// Dequeue returns a channel of triggers, closed when the queue closes.
	Dequeue(ctx context.Context) <-chan Trigger
	Len(ctx context.Context) int
	Cap() int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	triggers chan Trigger
	capacity int
	now      func() time.Time

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.triggers = make(chan Trigger, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0, q.capacity)
	return q
}

// Enqueue adds a trigger to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Trigger) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return err
	}
	t.EnqueuedAt = q.now()

	select {
	case q.triggers <- t:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.triggers), q.capacity)
		return nil
	default:
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue returns a channel that receives triggers in FIFO order.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Trigger {
	out := make(chan Trigger)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case t, ok := <-q.triggers:
				if !ok {
					return
				}
				select {
				case out <- t:
					metrics.RecordQueueDequeue(float64(q.now().Sub(t.EnqueuedAt).Microseconds()) / 1000)
					metrics.UpdateQueueSize(len(q.triggers), q.capacity)
				case <-ctx.Done():
					t.Respond(Outcome{Err: ErrClosed})
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of queued triggers.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.triggers)
	metrics.UpdateQueueSize(size, q.capacity)
	return size
}

// Cap returns the queue capacity.
func (q *InMemoryQueue) Cap() int {
	return q.capacity
}

// Close stops accepting triggers. Pending ones are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.triggers)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
