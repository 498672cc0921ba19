package queue

import "time"

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum number of pending triggers.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithClock overrides the enqueue timestamp source.
func WithClock(now func() time.Time) Option {
	return func(q *InMemoryQueue) {
		if now != nil {
			q.now = now
		}
	}
}
