package service

import (
	"context"
	"fmt"

	"github.com/okian/jobmarket/internal/domain/model"
	"github.com/okian/jobmarket/pkg/logger"
	"github.com/okian/jobmarket/pkg/metrics"
)

// Sink receives the datasets of the kinds it subscribed to.
type Sink interface {
	Publish(ctx context.Context, d model.Dataset) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, d model.Dataset) error

// Publish implements Sink.
func (f SinkFunc) Publish(ctx context.Context, d model.Dataset) error { return f(ctx, d) }

// CycleObserver is told when every dataset of a bundle has been published.
type CycleObserver interface {
	CycleCompleted(ctx context.Context, b *model.Bundle)
}

type subscription struct {
	id   uint64
	sink Sink
}

// Subscribe registers sink for datasets of kind. The returned func removes it.
func (s *Service) Subscribe(kind model.Kind, sink Sink) func() {
	s.sinksMu.Lock()
	defer s.sinksMu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.sinks[kind] = append(s.sinks[kind], subscription{id: id, sink: sink})
	return func() { s.unsubscribe(kind, id) }
}

// SubscribeAll registers sink for every dataset kind.
func (s *Service) SubscribeAll(sink Sink) func() {
	cancels := make([]func(), 0, len(model.PublishOrder))
	for _, k := range model.PublishOrder {
		cancels = append(cancels, s.Subscribe(k, sink))
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}

// Observe registers obs for cycle completions. The returned func removes it.
func (s *Service) Observe(obs CycleObserver) func() {
	s.sinksMu.Lock()
	defer s.sinksMu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.observers[id] = obs
	return func() {
		s.sinksMu.Lock()
		delete(s.observers, id)
		s.sinksMu.Unlock()
	}
}

func (s *Service) unsubscribe(kind model.Kind, id uint64) {
	s.sinksMu.Lock()
	defer s.sinksMu.Unlock()
	subs := s.sinks[kind]
	for i, sub := range subs {
		if sub.id == id {
			s.sinks[kind] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

func (s *Service) sinksFor(kind model.Kind) []subscription {
	s.sinksMu.RLock()
	defer s.sinksMu.RUnlock()
	return append([]subscription(nil), s.sinks[kind]...)
}

func (s *Service) cycleObservers() []CycleObserver {
	s.sinksMu.RLock()
	defer s.sinksMu.RUnlock()
	out := make([]CycleObserver, 0, len(s.observers))
	for _, o := range s.observers {
		out = append(out, o)
	}
	return out
}

// publisher fans a bundle out to the snapshot cache and every subscriber.
type publisher struct {
	s *Service
}

// Publish pushes datasets in publish order. Sink failures are logged and
// counted; they never abort the cycle.
func (p publisher) Publish(ctx context.Context, b *model.Bundle) {
	s := p.s
	for _, d := range b.Datasets() {
		if err := s.store.Put(ctx, d); err != nil {
			s.sinkFailed(ctx, d.Kind, "snapshot", err)
		}
		for _, sub := range s.sinksFor(d.Kind) {
			if err := s.deliver(ctx, sub.sink, d); err != nil {
				s.sinkFailed(ctx, d.Kind, fmt.Sprintf("sink-%d", sub.id), err)
			}
		}
	}
	if err := s.store.Commit(ctx, b); err != nil {
		s.sinkFailed(ctx, "bundle", "snapshot", err)
	}
	for _, obs := range s.cycleObservers() {
		obs.CycleCompleted(ctx, b)
	}
}

func (s *Service) deliver(ctx context.Context, sink Sink, d model.Dataset) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panic: %v", r)
		}
	}()
	return sink.Publish(ctx, d)
}

func (s *Service) sinkFailed(ctx context.Context, kind model.Kind, sink string, err error) {
	metrics.RecordPublishError(string(kind))
	metrics.RecordErrorByComponent("publisher", "sink_error")
	s.logger.Warn(ctx, "dataset publication failed",
		logger.String("kind", string(kind)),
		logger.String("sink", sink),
		logger.Error(err),
	)
}
