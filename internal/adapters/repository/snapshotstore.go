package repository

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/okian/jobmarket/internal/domain/model"
	"github.com/okian/jobmarket/pkg/metrics"
)

const defaultRetention = 32

// SnapshotStore is an in-memory Store. Writers are the orchestrator loop;
// readers are HTTP handlers and stats.
type SnapshotStore struct {
	mu        sync.RWMutex
	datasets  map[model.Kind]model.Dataset
	latest    *model.Bundle
	history   []CycleRef // ring, oldest overwritten first
	next      int
	retention int
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{
		datasets:  make(map[model.Kind]model.Dataset, len(model.PublishOrder)),
		retention: defaultRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history = make([]CycleRef, 0, s.retention)
	return s
}

// Put implements Store.
func (s *SnapshotStore) Put(_ context.Context, d model.Dataset) error {
	if _, err := model.ParseKind(string(d.Kind)); err != nil {
		return fmt.Errorf("put: %w", err)
	}
	s.mu.Lock()
	s.datasets[d.Kind] = d
	s.mu.Unlock()
	metrics.UpdateDatasetSize(string(d.Kind), datasetSize(d.Data))
	return nil
}

// Publish lets the store act as a view sink.
func (s *SnapshotStore) Publish(ctx context.Context, d model.Dataset) error {
	return s.Put(ctx, d)
}

// Commit implements Store.
func (s *SnapshotStore) Commit(_ context.Context, b *model.Bundle) error {
	if b == nil {
		return ErrNilBundle
	}
	ref := CycleRef{
		ID:          b.ID,
		Cycle:       b.Cycle,
		Reason:      b.Reason,
		Filter:      b.Filter.String(),
		GeneratedAt: b.GeneratedAt,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = b
	if len(s.history) < s.retention {
		s.history = append(s.history, ref)
	} else {
		s.history[s.next] = ref
	}
	s.next = (s.next + 1) % s.retention
	return nil
}

// Get implements Store.
func (s *SnapshotStore) Get(_ context.Context, kind model.Kind) (model.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.datasets[kind]
	if !ok {
		return model.Dataset{}, fmt.Errorf("%w: %s", ErrNotFound, kind)
	}
	return d, nil
}

// Latest implements Store.
func (s *SnapshotStore) Latest(_ context.Context) (*model.Bundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNotFound
	}
	return s.latest, nil
}

// Recent implements Store.
func (s *SnapshotStore) Recent(_ context.Context, n int) ([]CycleRef, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := len(s.history)
	n = min(n, size)
	out := make([]CycleRef, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, s.history[(s.next-i+s.retention)%s.retention])
	}
	return out, nil
}

// Count implements Store.
func (s *SnapshotStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets)
}

// datasetSize reports the record count of a dataset payload.
func datasetSize(data any) int {
	switch v := data.(type) {
	case model.SalaryTrends:
		return len(v.Series)
	case model.SkillHistory:
		return len(v.Series)
	case model.SkillGroups:
		return len(v.CoreTechnologies) + len(v.Tools) + len(v.Methodologies)
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map {
		return rv.Len()
	}
	return 0
}
