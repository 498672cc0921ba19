package generate

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Source yields uniform values in [0, 1).
type Source interface {
	Float64() float64
}

type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a goroutine-safe pseudo-random source. A zero seed is
// replaced by the current time.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedSource{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // mock data, not security sensitive
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Sequence replays a fixed list of values, wrapping around at the end.
type Sequence struct {
	mu     sync.Mutex
	values []float64
	next   int
	drawn  int
}

// NewSequence returns a Sequence over values. An empty list always yields 0.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: append([]float64(nil), values...)}
}

// Float64 returns the next scripted value.
func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawn++
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)
	return v
}

// Drawn reports how many values were consumed.
func (s *Sequence) Drawn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawn
}

// unit keeps scripted values inside [0, 1).
func unit(src Source) float64 {
	r := src.Float64()
	switch {
	case r < 0 || math.IsNaN(r):
		return 0
	case r >= 1:
		return math.Nextafter(1, 0)
	}
	return r
}

// uniformInt returns floor(r*span + lo), an integer in [lo, lo+span).
func uniformInt(src Source, lo, span int) int {
	return int(math.Floor(unit(src)*float64(span) + float64(lo)))
}
