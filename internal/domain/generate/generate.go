// Package generate turns a filter state into the datasets shown by the
// dashboard. Every generator except the skill history is recomputed on each
// call; the history is drawn once when a Generator is built.
package generate

import (
	"time"

	"github.com/google/uuid"

	"github.com/okian/jobmarket/internal/domain/filter"
	"github.com/okian/jobmarket/internal/domain/model"
)

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSource sets the randomness used by the regional matrix.
func WithSource(src Source) Option {
	return func(g *Generator) {
		if src != nil {
			g.random = src
		}
	}
}

// WithHistorySource sets the randomness used once for the skill history.
func WithHistorySource(src Source) Option {
	return func(g *Generator) {
		if src != nil {
			g.historySource = src
		}
	}
}

// WithClock overrides the bundle timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// Generator produces complete dataset bundles.
type Generator struct {
	random        Source
	historySource Source
	now           func() time.Time
	history       model.SkillHistory
}

// New creates a Generator and draws its skill history.
func New(opts ...Option) *Generator {
	g := &Generator{now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	if g.random == nil {
		g.random = NewSource(0)
	}
	if g.historySource == nil {
		g.historySource = NewSource(0)
	}
	g.history = SkillHistory(g.historySource)
	return g
}

// SkillHistory returns a copy of the history drawn at construction.
func (g *Generator) SkillHistory() model.SkillHistory {
	h := g.history
	h.Series = append([]model.TrendSeries(nil), g.history.Series...)
	return h
}

// Generate runs every generator against one snapshot of s.
func (g *Generator) Generate(s filter.State, cycle uint64, reason model.Reason) *model.Bundle {
	snap := s.Clone()
	return &model.Bundle{
		ID:           uuid.New(),
		Cycle:        cycle,
		Reason:       reason,
		Filter:       snap,
		AvgSalary:    snap.AvgSalary(),
		GeneratedAt:  g.now().UTC(),
		Skills:       Skills(snap),
		Salaries:     Salaries(snap),
		Requirements: Requirements(snap),
		Detailed:     Detailed(snap),
		TopJobs:      TopJobs(),
		SalaryTrends: SalaryTrends(snap),
		Demand:       Demand(snap),
		Regional:     Regional(snap, g.random),
		SkillHistory: g.SkillHistory(),
	}
}
