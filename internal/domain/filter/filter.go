// Package filter defines the user-selected filter state that every
// generator reads: a salary range and a set of selected positions.
package filter

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/jobmarket/internal/domain/market"
)

// Fallback bounds used when a salary bound is missing or not numeric.
const (
	DefaultMinSalary = 180000
	DefaultMaxSalary = 220000
)

// MaxSalaryBound is the largest accepted salary bound. It keeps every
// derived figure (averages, modified salaries, range labels) within int.
const MaxSalaryBound = 1_000_000_000

var validate = validator.New()

// State is an immutable snapshot of the dashboard filters.
type State struct {
	MinSalary int                  `json:"min_salary" validate:"gte=0,lte=1000000000"`
	MaxSalary int                  `json:"max_salary" validate:"gte=0,lte=1000000000,gtefield=MinSalary"`
	Selected  []market.PositionKey `json:"selected"`
}

// Defaults describes the fallback bounds applied by Parse.
type Defaults struct {
	MinSalary int
	MaxSalary int
}

// StandardDefaults returns the built-in fallback bounds.
func StandardDefaults() Defaults {
	return Defaults{MinSalary: DefaultMinSalary, MaxSalary: DefaultMaxSalary}
}

// New builds a normalized State. It does not validate.
func New(minSalary, maxSalary int, selected ...market.PositionKey) State {
	return State{
		MinSalary: minSalary,
		MaxSalary: maxSalary,
		Selected:  Normalize(selected),
	}
}

// Parse builds a State from raw user input. Missing or non-numeric bounds
// fall back to d; the result still has to pass Validate.
func Parse(rawMin, rawMax string, selected []string, d Defaults) State {
	minSalary, ok := ParseBound(rawMin)
	if !ok {
		minSalary = d.MinSalary
	}
	maxSalary, ok := ParseBound(rawMax)
	if !ok {
		maxSalary = d.MaxSalary
	}
	keys := make([]market.PositionKey, 0, len(selected))
	for _, s := range selected {
		if s = strings.TrimSpace(s); s != "" {
			keys = append(keys, market.PositionKey(s))
		}
	}
	return New(minSalary, maxSalary, keys...)
}

// ParseBound reads a salary bound. Fractional input is truncated toward zero.
func ParseBound(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// Normalize removes duplicates and orders keys canonically. Unknown keys are
// kept, sorted lexically after the known ones.
func Normalize(keys []market.PositionKey) []market.PositionKey {
	seen := make(map[market.PositionKey]struct{}, len(keys))
	out := make([]market.PositionKey, 0, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ii, jj := market.PositionIndex(out[i]), market.PositionIndex(out[j])
		switch {
		case ii >= 0 && jj >= 0:
			return ii < jj
		case ii >= 0:
			return true
		case jj >= 0:
			return false
		default:
			return out[i] < out[j]
		}
	})
	return out
}

// Validate checks the salary bounds. A reversed range is reported as
// ErrInvalidRange; any other violation, including a bound above
// MaxSalaryBound, as ErrInvalidBounds.
func (s State) Validate() error {
	if s.MinSalary > s.MaxSalary && s.MinSalary >= 0 && s.MaxSalary >= 0 {
		return fmt.Errorf("%w: %d > %d", ErrInvalidRange, s.MinSalary, s.MaxSalary)
	}
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBounds, err)
	}
	return nil
}

// AvgSalary returns the midpoint of the salary range.
func (s State) AvgSalary() float64 {
	return float64(s.MinSalary)/2 + float64(s.MaxSalary)/2
}

// IsSelected reports whether key is in the selection.
func (s State) IsSelected(key market.PositionKey) bool {
	return slices.Contains(s.Selected, key)
}

// WithSalary returns a copy with new bounds.
func (s State) WithSalary(minSalary, maxSalary int) State {
	return State{MinSalary: minSalary, MaxSalary: maxSalary, Selected: s.Clone().Selected}
}

// Toggle returns a copy with key added or removed.
func (s State) Toggle(key market.PositionKey) State {
	next := make([]market.PositionKey, 0, len(s.Selected)+1)
	found := false
	for _, k := range s.Selected {
		if k == key {
			found = true
			continue
		}
		next = append(next, k)
	}
	if !found {
		next = append(next, key)
	}
	return State{MinSalary: s.MinSalary, MaxSalary: s.MaxSalary, Selected: Normalize(next)}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	selected := make([]market.PositionKey, len(s.Selected))
	copy(selected, s.Selected)
	return State{MinSalary: s.MinSalary, MaxSalary: s.MaxSalary, Selected: selected}
}

// String implements fmt.Stringer for logging.
func (s State) String() string {
	keys := make([]string, len(s.Selected))
	for i, k := range s.Selected {
		keys[i] = string(k)
	}
	return fmt.Sprintf("%d-%d [%s]", s.MinSalary, s.MaxSalary, strings.Join(keys, ","))
}
