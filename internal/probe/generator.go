package probe

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jobmarket/internal/domain/types"
)

// changeGenerator draws random filter changes.
type changeGenerator struct {
	mu        sync.Mutex
	rng       *rand.Rand
	positions []string
	invalid   int
}

func newChangeGenerator(seed int64, positions []types.Option, invalidEvery int) *changeGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	keys := make([]string, len(positions))
	for i, p := range positions {
		keys[i] = p.Key
	}
	return &changeGenerator{
		rng:       rand.New(rand.NewSource(seed)), //nolint:gosec // load generator, not security
		positions: keys,
		invalid:   invalidEvery,
	}
}

// generate returns n changes. Every invalid-th change is a reversed range.
func (g *changeGenerator) generate(n int) []Change {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]Change, n)
	for i := range out {
		if g.invalid > 0 && (i+1)%g.invalid == 0 {
			out[i] = g.reversed()
			continue
		}
		out[i] = g.next()
	}
	return out
}

func (g *changeGenerator) next() Change {
	c := Change{ID: uuid.New()}
	switch g.rng.Intn(4) {
	case 0:
		c.Kind = ChangeReplace
		c.MinSalary, c.MaxSalary = g.salaryRange()
		c.Selected = g.selection()
	case 1:
		c.Kind = ChangeSalary
		c.MinSalary, c.MaxSalary = g.salaryRange()
	case 2:
		c.Kind = ChangeToggle
		c.Position = g.position()
	default:
		c.Kind = ChangeRefresh
	}
	return c
}

func (g *changeGenerator) reversed() Change {
	lo, hi := g.salaryRange()
	if lo == hi {
		hi += salaryStep
	}
	return Change{ID: uuid.New(), Kind: ChangeSalary, MinSalary: hi, MaxSalary: lo, Invalid: true}
}

func (g *changeGenerator) salaryRange() (int, int) {
	a := salaryFloor + g.rng.Intn(salarySpan/salaryStep)*salaryStep
	b := salaryFloor + g.rng.Intn(salarySpan/salaryStep)*salaryStep
	if a > b {
		a, b = b, a
	}
	return a, b
}

func (g *changeGenerator) selection() []string {
	n := g.rng.Intn(maxSelected + 1)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.position())
	}
	return out
}

func (g *changeGenerator) position() string {
	if len(g.positions) == 0 {
		return "devops"
	}
	return g.positions[g.rng.Intn(len(g.positions))]
}
