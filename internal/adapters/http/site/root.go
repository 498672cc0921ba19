// Package site serves the embedded dashboard page.
package site

import (
	"context"
	"errors"
	"html/template"
	"math"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/okian/jobmarket/internal/domain/filter"
	"github.com/okian/jobmarket/internal/domain/generate"
	"github.com/okian/jobmarket/internal/domain/market"
	"github.com/okian/jobmarket/internal/domain/model"
	"github.com/okian/jobmarket/internal/domain/types"
	"github.com/okian/jobmarket/pkg/logger"
)

// Error constants
var (
	ErrRender = errors.New("dashboard render failed")
)

// Dependencies are the orchestrator accessors the page is built from.
type Dependencies interface {
	Positions() []types.Option
	Regions() []types.RegionOption
	Filter() filter.State
	Latest(ctx context.Context) (*model.Bundle, error)
}

// Register attaches the dashboard page and its assets to mux.
func Register(_ context.Context, mux *http.ServeMux, deps Dependencies) {
	if mux == nil {
		panic("mux is nil")
	}
	h := NewRootHandler(deps)
	mux.HandleFunc("GET /{$}", h.HandleRoot)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(FS())))
}

var funcs = template.FuncMap{
	"comma": func(v int) string { return humanize.Comma(int64(v)) },
}

// RootHandler renders the dashboard.
type RootHandler struct {
	deps   Dependencies
	page   *template.Template
	logger logger.Logger
}

// NewRootHandler creates a new root handler.
func NewRootHandler(deps Dependencies) *RootHandler {
	return &RootHandler{
		deps:   deps,
		page:   template.Must(template.New("index.html.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/index.html.tmpl")),
		logger: logger.Get().Named("site"),
	}
}

type positionOption struct {
	Key      string
	Label    string
	Selected bool
}

type salaryRow struct {
	Key    string
	Label  string
	Salary string
}

type regionRow struct {
	Key         string
	Name        string
	AvgSalary   string
	Vacancies   string
	MarketShare int
}

type pageData struct {
	MinSalary   int
	MaxSalary   int
	AvgSalary   string
	Positions   []positionOption
	HasSnapshot bool
	Cycle       uint64
	Reason      model.Reason
	Updated     string
	Tier        string
	Salaries    []salaryRow
	Skills      []model.SkillRecord
	Demand      []model.DemandRecord
	Regions     []regionRow
	TopJobs     []model.TopJob
}

// HandleRoot handles GET / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	data := h.build(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.page.Execute(w, data); err != nil {
		h.logger.Error(r.Context(), "render dashboard", logger.Error(errors.Join(ErrRender, err)))
	}
}

func (h *RootHandler) build(ctx context.Context) pageData {
	st := h.deps.Filter()
	data := pageData{
		MinSalary: st.MinSalary,
		MaxSalary: st.MaxSalary,
		AvgSalary: money(st.AvgSalary()),
	}
	for _, p := range h.deps.Positions() {
		data.Positions = append(data.Positions, positionOption{
			Key:      p.Key,
			Label:    p.Label,
			Selected: st.IsSelected(market.PositionKey(p.Key)),
		})
	}

	b, err := h.deps.Latest(ctx)
	if err != nil || b == nil {
		return data
	}
	data.HasSnapshot = true
	data.Cycle = b.Cycle
	data.Reason = b.Reason
	data.Updated = humanize.Time(b.GeneratedAt)
	data.Tier = string(b.Detailed.Tier)
	data.Skills = b.Skills
	data.Demand = model.SortDemand(b.Demand)
	data.TopJobs = b.TopJobs
	for _, s := range b.Salaries {
		data.Salaries = append(data.Salaries, salaryRow{Key: string(s.Position), Label: s.Label, Salary: money(s.Salary)})
	}

	names := make(map[string]string)
	for _, r := range h.deps.Regions() {
		names[r.Key] = r.Label
	}
	for _, s := range generate.RegionalSummary(b.Regional) {
		name := s.Name
		if label, ok := names[string(s.Region)]; ok {
			name = label
		}
		data.Regions = append(data.Regions, regionRow{
			Key:         string(s.Region),
			Name:        name,
			AvgSalary:   humanize.Comma(int64(s.AvgSalary)),
			Vacancies:   humanize.Comma(int64(s.Vacancies)),
			MarketShare: s.MarketShare,
		})
	}
	return data
}

// money renders a ruble amount with thousands separators.
func money(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}
