// Package report renders dashboard datasets in the terminal.
//
// A Renderer is a view: subscribe it to the orchestrator to print every
// dataset as it is published, or call Render with a whole bundle.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/okian/jobmarket/internal/domain/generate"
	"github.com/okian/jobmarket/internal/domain/model"
)

// ErrUnknownDataset is returned for a dataset whose payload has an unexpected type.
var ErrUnknownDataset = errors.New("unknown dataset payload")

const currency = "₽"

// Renderer writes pterm sections to w.
type Renderer struct {
	mu    sync.Mutex
	w     io.Writer
	kinds map[model.Kind]bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithKinds limits output to the given dataset kinds.
func WithKinds(kinds ...model.Kind) Option {
	return func(r *Renderer) {
		if len(kinds) == 0 {
			return
		}
		r.kinds = make(map[model.Kind]bool, len(kinds))
		for _, k := range kinds {
			r.kinds[k] = true
		}
	}
}

// NewRenderer returns a renderer writing to w.
func NewRenderer(w io.Writer, opts ...Option) *Renderer {
	r := &Renderer{w: w}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes a header and every dataset of b in publish order.
func (r *Renderer) Render(b *model.Bundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.write(header(b)); err != nil {
		return err
	}
	for _, d := range b.Datasets() {
		if err := r.renderLocked(d); err != nil {
			return err
		}
	}
	return nil
}

// Publish renders one dataset.
func (r *Renderer) Publish(_ context.Context, d model.Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renderLocked(d)
}

// CycleCompleted prints a one-line footer for the cycle.
func (r *Renderer) CycleCompleted(_ context.Context, b *model.Bundle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.write(pterm.DefaultBasicText.Sprintfln("cycle %d (%s) published %s", b.Cycle, b.Reason, humanize.Time(b.GeneratedAt)))
}

func (r *Renderer) renderLocked(d model.Dataset) error {
	if r.kinds != nil && !r.kinds[d.Kind] {
		return nil
	}
	out, err := Section(d)
	if err != nil {
		return err
	}
	return r.write(out)
}

func (r *Renderer) write(s string) error {
	_, err := io.WriteString(r.w, s)
	return err
}

func header(b *model.Bundle) string {
	selected := make([]string, len(b.Filter.Selected))
	for i, k := range b.Filter.Selected {
		selected[i] = string(k)
	}
	if len(selected) == 0 {
		selected = []string{"none"}
	}
	return pterm.DefaultHeader.Sprintfln("IT job market, cycle %d", b.Cycle) +
		pterm.DefaultBasicText.Sprintfln("Salary %s - %s (average %s), positions: %s",
			Money(float64(b.Filter.MinSalary)), Money(float64(b.Filter.MaxSalary)), Money(b.AvgSalary), strings.Join(selected, ", "))
}

// Section renders one dataset as a titled pterm block.
func Section(d model.Dataset) (string, error) {
	var (
		title string
		body  string
		err   error
	)
	switch data := d.Data.(type) {
	case []model.SkillRecord:
		title = "Skills"
		body, err = skillChart(data)
	case []model.PositionSalary:
		title = "Salaries"
		body, err = salaryTable(data)
	case []model.RequirementCard:
		title = "Requirements"
		body, err = requirementTable(data)
	case model.SkillGroups:
		title = fmt.Sprintf("Skills for the %s tier", data.Tier)
		body, err = detailedTable(data)
	case []model.TopJob:
		title = "Top jobs"
		body, err = topJobsTable(data)
	case model.SalaryTrends:
		title = "Salary trends"
		body, err = seriesTable(data.Years, data.Series, Money)
	case []model.DemandRecord:
		title = "Demand"
		body, err = demandChart(data)
	case []model.RegionalEntry:
		title = "Regions"
		body, err = regionalTable(data)
	case model.SkillHistory:
		title = "Skill popularity"
		body, err = seriesTable(data.Months, data.Series, percent)
	default:
		return "", fmt.Errorf("%w: %s (%T)", ErrUnknownDataset, d.Kind, d.Data)
	}
	if err != nil {
		return "", fmt.Errorf("render %s: %w", d.Kind, err)
	}
	return pterm.DefaultSection.Sprintln(title) + body, nil
}

// Money formats a ruble amount with thousands separators.
func Money(v float64) string {
	return humanize.Comma(int64(math.Round(v))) + " " + currency
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}

func empty() string {
	return pterm.DefaultBasicText.Sprintln("(no positions selected)")
}

func table(rows [][]string) (string, error) {
	if len(rows) <= 1 {
		return empty(), nil
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData(rows)).Srender()
	if err != nil {
		return "", err
	}
	return out + "\n", nil
}

func skillChart(skills []model.SkillRecord) (string, error) {
	if len(skills) == 0 {
		return empty(), nil
	}
	bars := make(pterm.Bars, len(skills))
	for i, s := range skills {
		bars[i] = pterm.Bar{Label: s.Name, Value: s.Percentage}
	}
	out, err := pterm.DefaultBarChart.WithHorizontal().WithShowValue().WithBars(bars).Srender()
	if err != nil {
		return "", err
	}
	return out + "\n", nil
}

func salaryTable(salaries []model.PositionSalary) (string, error) {
	rows := [][]string{{"Position", "Salary"}}
	for _, s := range salaries {
		rows = append(rows, []string{s.Label, Money(s.Salary)})
	}
	return table(rows)
}

func requirementTable(cards []model.RequirementCard) (string, error) {
	rows := [][]string{{"Position", "Company", "Salary", "Requirements"}}
	for _, c := range cards {
		reqs := make([]string, len(c.Requirements))
		for i, req := range c.Requirements {
			reqs[i] = model.StripMarker(req)
			if model.IsOptional(req) {
				reqs[i] += " (optional)"
			}
		}
		rows = append(rows, []string{c.Position, c.Company, c.SalaryRangeLabel, strings.Join(reqs, "; ")})
	}
	return table(rows)
}

func detailedTable(g model.SkillGroups) (string, error) {
	rows := [][]string{{"Group", "Skill", "Share", "Why"}}
	groups := []struct {
		name   string
		skills []model.SkillRecord
	}{
		{"Core technologies", g.CoreTechnologies},
		{"Tools", g.Tools},
		{"Methodologies", g.Methodologies},
	}
	for _, grp := range groups {
		for _, s := range grp.skills {
			rows = append(rows, []string{grp.name, s.Name, fmt.Sprintf("%d%%", s.Percentage), s.Description})
		}
	}
	return table(rows)
}

func topJobsTable(jobs []model.TopJob) (string, error) {
	rows := [][]string{{"Title", "Company", "Location", "Salary", "Responses"}}
	for _, j := range jobs {
		rows = append(rows, []string{j.Title, j.Company, j.Location, Money(float64(j.Salary)), humanize.Comma(int64(j.Responses))})
	}
	return table(rows)
}

func seriesTable(labels [6]string, series []model.TrendSeries, format func(float64) string) (string, error) {
	head := append([]string{""}, labels[:]...)
	rows := [][]string{head}
	for _, s := range series {
		row := []string{s.Label}
		for _, v := range s.Values {
			row = append(row, format(v))
		}
		rows = append(rows, row)
	}
	return table(rows)
}

func demandChart(records []model.DemandRecord) (string, error) {
	sorted := model.SortDemand(records)
	rows := [][]string{{"Position", "Demand", "Trend"}}
	for _, d := range sorted {
		rows = append(rows, []string{d.Label, fmt.Sprintf("%d", d.DemandScore), string(d.Trend)})
	}
	return table(rows)
}

func regionalTable(entries []model.RegionalEntry) (string, error) {
	rows := [][]string{{"Region", "Average salary", "Vacancies", "Market share"}}
	for _, s := range generate.RegionalSummary(entries) {
		rows = append(rows, []string{s.Name, Money(float64(s.AvgSalary)), humanize.Comma(int64(s.Vacancies)), fmt.Sprintf("%d%%", s.MarketShare)})
	}
	return table(rows)
}
