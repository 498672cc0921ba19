// Package model contains the dataset shapes passed from generators to views.
package model

import (
	"sort"
	"strings"

	"github.com/okian/jobmarket/internal/domain/market"
)

// SkillRecord is a skill with its mention percentage.
type SkillRecord struct {
	Name        string `json:"name"`
	Percentage  int    `json:"percentage"`
	Description string `json:"description,omitempty"`
}

// PositionSalary is the average salary derived for one selected position.
type PositionSalary struct {
	Position market.PositionKey `json:"position"`
	Label    string             `json:"label"`
	Salary   float64            `json:"salary"`
}

// RequirementCard is one vacancy card rendered per selected position.
type RequirementCard struct {
	Key              market.PositionKey `json:"key"`
	Position         string             `json:"position"`
	Company          string             `json:"company"`
	SalaryRangeLabel string             `json:"salary"`
	Requirements     []string           `json:"requirements"`
}

// DemandRecord is the market demand score of a position.
type DemandRecord struct {
	Position    market.PositionKey `json:"position"`
	Label       string             `json:"label"`
	DemandScore int                `json:"demand"`
	Trend       market.Trend       `json:"trend"`
	Color       string             `json:"color"`
}

// SkillGroups is the detailed skill breakdown for a salary tier.
type SkillGroups struct {
	Tier             market.Tier   `json:"tier"`
	CoreTechnologies []SkillRecord `json:"core_technologies"`
	Tools            []SkillRecord `json:"tools"`
	Methodologies    []SkillRecord `json:"methodologies"`
}

// RegionalEntry is the per-region salary and demand matrix row.
type RegionalEntry struct {
	Region         market.RegionKey               `json:"region"`
	Name           string                         `json:"name"`
	Salaries       map[market.PositionKey]int     `json:"salaries"`
	Demand         map[market.PositionKey]float64 `json:"demand"`
	TotalVacancies float64                        `json:"total_vacancies"`
	MarketShare    int                            `json:"market_share"`
}

// RegionSummary condenses a RegionalEntry for stat cards.
type RegionSummary struct {
	Region      market.RegionKey `json:"region"`
	Name        string           `json:"name"`
	AvgSalary   int              `json:"avg_salary"`
	Vacancies   int              `json:"vacancies"`
	MarketShare int              `json:"market_share"`
}

// TrendSeries is a labelled six point time series.
type TrendSeries struct {
	Key    string     `json:"key"`
	Label  string     `json:"label"`
	Color  string     `json:"color"`
	Values [6]float64 `json:"values"`
}

// Last returns the most recent point of the series.
func (t TrendSeries) Last() float64 {
	return t.Values[len(t.Values)-1]
}

// SalaryTrends is the per-position salary history with its axis labels.
type SalaryTrends struct {
	Years  [6]string     `json:"years"`
	Series []TrendSeries `json:"series"`
}

// SkillHistory is the monthly popularity series of the tracked skills.
type SkillHistory struct {
	Months [6]string     `json:"months"`
	Series []TrendSeries `json:"series"`
}

// TopJob is a highlighted vacancy.
type TopJob struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Salary       int      `json:"salary"`
	Location     string   `json:"location"`
	Demand       int      `json:"demand"`
	Requirements []string `json:"requirements"`
	Responses    int      `json:"responses"`
}

// SortDemand orders records by descending score, keeping ties stable.
func SortDemand(records []DemandRecord) []DemandRecord {
	out := make([]DemandRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DemandScore > out[j].DemandScore
	})
	return out
}

// IsOptional reports whether a requirement is nice-to-have.
func IsOptional(req string) bool {
	return strings.HasPrefix(req, market.OptionalMarker)
}

// StripMarker removes the nice-to-have marker from a requirement.
func StripMarker(req string) string {
	return strings.TrimPrefix(req, market.OptionalMarker)
}
