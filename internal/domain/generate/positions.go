package generate

import (
	"fmt"
	"math"

	"github.com/okian/jobmarket/internal/domain/filter"
	"github.com/okian/jobmarket/internal/domain/market"
	"github.com/okian/jobmarket/internal/domain/model"
)

// Skill percentage adjustment thresholds. The detailed tier uses different ones.
const (
	LowSalaryThreshold  = 150000
	HighSalaryThreshold = 250000

	lowSalaryPenalty  = 20
	lowSalaryFloor    = 40
	highSalaryBonus   = 10
	percentageCeiling = 100
)

// Salaries returns avgSalary*modifier for every selected position.
func Salaries(s filter.State) []model.PositionSalary {
	avg := s.AvgSalary()
	out := make([]model.PositionSalary, 0, len(s.Selected))
	for _, key := range s.Selected {
		out = append(out, model.PositionSalary{
			Position: key,
			Label:    market.PositionLabel(key),
			Salary:   avg * market.SalaryModifier(key),
		})
	}
	return out
}

// Skills merges the base skills of the selected positions and adjusts them to
// the salary level. On a name collision the later position wins but the skill
// keeps the place where it first appeared.
func Skills(s filter.State) []model.SkillRecord {
	var out []model.SkillRecord
	index := make(map[string]int)
	for _, key := range s.Selected {
		p, ok := market.LookupPosition(key)
		if !ok {
			continue
		}
		for _, sk := range p.Skills {
			if i, seen := index[sk.Name]; seen {
				out[i].Percentage = sk.Percentage
				continue
			}
			index[sk.Name] = len(out)
			out = append(out, model.SkillRecord{Name: sk.Name, Percentage: sk.Percentage})
		}
	}
	if out == nil {
		return []model.SkillRecord{}
	}
	avg := s.AvgSalary()
	for i := range out {
		out[i].Percentage = AdjustPercentage(out[i].Percentage, avg)
	}
	return out
}

// AdjustPercentage applies the salary level correction to a skill percentage.
func AdjustPercentage(p int, avgSalary float64) int {
	switch {
	case avgSalary < LowSalaryThreshold:
		p = max(lowSalaryFloor, p-lowSalaryPenalty)
	case avgSalary > HighSalaryThreshold:
		p = min(percentageCeiling, p+highSalaryBonus)
	}
	return min(percentageCeiling, max(0, p))
}

// Requirements returns one vacancy card per selected known position.
func Requirements(s filter.State) []model.RequirementCard {
	out := make([]model.RequirementCard, 0, len(s.Selected))
	for _, key := range s.Selected {
		p, ok := market.LookupPosition(key)
		if !ok {
			continue
		}
		v := p.Vacancy
		out = append(out, model.RequirementCard{
			Key:              key,
			Position:         v.Title,
			Company:          v.Company,
			SalaryRangeLabel: RangeLabel(s.MinSalary, s.MaxSalary, v.Offset),
			Requirements:     append([]string(nil), v.Requirements...),
		})
	}
	return out
}

// RangeLabel formats "{min+offset.Min}-{max+offset.Max}".
func RangeLabel(minSalary, maxSalary int, off market.SalaryOffset) string {
	return fmt.Sprintf("%d-%d", minSalary+off.Min, maxSalary+off.Max)
}

// Demand filters the static demand table down to the selection.
func Demand(s filter.State) []model.DemandRecord {
	out := make([]model.DemandRecord, 0, len(s.Selected))
	for _, key := range s.Selected {
		p, ok := market.LookupPosition(key)
		if !ok {
			continue
		}
		out = append(out, model.DemandRecord{
			Position:    key,
			Label:       p.Label,
			DemandScore: p.Demand,
			Trend:       p.Trend,
			Color:       p.Trend.Color(),
		})
	}
	return out
}

// Detailed returns the skill groups of the tier avgSalary falls into.
func Detailed(s filter.State) model.SkillGroups {
	tier := market.TierFor(s.AvgSalary())
	g := market.TierGroups(tier)
	return model.SkillGroups{
		Tier:             tier,
		CoreTechnologies: detailRecords(g.CoreTechnologies),
		Tools:            detailRecords(g.Tools),
		Methodologies:    detailRecords(g.Methodologies),
	}
}

func detailRecords(in []market.SkillDetail) []model.SkillRecord {
	out := make([]model.SkillRecord, len(in))
	for i, d := range in {
		out[i] = model.SkillRecord{Name: d.Name, Percentage: d.Percentage, Description: d.Description}
	}
	return out
}

// SalaryTrends scales each selected position's baseline by avgSalary/200000.
func SalaryTrends(s filter.State) model.SalaryTrends {
	multiplier := s.AvgSalary() / market.TrendBaselineSalary
	series := make([]model.TrendSeries, 0, len(s.Selected))
	for _, key := range s.Selected {
		p, ok := market.LookupPosition(key)
		if !ok {
			continue
		}
		ts := model.TrendSeries{Key: string(key), Label: p.SalaryTrend.Name, Color: p.SalaryTrend.Color}
		for i, v := range p.SalaryTrend.Points {
			ts.Values[i] = math.Round(v * multiplier)
		}
		series = append(series, ts)
	}
	return model.SalaryTrends{Years: market.TrendYears, Series: series}
}

// TopJobs returns the highlighted vacancies.
func TopJobs() []model.TopJob {
	jobs := market.TopJobs()
	out := make([]model.TopJob, len(jobs))
	for i, j := range jobs {
		out[i] = model.TopJob{
			Title:        j.Title,
			Company:      j.Company,
			Salary:       j.Salary,
			Location:     j.Location,
			Demand:       j.Demand,
			Requirements: append([]string(nil), j.Requirements...),
			Responses:    j.Responses,
		}
	}
	return out
}
