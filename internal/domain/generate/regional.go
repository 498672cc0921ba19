package generate

import (
	"math"

	"github.com/okian/jobmarket/internal/domain/filter"
	"github.com/okian/jobmarket/internal/domain/market"
	"github.com/okian/jobmarket/internal/domain/model"
)

// Random ranges of the regional matrix.
const (
	VacanciesLow    = 500
	VacanciesSpan   = 1000
	MarketShareLow  = 10
	MarketShareSpan = 30
	DemandLow       = 60
	DemandSpan      = 40
)

// Regional builds the region x position matrix. Per region it draws the
// vacancy count and market share first, then one demand value per position.
func Regional(s filter.State, src Source) []model.RegionalEntry {
	avg := s.AvgSalary()
	regions := market.Regions()
	out := make([]model.RegionalEntry, 0, len(regions))
	for _, r := range regions {
		e := model.RegionalEntry{
			Region:         r.Key,
			Name:           r.Name,
			Salaries:       make(map[market.PositionKey]int, len(s.Selected)),
			Demand:         make(map[market.PositionKey]float64, len(s.Selected)),
			TotalVacancies: float64(uniformInt(src, VacanciesLow, VacanciesSpan)) * r.DemandCoef,
			MarketShare:    uniformInt(src, MarketShareLow, MarketShareSpan),
		}
		for _, key := range s.Selected {
			e.Salaries[key] = int(math.Round(avg * r.SalaryCoef * market.SalaryModifier(key)))
			e.Demand[key] = float64(uniformInt(src, DemandLow, DemandSpan)) * r.DemandCoef
		}
		out = append(out, e)
	}
	return out
}

// RegionalSummary condenses each region for stat cards. The average salary is
// taken over the selected positions in the entry and is 0 when none are.
func RegionalSummary(entries []model.RegionalEntry) []model.RegionSummary {
	out := make([]model.RegionSummary, 0, len(entries))
	for _, e := range entries {
		sum := model.RegionSummary{
			Region:      e.Region,
			Name:        e.Name,
			Vacancies:   int(math.Round(e.TotalVacancies)),
			MarketShare: e.MarketShare,
		}
		if len(e.Salaries) > 0 {
			total := 0
			for _, v := range e.Salaries {
				total += v
			}
			sum.AvgSalary = int(math.Round(float64(total) / float64(len(e.Salaries))))
		}
		out = append(out, sum)
	}
	return out
}
