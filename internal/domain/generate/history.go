package generate

import (
	"sort"

	"github.com/okian/jobmarket/internal/domain/market"
	"github.com/okian/jobmarket/internal/domain/model"
)

// SkillHistory synthesizes six monthly popularity points per tracked skill.
// Each skill draws its baseline in [50, 80) then one value per point.
func SkillHistory(src Source) model.SkillHistory {
	skills := market.HistorySkills()
	series := make([]model.TrendSeries, 0, len(skills))
	for _, sk := range skills {
		base := 50 + unit(src)*30
		ts := model.TrendSeries{Key: sk.Name, Label: sk.Name, Color: sk.Color}
		for i := range ts.Values {
			v := base
			step := float64(i)
			switch sk.Trend {
			case market.Rising:
				v += step * (3 + unit(src)*2)
			case market.Declining:
				v -= step * (2 + unit(src))
			default:
				v += unit(src)*4 - 2
			}
			ts.Values[i] = min(max(v, 0), 100)
		}
		series = append(series, ts)
	}
	return model.SkillHistory{Months: market.HistoryMonths, Series: series}
}

// CurrentSkills ranks the tracked skills by their latest value.
func CurrentSkills(h model.SkillHistory) []model.SkillRecord {
	series := append([]model.TrendSeries(nil), h.Series...)
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Last() > series[j].Last()
	})
	out := make([]model.SkillRecord, len(series))
	for i, ts := range series {
		out[i] = model.SkillRecord{Name: ts.Label, Percentage: int(ts.Last())}
	}
	return out
}
