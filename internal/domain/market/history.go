package market

// HistoryMonths labels the six monthly buckets of the skill history.
var HistoryMonths = [6]string{"Янв", "Фев", "Март", "Апр", "Май", "Июнь"}

// TrendYears labels the six yearly buckets of the salary trend series.
var TrendYears = [6]string{"2020", "2021", "2022", "2023", "2024 (прогноз)", "2025 (прогноз)"}

// TrendBaselineSalary is the average salary the trend baselines are expressed against.
const TrendBaselineSalary = 200000

// HistorySkill is a tracked technology with a chart color and a trend class.
type HistorySkill struct {
	Name  string
	Color string
	Trend Trend
}

var historySkills = []HistorySkill{
	{"Python", "#3776AB", Rising},
	{"JavaScript", "#F7DF1E", Stable},
	{"Java", "#007396", Stable},
	{"AWS", "#FF9900", Rising},
	{"Docker", "#2496ED", Rising},
	{"Kubernetes", "#326CE5", Rising},
	{"SQL", "#4479A1", Stable},
	{"React", "#61DAFB", Rising},
	{"Node.js", "#339933", Rising},
	{"TypeScript", "#3178C6", Rising},
	{"Go", "#00ADD8", Rising},
	{"Angular", "#DD0031", Declining},
	{"Vue.js", "#4FC08D", Stable},
	{"Git", "#F05032", Stable},
}

// HistorySkills returns the tracked technologies in display order.
func HistorySkills() []HistorySkill {
	out := make([]HistorySkill, len(historySkills))
	copy(out, historySkills)
	return out
}
