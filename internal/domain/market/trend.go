package market

import "fmt"

// Trend is the qualitative direction of a demand or popularity series.
type Trend string

// Trend values.
const (
	Rising    Trend = "rising"
	Stable    Trend = "stable"
	Declining Trend = "declining"
)

var trendColors = map[Trend]string{
	Rising:    "#2ecc71",
	Stable:    "#3498db",
	Declining: "#e74c3c",
}

// Color returns the bar color used for demand records with this trend.
func (t Trend) Color() string {
	if c, ok := trendColors[t]; ok {
		return c
	}
	return trendColors[Declining]
}

// Valid reports whether t is one of the known trend values.
func (t Trend) Valid() bool {
	_, ok := trendColors[t]
	return ok
}

// ParseTrend converts s into a Trend.
func ParseTrend(s string) (Trend, error) {
	t := Trend(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown trend %q", s)
	}
	return t, nil
}
