// Package types contains the read-only enumeration shapes exposed to view layers
package types

// Option is a selectable enumeration value with its display label
type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// RegionOption is a region with its display name and scaling coefficients
type RegionOption struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	SalaryCoef float64 `json:"salary_coef"`
	DemandCoef float64 `json:"demand_coef"`
}
