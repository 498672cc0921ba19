package probe

import "time"

// Defaults applied by normalize.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultChanges = 200
	DefaultWorkers = 8
	DefaultTimeout = 10 * time.Second
)

// Salary bounds used when drawing random ranges.
const (
	salaryFloor = 50000
	salarySpan  = 300000
	salaryStep  = 5000
	maxSelected = 4
)

const (
	directoryPermission = 0750
	percentMultiplier   = 100
)
