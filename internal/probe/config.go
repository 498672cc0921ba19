// Package probe fires concurrent filter changes at a running dashboard and
// verifies every bundle it gets back.
package probe

import (
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jobmarket/internal/domain/model"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Changes      int           // Number of filter changes to submit
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	InvalidEvery int           // Every n-th change carries a reversed range; 0 disables
	Seed         int64         // Seed for the change generator; 0 means time based
	OutputFile   string        // Optional JSON file for the results
	Progress     io.Writer     // Progress bar output; nil disables the bar
	Verbose      bool          // Log every failed change
}

// ChangeKind names the endpoint a change is sent to.
type ChangeKind string

// Change kinds.
const (
	ChangeReplace ChangeKind = "replace"
	ChangeSalary  ChangeKind = "salary"
	ChangeToggle  ChangeKind = "toggle"
	ChangeRefresh ChangeKind = "refresh"
)

// Change is one filter change to submit.
type Change struct {
	ID        uuid.UUID  `json:"id"`
	Kind      ChangeKind `json:"kind"`
	MinSalary int        `json:"min_salary,omitempty"`
	MaxSalary int        `json:"max_salary,omitempty"`
	Selected  []string   `json:"selected,omitempty"`
	Position  string     `json:"position,omitempty"`
	Invalid   bool       `json:"invalid,omitempty"`
}

// Outcome classifies a submitted change.
type Outcome string

// Outcomes.
const (
	OutcomeApplied      Outcome = "applied"
	OutcomeRejected     Outcome = "rejected"
	OutcomeBackpressure Outcome = "backpressure"
	OutcomeFailed       Outcome = "failed"
)

// Result records what happened to one change.
type Result struct {
	Change   Change        `json:"change"`
	Outcome  Outcome       `json:"outcome"`
	Status   int           `json:"status"`
	Cycle    uint64        `json:"cycle,omitempty"`
	BundleID uuid.UUID     `json:"bundle_id,omitempty"`
	Reason   model.Reason  `json:"reason,omitempty"`
	Latency  time.Duration `json:"latency"`
	Error    string        `json:"error,omitempty"`
}

// Stats holds probe statistics.
type Stats struct {
	Submitted    int
	Applied      int
	Rejected     int
	Backpressure int
	Failed       int
	Violations   int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}
