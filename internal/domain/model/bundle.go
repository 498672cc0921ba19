package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jobmarket/internal/domain/filter"
)

// Kind names one dataset of a bundle.
type Kind string

// Dataset kinds.
const (
	KindSkills       Kind = "skills"
	KindSalaries     Kind = "salaries"
	KindRequirements Kind = "requirements"
	KindDetailed     Kind = "detailed"
	KindTopJobs      Kind = "top_jobs"
	KindSalaryTrends Kind = "salary_trends"
	KindDemand       Kind = "demand"
	KindRegional     Kind = "regional"
	KindSkillHistory Kind = "skill_history"
)

// PublishOrder is the fixed order in which datasets are pushed to views.
var PublishOrder = []Kind{
	KindSkills,
	KindSalaries,
	KindRequirements,
	KindDetailed,
	KindTopJobs,
	KindSalaryTrends,
	KindDemand,
	KindRegional,
	KindSkillHistory,
}

// ParseKind converts s into a known Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range PublishOrder {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown dataset kind %q", s)
}

// Reason tells why a generation cycle ran.
type Reason string

// Cycle reasons.
const (
	ReasonStartup        Reason = "startup"
	ReasonFilterReplaced Reason = "filter_replaced"
	ReasonSalaryChanged  Reason = "salary_changed"
	ReasonPositionToggle Reason = "position_toggled"
	ReasonRefresh        Reason = "refresh"
)

// Bundle is the full set of datasets produced by one generation cycle.
type Bundle struct {
	ID           uuid.UUID         `json:"id"`
	Cycle        uint64            `json:"cycle"`
	Reason       Reason            `json:"reason"`
	Filter       filter.State      `json:"filter"`
	AvgSalary    float64           `json:"avg_salary"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Skills       []SkillRecord     `json:"skills"`
	Salaries     []PositionSalary  `json:"salaries"`
	Requirements []RequirementCard `json:"requirements"`
	Detailed     SkillGroups       `json:"detailed"`
	TopJobs      []TopJob          `json:"top_jobs"`
	SalaryTrends SalaryTrends      `json:"salary_trends"`
	Demand       []DemandRecord    `json:"demand"`
	Regional     []RegionalEntry   `json:"regional"`
	SkillHistory SkillHistory      `json:"skill_history"`
}

// Dataset is a single dataset of a bundle addressed to views of its kind.
type Dataset struct {
	Kind     Kind      `json:"kind"`
	BundleID uuid.UUID `json:"bundle_id"`
	Cycle    uint64    `json:"cycle"`
	Data     any       `json:"data"`
}

// Dataset extracts the dataset of kind k.
func (b *Bundle) Dataset(k Kind) (Dataset, error) {
	var data any
	switch k {
	case KindSkills:
		data = b.Skills
	case KindSalaries:
		data = b.Salaries
	case KindRequirements:
		data = b.Requirements
	case KindDetailed:
		data = b.Detailed
	case KindTopJobs:
		data = b.TopJobs
	case KindSalaryTrends:
		data = b.SalaryTrends
	case KindDemand:
		data = b.Demand
	case KindRegional:
		data = b.Regional
	case KindSkillHistory:
		data = b.SkillHistory
	default:
		return Dataset{}, fmt.Errorf("unknown dataset kind %q", k)
	}
	return Dataset{Kind: k, BundleID: b.ID, Cycle: b.Cycle, Data: data}, nil
}

// Datasets splits the bundle into its datasets in publish order.
func (b *Bundle) Datasets() []Dataset {
	out := make([]Dataset, 0, len(PublishOrder))
	for _, k := range PublishOrder {
		d, _ := b.Dataset(k)
		out = append(out, d)
	}
	return out
}
