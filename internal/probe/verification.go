package probe

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/okian/jobmarket/internal/domain/filter"
	"github.com/okian/jobmarket/internal/domain/market"
	"github.com/okian/jobmarket/internal/domain/model"
	"github.com/okian/jobmarket/internal/schemas"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var expectedReason = map[ChangeKind]model.Reason{
	ChangeReplace: model.ReasonFilterReplaced,
	ChangeSalary:  model.ReasonSalaryChanged,
	ChangeToggle:  model.ReasonPositionToggle,
	ChangeRefresh: model.ReasonRefresh,
}

// classify turns one response into a Result. A non-nil error means the
// response broke a dashboard invariant.
func classify(ch Change, status int, body []byte) (Result, error) {
	res := Result{Change: ch, Status: status}
	switch status {
	case http.StatusOK:
		res.Outcome = OutcomeApplied
		if ch.Invalid {
			return res, fmt.Errorf("%w: reversed range %d-%d was applied", ErrViolation, ch.MinSalary, ch.MaxSalary)
		}
		b, err := verifyBundle(ch, body)
		if b != nil {
			res.Cycle, res.BundleID, res.Reason = b.Cycle, b.ID, b.Reason
		}
		return res, err
	case http.StatusBadRequest:
		res.Outcome = OutcomeRejected
		var eb errorBody
		if err := json.Unmarshal(body, &eb); err != nil {
			return res, fmt.Errorf("failed to decode error body: %w", err)
		}
		res.Error = eb.Message
		if !ch.Invalid {
			return res, fmt.Errorf("%w: valid change rejected: %s", ErrViolation, eb.Message)
		}
		if eb.Code != "invalid_filter" {
			return res, fmt.Errorf("%w: rejection code %q", ErrViolation, eb.Code)
		}
		return res, nil
	case http.StatusTooManyRequests:
		res.Outcome = OutcomeBackpressure
		return res, nil
	default:
		res.Outcome = OutcomeFailed
		return res, fmt.Errorf("%w: %d", ErrUnexpectedStatus, status)
	}
}

// verifyBundle validates the bundle against the schema and checks that it
// reflects the change that produced it.
func verifyBundle(ch Change, body []byte) (*model.Bundle, error) {
	if err := schemas.ValidateBundleJSON(body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrViolation, err)
	}
	var b model.Bundle
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	if want := expectedReason[ch.Kind]; b.Reason != want {
		return &b, fmt.Errorf("%w: reason %q, want %q", ErrViolation, b.Reason, want)
	}
	if b.AvgSalary != b.Filter.AvgSalary() {
		return &b, fmt.Errorf("%w: avg salary %.1f for range %s", ErrViolation, b.AvgSalary, b.Filter)
	}
	switch ch.Kind {
	case ChangeReplace:
		keys := make([]market.PositionKey, len(ch.Selected))
		for i, s := range ch.Selected {
			keys[i] = market.PositionKey(s)
		}
		want := filter.New(ch.MinSalary, ch.MaxSalary, keys...)
		if b.Filter.MinSalary != want.MinSalary || b.Filter.MaxSalary != want.MaxSalary ||
			!slices.Equal(b.Filter.Selected, want.Selected) {
			return &b, fmt.Errorf("%w: filter %s, want %s", ErrViolation, b.Filter, want)
		}
	case ChangeSalary:
		if b.Filter.MinSalary != ch.MinSalary || b.Filter.MaxSalary != ch.MaxSalary {
			return &b, fmt.Errorf("%w: salary %d-%d, want %d-%d", ErrViolation,
				b.Filter.MinSalary, b.Filter.MaxSalary, ch.MinSalary, ch.MaxSalary)
		}
	}
	return &b, nil
}

// verifyCycles checks that every applied change got its own cycle and bundle.
func verifyCycles(results []Result) error {
	cycles := make(map[uint64]int, len(results))
	bundles := make(map[string]int, len(results))
	for i, r := range results {
		if r.Outcome != OutcomeApplied || r.Cycle == 0 {
			continue
		}
		if j, dup := cycles[r.Cycle]; dup {
			return fmt.Errorf("%w: cycle %d shared by changes %d and %d", ErrViolation, r.Cycle, j, i)
		}
		cycles[r.Cycle] = i
		id := r.BundleID.String()
		if j, dup := bundles[id]; dup {
			return fmt.Errorf("%w: bundle %s shared by changes %d and %d", ErrViolation, id, j, i)
		}
		bundles[id] = i
	}
	return nil
}
