package probe

import "errors"

var (
	// ErrServiceUnhealthy is returned when the health check fails.
	ErrServiceUnhealthy = errors.New("probe: service unhealthy")
	// ErrUnexpectedStatus is returned for a status the probe cannot classify.
	ErrUnexpectedStatus = errors.New("probe: unexpected status")
	// ErrViolation is returned when a bundle breaks a dashboard invariant.
	ErrViolation = errors.New("probe: invariant violated")
)
