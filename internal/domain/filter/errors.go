package filter

import "errors"

// Sentinel error kinds for filter validation.
var (
	ErrInvalidRange  = errors.New("min salary exceeds max salary")
	ErrInvalidBounds = errors.New("invalid salary bounds")
)
