package service

import "errors"

// Sentinel kinds for orchestrator errors.
var (
	ErrInvalidFilter = errors.New("invalid filter")
	ErrBackpressure  = errors.New("too many pending filter changes")
	ErrStopped       = errors.New("service stopped")
	ErrNotFound      = errors.New("not found")
)
