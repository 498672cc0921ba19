package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrClosed = errors.New("trigger queue closed")
	ErrFull   = errors.New("trigger queue full")
)
