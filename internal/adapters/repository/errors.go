package repository

import "errors"

// Sentinel kinds for snapshot errors.
var (
	ErrNotFound     = errors.New("snapshot not found")
	ErrInvalidLimit = errors.New("invalid history limit")
	ErrNilBundle    = errors.New("nil bundle")
)
