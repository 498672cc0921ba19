// Package repository keeps the last published snapshot of every dataset.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jobmarket/internal/domain/model"
)

// CycleRef summarizes a published bundle.
type CycleRef struct {
	ID          uuid.UUID    `json:"id"`
	Cycle       uint64       `json:"cycle"`
	Reason      model.Reason `json:"reason"`
	Filter      string       `json:"filter"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Store provides read/write access to the snapshot cache.
type Store interface {
	// Put replaces the cached dataset of d.Kind.
	Put(ctx context.Context, d model.Dataset) error
	// Commit records b as the latest complete bundle.
	Commit(ctx context.Context, b *model.Bundle) error

	// Get returns the cached dataset of kind, or ErrNotFound.
	Get(ctx context.Context, kind model.Kind) (model.Dataset, error)
	// Latest returns the last committed bundle, or ErrNotFound.
	Latest(ctx context.Context) (*model.Bundle, error)
	// Recent returns up to n committed cycles, newest first.
	Recent(ctx context.Context, n int) ([]CycleRef, error)

	// Count returns the number of cached dataset kinds.
	Count(ctx context.Context) int
}
