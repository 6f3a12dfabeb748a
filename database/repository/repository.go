package repository

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("document not found")
	// ErrVersionConflict is returned by Save when the stored version no longer
	// matches the one the caller read.
	ErrVersionConflict = errors.New("version mismatch")
)

// OpTimeout bounds a single store round-trip.
const OpTimeout = 5 * time.Second

// WithTimeout derives the per-operation context every repository call uses.
func WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, OpTimeout)
}
