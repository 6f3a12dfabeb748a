package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// MaxConflictRetries bounds how often a read-modify-write is replayed after
// losing a version race.
const MaxConflictRetries = 8

func conflictBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 100 * time.Millisecond
	b.MaxElapsedTime = 2 * time.Second
	return b
}

// RetryOnConflict runs op until it succeeds or fails with anything other than
// ErrVersionConflict. op must re-read the entity on each attempt. When the
// retries run out the last ErrVersionConflict is returned.
func RetryOnConflict(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(conflictBackoff(), MaxConflictRetries), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err == nil || errors.Is(err, ErrVersionConflict) {
			return err
		}
		return backoff.Permanent(err)
	}, policy)
}
