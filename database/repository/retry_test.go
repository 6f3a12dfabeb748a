package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryOnConflictReplaysUntilSuccess(t *testing.T) {
	calls := 0
	err := RetryOnConflict(context.Background(), func() error {
		calls++
		if calls < 3 {
			return ErrVersionConflict
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryOnConflictStopsOnOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := RetryOnConflict(context.Background(), func() error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetryOnConflictGivesUp(t *testing.T) {
	calls := 0
	err := RetryOnConflict(context.Background(), func() error {
		calls++
		return ErrVersionConflict
	})

	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, MaxConflictRetries+1, calls)
}
