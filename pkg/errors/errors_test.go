package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	err := Wrap(ErrHoldingNotFound, "settle holding")
	require.Error(t, err)
	assert.True(t, Is(err, ErrHoldingNotFound))
	assert.Contains(t, err.Error(), "settle holding")

	assert.NoError(t, Wrap(nil, "no-op"))
}

func TestWrapf(t *testing.T) {
	err := Wrapf(ErrFeedUnavailable, "fetch %s", "/data/lof/index_list/")
	require.Error(t, err)
	assert.True(t, Is(err, ErrFeedUnavailable))
	assert.Contains(t, err.Error(), "/data/lof/index_list/")

	assert.NoError(t, Wrapf(nil, "no-op %d", 1))
}

func TestDomainError(t *testing.T) {
	inner := New("redis connection lost")
	err := NewDomainError("STORAGE", "failed to persist holdings", inner)

	assert.Contains(t, err.Error(), "STORAGE")
	assert.Contains(t, err.Error(), "failed to persist holdings")
	assert.True(t, Is(err, inner))

	var dErr *DomainError
	assert.True(t, As(err, &dErr))
	assert.Equal(t, "STORAGE", dErr.Code)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("purchasePrice", "must be positive", -1)

	assert.Contains(t, err.Error(), "purchasePrice")
	assert.Contains(t, err.Error(), "must be positive")

	wrapped := Wrap(err, "create holding")
	var vErr *ValidationError
	require.True(t, As(wrapped, &vErr))
	assert.Equal(t, "purchasePrice", vErr.Field)
	assert.Equal(t, -1, vErr.Value)
}
