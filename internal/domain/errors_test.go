package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsKindAndCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("UNIQUE constraint failed: users.username")
	err := Duplicate(cause, "User %s already exists", "steve")

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrMissing)
	assert.Equal(t, "User steve already exists", err.Detail)
}

func TestError_WrappedStillMatches(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("assign: %w", Missing(nil, "Scope %d not found", 7))

	require.ErrorIs(t, err, ErrMissing)
	assert.Equal(t, "Scope 7 not found", Detail(err, "fallback"))
}

func TestDetail_Fallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "internal error", Detail(errors.New("boom"), "internal error"))
}
