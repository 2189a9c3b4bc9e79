package svcerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	var v ValidationError
	require.NoError(t, v.OrNil())

	v.Add("year", "must not be in the future")
	v.Add("genre", "is required")
	v.Add("year", "must be a number")

	err := v.OrNil()
	require.Error(t, err)
	assert.Equal(t, "validation failed: genre: is required, year: must not be in the future; must be a number", err.Error())

	var target *ValidationError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &target))
	assert.Len(t, target.Fields["year"], 2)
}

func TestValidationError_Unwrap(t *testing.T) {
	err := &ValidationError{Fields: map[string][]string{"confirmation_code": {"invalid"}}, Err: ErrInvalidCode}
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.NotErrorIs(t, NewValidationError("slug", "taken"), ErrInvalidCode)
}
