package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundMessageFormat(t *testing.T) {
	// The constructor appends "not found" itself; callers pass the bare
	// resource name.
	for _, resource := range []string{"snippet", "connection", "project"} {
		err := NewNotFoundError(resource)
		assert.Equal(t, resource+" not found", err.Message)
		assert.Equal(t, http.StatusNotFound, err.HTTPStatus)
		assert.True(t, IsNotFound(err))
	}
}

func TestErrorTypePredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"validation", NewValidationError("bad input"), IsValidation},
		{"conflict", NewConflictError("already exists"), IsConflict},
		{"forbidden", NewForbiddenError(""), IsForbidden},
		{"invalid operation", NewInvalidOperationError("nothing to combine"), IsInvalidOperation},
		{"internal", NewInternalError("boom"), IsInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.False(t, IsNotFound(tt.err))
		})
	}
}

func TestWithCodeAndCause(t *testing.T) {
	cause := errors.New("socket closed")
	err := NewDatabaseError("put snippet", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "put snippet")

	coded := NewConflictError("connection already exists").WithCode("DUPLICATE")
	appErr := GetAppError(coded)
	require.NotNil(t, appErr)
	assert.Equal(t, "DUPLICATE", appErr.Code)
}

func TestWrapKeepsType(t *testing.T) {
	inner := NewNotFoundError("snippet")
	wrapped := Wrap(inner, "cascade failed")

	assert.True(t, IsNotFound(wrapped))
	assert.Contains(t, wrapped.Error(), "cascade failed")

	// Wrapping a plain error produces an internal AppError with the cause
	// preserved.
	plain := fmt.Errorf("disk full")
	wrapped = Wrap(plain, "flush")
	assert.True(t, IsInternal(wrapped))
	assert.ErrorIs(t, wrapped, plain)
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ignored"))
}
