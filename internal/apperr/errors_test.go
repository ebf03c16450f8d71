package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   NotFound("booking"),
			expected: "NOT_FOUND: booking not found",
		},
		{
			name:     "with underlying error",
			appErr:   Internal("internal error", errors.New("connection refused")),
			expected: "INTERNAL_ERROR: internal error (caused by: connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestConstructorsStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("x").HTTPStatus)
	assert.Equal(t, http.StatusUnprocessableEntity, Validation("bad", nil).HTTPStatus)
	assert.Equal(t, http.StatusBadRequest, InvalidInput("bad").HTTPStatus)
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("no").HTTPStatus)
	assert.Equal(t, http.StatusForbidden, Forbidden("no").HTTPStatus)
	assert.Equal(t, http.StatusConflict, Conflict("dup").HTTPStatus)
	assert.Equal(t, http.StatusTooManyRequests, TooManyRequests("slow down").HTTPStatus)
}

func TestAsAppError(t *testing.T) {
	t.Run("passes app errors through wrapping", func(t *testing.T) {
		orig := Conflict("already archived")
		wrapped := fmt.Errorf("archive: %w", orig)
		assert.Same(t, orig, AsAppError(wrapped))
	})

	t.Run("maps record not found", func(t *testing.T) {
		got := AsAppError(fmt.Errorf("load: %w", gorm.ErrRecordNotFound))
		assert.Equal(t, CodeNotFound, got.Code)
		assert.Equal(t, http.StatusNotFound, got.HTTPStatus)
	})

	t.Run("unknown errors are internal", func(t *testing.T) {
		cause := errors.New("boom")
		got := AsAppError(cause)
		assert.Equal(t, CodeInternal, got.Code)
		assert.ErrorIs(t, got, cause)
	})
}
