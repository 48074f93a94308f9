package utils

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	plain := NewValidationError("subject is required")
	assert.Equal(t, "subject is required", plain.Error())

	wrapped := NewAppError(ErrDatabase, "failed to save message", errors.New("connection refused"))
	assert.Equal(t, "failed to save message: connection refused", wrapped.Error())
}

func TestIsErrorCode(t *testing.T) {
	err := NewNotFoundError("message")
	assert.True(t, IsErrorCode(err, ErrNotFound))
	assert.False(t, IsErrorCode(err, ErrValidation))
	assert.False(t, IsErrorCode(errors.New("plain"), ErrNotFound))
}

func TestAppErrorToHTTPStatus(t *testing.T) {
	cases := map[string]int{
		ErrNotFound:     http.StatusNotFound,
		ErrValidation:   http.StatusBadRequest,
		ErrUnauthorized: http.StatusUnauthorized,
		ErrInvalidToken: http.StatusUnauthorized,
		ErrForbidden:    http.StatusForbidden,
		ErrConflict:     http.StatusConflict,
		ErrDatabase:     http.StatusInternalServerError,
		ErrActorTimeout: http.StatusInternalServerError,
		"UNKNOWN":       http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, AppErrorToHTTPStatus(code), "code %s", code)
	}
}
