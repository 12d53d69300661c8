package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("dial tcp: timeout")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "validation", err: Validation("Session ID required"), want: KindValidation},
		{name: "wrapped not found", err: fmt.Errorf("load: %w", NotFound("Topic not found")), want: KindNotFound},
		{name: "auth failed", err: AuthenticationFailed("exchange failed", cause), want: KindAuthenticationFailed},
		{name: "plain error", err: cause, want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := AuthenticationFailed("session exchange failed", cause)

	assert.Equal(t, "session exchange failed: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Not authenticated", Unauthenticated("Not authenticated").Error())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(KindValidation))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(KindUnauthenticated))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(KindAuthenticationFailed))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(KindNotFound))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(KindRateLimited))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(KindInternal))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(""))
}

func TestIs(t *testing.T) {
	assert.True(t, Is(Unauthenticated("x"), KindUnauthenticated))
	assert.False(t, Is(nil, KindUnauthenticated))
	assert.False(t, Is(NotFound("x"), KindUnauthenticated))
}
