package error

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrRefreshFailed(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "REFRESH_1001: Error refreshing the access token (connection refused)", err.Error())
}

func TestIsCode(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ErrIssuanceFailed(errors.New("401")))

	assert.True(t, IsCode(wrapped, ErrCodeIssuanceFailed))
	assert.False(t, IsCode(wrapped, ErrCodePersistenceFailed))
	assert.False(t, IsCode(errors.New("plain"), ErrCodeIssuanceFailed))
}

func TestErrMissingCredentials(t *testing.T) {
	err := ErrMissingCredentials("CLIENT_ID,CLIENT_SECRET")

	assert.True(t, IsCode(err, ErrCodeMissingCredentials))
	assert.Equal(t, "REFRESH_1003: OAuth client is not fully configured (Missing: CLIENT_ID,CLIENT_SECRET)", err.Error())
}

func TestGetHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"rate limit", ErrRateLimitExceeded("ip:1.2.3.4"), http.StatusTooManyRequests},
		{"issuance", ErrIssuanceFailed(nil), http.StatusInternalServerError},
		{"persistence", ErrPersistenceFailed("requests.csv", errors.New("disk full")), http.StatusInternalServerError},
		{"configuration", ErrConfigurationError("REFRESH_AT"), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatusCode(tt.err))
		})
	}
}
