package github_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/tfpr/internal/adapter/github"
	"github.com/bkyoung/tfpr/internal/adapter/httpclient"
)

func TestMapHTTPError_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantType   httpclient.ErrorType
		retryable  bool
	}{
		{"unauthorized", http.StatusUnauthorized, httpclient.ErrTypeAuthentication, false},
		{"forbidden", http.StatusForbidden, httpclient.ErrTypeAuthentication, false},
		{"rate limited", http.StatusTooManyRequests, httpclient.ErrTypeRateLimit, true},
		{"not found", http.StatusNotFound, httpclient.ErrTypeNotFound, false},
		{"unprocessable", http.StatusUnprocessableEntity, httpclient.ErrTypeInvalidRequest, false},
		{"internal error", http.StatusInternalServerError, httpclient.ErrTypeServiceUnavailable, true},
		{"bad gateway", http.StatusBadGateway, httpclient.ErrTypeServiceUnavailable, true},
		{"unavailable", http.StatusServiceUnavailable, httpclient.ErrTypeServiceUnavailable, true},
		{"teapot", http.StatusTeapot, httpclient.ErrTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := github.MapHTTPError(tt.statusCode, []byte(`{"message":"oops"}`))

			require.NotNil(t, err)
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, tt.retryable, err.Retryable)
			assert.Equal(t, tt.statusCode, err.StatusCode)
			assert.Equal(t, "oops", err.Message)
		})
	}
}

func TestMapHTTPError_ValidationDetails(t *testing.T) {
	body := []byte(`{"message":"Validation Failed","errors":[{"resource":"IssueComment","field":"body","code":"too_long"}]}`)

	err := github.MapHTTPError(http.StatusUnprocessableEntity, body)

	assert.Contains(t, err.Message, "Validation Failed")
	assert.Contains(t, err.Message, "body: too_long")
}

func TestMapHTTPError_NonJSONBody(t *testing.T) {
	err := github.MapHTTPError(http.StatusBadGateway, []byte("<html>Bad Gateway</html>"))

	assert.Contains(t, err.Message, "HTTP 502")
	assert.Contains(t, err.Message, "<html>Bad Gateway</html>")
}

func TestMapHTTPError_EmptyBody(t *testing.T) {
	err := github.MapHTTPError(http.StatusServiceUnavailable, nil)

	assert.Equal(t, "HTTP 503", err.Message)
}
