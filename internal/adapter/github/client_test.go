package github_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/tfpr/internal/adapter/github"
	"github.com/bkyoung/tfpr/internal/adapter/httpclient"
)

func TestNewClient(t *testing.T) {
	client := github.NewClient("test-token")

	require.NotNil(t, client)
}

func TestSetBaseURL_TrimsTrailingSlashes(t *testing.T) {
	// All trailing slashes are normalized to prevent double-slash URLs
	testCases := []struct {
		name   string
		suffix string
	}{
		{"single slash", "/"},
		{"double slash", "//"},
		{"triple slash", "///"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.NotContains(t, r.URL.Path, "//", "URL should not contain double slashes")
				assert.Equal(t, "/repos/owner/repo/issues/1/comments", r.URL.Path)

				resp := github.CreateCommentResponse{ID: 1, HTMLURL: "https://example.com"}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(resp)
			}))
			defer server.Close()

			client := github.NewClient("test-token")
			client.SetBaseURL(server.URL + tc.suffix)

			_, err := client.CreateIssueComment(context.Background(), github.CreateCommentInput{
				Owner:       "owner",
				Repo:        "repo",
				IssueNumber: 1,
				Body:        "hello",
			})
			require.NoError(t, err)
		})
	}
}

func TestClient_CreateIssueComment_Success(t *testing.T) {
	requestReceived := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestReceived = true

		// Verify request method and path
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/repos/owner/repo/issues/123/comments", r.URL.Path)

		// Verify headers
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))

		// Parse and verify request body
		var req github.CreateCommentRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)
		assert.Equal(t, "Terraform Plan Part 1/1", req.Body)

		// Send response
		resp := github.CreateCommentResponse{
			ID:      456,
			HTMLURL: "https://github.com/owner/repo/pull/123#issuecomment-456",
			Body:    req.Body,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := github.NewClient("test-token")
	client.SetBaseURL(server.URL)

	resp, err := client.CreateIssueComment(context.Background(), github.CreateCommentInput{
		Owner:       "owner",
		Repo:        "repo",
		IssueNumber: 123,
		Body:        "Terraform Plan Part 1/1",
	})

	require.NoError(t, err)
	require.True(t, requestReceived)
	assert.Equal(t, int64(456), resp.ID)
	assert.Equal(t, "https://github.com/owner/repo/pull/123#issuecomment-456", resp.HTMLURL)
}

func TestClient_CreateIssueComment_RetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(github.ErrorResponse{Message: "temporarily unavailable"})
			return
		}

		resp := github.CreateCommentResponse{ID: 99}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := github.NewClient("test-token")
	client.SetBaseURL(server.URL)
	client.SetInitialBackoff(time.Millisecond)

	resp, err := client.CreateIssueComment(context.Background(), github.CreateCommentInput{
		Owner:       "owner",
		Repo:        "repo",
		IssueNumber: 1,
		Body:        "retry me",
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, int64(99), resp.ID)
}

func TestClient_CreateIssueComment_DoesNotRetryAuthErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(github.ErrorResponse{Message: "Bad credentials"})
	}))
	defer server.Close()

	client := github.NewClient("bad-token")
	client.SetBaseURL(server.URL)
	client.SetInitialBackoff(time.Millisecond)

	_, err := client.CreateIssueComment(context.Background(), github.CreateCommentInput{
		Owner:       "owner",
		Repo:        "repo",
		IssueNumber: 1,
		Body:        "nope",
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var apiErr *httpclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, httpclient.ErrTypeAuthentication, apiErr.Type)
	assert.Contains(t, apiErr.Message, "Bad credentials")
}

func TestClient_CreateIssueComment_GivesUpAfterMaxRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := github.NewClient("test-token")
	client.SetBaseURL(server.URL)
	client.SetMaxRetries(2)
	client.SetInitialBackoff(time.Millisecond)

	_, err := client.CreateIssueComment(context.Background(), github.CreateCommentInput{
		Owner:       "owner",
		Repo:        "repo",
		IssueNumber: 1,
		Body:        "still down",
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts) // initial attempt + 2 retries
}

func TestClient_CreateIssueComment_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := github.NewClient("test-token")
	client.SetBaseURL(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CreateIssueComment(ctx, github.CreateCommentInput{
		Owner:       "owner",
		Repo:        "repo",
		IssueNumber: 1,
		Body:        "cancelled",
	})

	require.ErrorIs(t, err, context.Canceled)
}
