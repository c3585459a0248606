package ci_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bkyoung/tfpr/internal/adapter/ci"
)

func lookupFrom(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

func TestFromEnv_PullRequestEvent(t *testing.T) {
	env := map[string]string{
		"GITHUB_ACTOR":      "octocat",
		"GITHUB_EVENT_NAME": "pull_request",
		"GITHUB_WORKFLOW":   "Terraform",
		"GITHUB_REPOSITORY": "acme/infra",
		"GITHUB_REF":        "refs/pull/42/merge",
		"GITHUB_REF_NAME":   "42/merge",
		"GITHUB_SHA":        "deadbeef",
	}

	meta := ci.FromEnv(lookupFrom(env))

	assert.Equal(t, "octocat", meta.Actor)
	assert.Equal(t, "pull_request", meta.EventName)
	assert.Equal(t, "Terraform", meta.Workflow)
	assert.Equal(t, "acme", meta.Owner)
	assert.Equal(t, "infra", meta.Repo)
	assert.Equal(t, 42, meta.PRNumber)
	assert.Equal(t, "deadbeef", meta.CommitSHA)
	assert.True(t, meta.IsPullRequest())
}

func TestFromEnv_PushEvent(t *testing.T) {
	env := map[string]string{
		"GITHUB_ACTOR":      "octocat",
		"GITHUB_EVENT_NAME": "push",
		"GITHUB_REPOSITORY": "acme/infra",
		"GITHUB_REF":        "refs/heads/main",
		"GITHUB_REF_NAME":   "main",
	}

	meta := ci.FromEnv(lookupFrom(env))

	assert.Equal(t, 0, meta.PRNumber)
	assert.Equal(t, "main", meta.Branch)
	assert.False(t, meta.IsPullRequest())
}

func TestFromEnv_MalformedValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"empty environment", map[string]string{}},
		{"repository without slash", map[string]string{"GITHUB_REPOSITORY": "just-a-name"}},
		{"ref with non-numeric pull number", map[string]string{"GITHUB_REF": "refs/pull/abc/merge"}},
		{"ref missing merge suffix", map[string]string{"GITHUB_REF": "refs/pull/42"}},
		{"negative pull number", map[string]string{"GITHUB_REF": "refs/pull/-3/merge"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := ci.FromEnv(lookupFrom(tt.env))

			assert.Equal(t, 0, meta.PRNumber)
			assert.Empty(t, meta.Owner)
			assert.Empty(t, meta.Repo)
		})
	}
}
