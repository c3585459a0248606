// Package ci resolves run metadata from the hosting CI environment.
//
// The lookup happens exactly once, at wiring time; the resulting RunContext
// travels through the pipeline as an explicit immutable value so no other
// component reads ambient process state.
package ci

import (
	"strconv"
	"strings"

	"github.com/bkyoung/tfpr/internal/domain"
)

// FromEnv builds a RunContext from GitHub Actions environment variables.
// The lookup function is injected so tests don't mutate the process
// environment; pass os.Getenv in production.
func FromEnv(getenv func(string) string) domain.RunContext {
	owner, repo := splitRepository(getenv("GITHUB_REPOSITORY"))

	return domain.RunContext{
		Actor:     getenv("GITHUB_ACTOR"),
		EventName: getenv("GITHUB_EVENT_NAME"),
		Workflow:  getenv("GITHUB_WORKFLOW"),
		Owner:     owner,
		Repo:      repo,
		PRNumber:  pullNumberFromRef(getenv("GITHUB_REF")),
		CommitSHA: getenv("GITHUB_SHA"),
		Branch:    getenv("GITHUB_REF_NAME"),
	}
}

// splitRepository parses "owner/repo" into its parts.
func splitRepository(repository string) (string, string) {
	owner, repo, found := strings.Cut(repository, "/")
	if !found {
		return "", ""
	}
	return owner, repo
}

// pullNumberFromRef extracts the PR number from a "refs/pull/<n>/merge" ref.
// Returns 0 for any other ref shape (branch pushes, tags).
func pullNumberFromRef(ref string) int {
	rest, found := strings.CutPrefix(ref, "refs/pull/")
	if !found {
		return 0
	}
	numStr, _, found := strings.Cut(rest, "/")
	if !found {
		return 0
	}
	num, err := strconv.Atoi(numStr)
	if err != nil || num <= 0 {
		return 0
	}
	return num
}
