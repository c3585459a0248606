// Package git reads repository state through go-git. It backs the local
// fallback for run metadata when the process is not running inside CI.
package git

import (
	"fmt"

	goGit "github.com/go-git/go-git/v5"
)

// Engine reads branch and commit information from a local repository.
type Engine struct {
	repoDir string
}

// NewEngine constructs a Git engine for the provided repository directory.
func NewEngine(repoDir string) *Engine {
	return &Engine{repoDir: repoDir}
}

// HeadCommit returns the full hash of the current HEAD commit.
func (e *Engine) HeadCommit() (string, error) {
	repo, err := e.open()
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}

	return head.Hash().String(), nil
}

// CurrentBranch returns the short name of the checked-out branch, or an
// error when HEAD is detached.
func (e *Engine) CurrentBranch() (string, error) {
	repo, err := e.open()
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is not on a branch (detached at %s)", head.Hash().String()[:7])
	}

	return head.Name().Short(), nil
}

func (e *Engine) open() (*goGit.Repository, error) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}
	return repo, nil
}
