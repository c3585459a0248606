package store

import (
	"context"
	"time"
)

// Store defines the persistence layer interface for run history. Every
// pipeline run, its step results, and the comments it posted are recorded
// so a failed or duplicated run can be reconstructed after the fact.
type Store interface {
	// Run management
	CreateRun(ctx context.Context, run Run) error
	FinishRun(ctx context.Context, runID string, outcome string, finishedAt time.Time) error
	GetRun(ctx context.Context, runID string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Step persistence
	SaveSteps(ctx context.Context, steps []StepRecord) error
	GetStepsByRun(ctx context.Context, runID string) ([]StepRecord, error)

	// Comment persistence
	SaveComments(ctx context.Context, comments []CommentRecord) error
	GetCommentsByRun(ctx context.Context, runID string) ([]CommentRecord, error)

	// Utility
	Close() error
}

// Run represents a single pipeline execution.
type Run struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time // zero until FinishRun is called
	Outcome    string    // "running" until FinishRun is called
	Repository string    // owner/repo
	Branch     string
	CommitSHA  string
	EventName  string
	PRNumber   int
	WorkingDir string
}

// StepRecord stores the result of one terraform step within a run.
type StepRecord struct {
	StepID     string
	RunID      string
	Name       string
	Outcome    string
	DurationMS int64
	Output     string
}

// CommentRecord stores one posted (or attempted) plan comment part.
type CommentRecord struct {
	CommentID string
	RunID     string
	Part      int
	Total     int
	GitHubID  int64 // 0 when the post failed
	HTMLURL   string
	PostError string // empty on success
	CreatedAt time.Time
}

// Posted reports whether the comment part actually reached GitHub.
func (c CommentRecord) Posted() bool {
	return c.PostError == "" && c.GitHubID != 0
}
