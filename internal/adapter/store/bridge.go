package store

import (
	"context"
	"time"

	"github.com/bkyoung/tfpr/internal/store"
	"github.com/bkyoung/tfpr/internal/usecase/pipeline"
)

// Bridge adapts store.Store to the pipeline.Store interface.
// This avoids circular dependencies between packages. Record IDs are
// generated here so the use case layer never deals in storage keys.
type Bridge struct {
	store store.Store
}

// NewBridge creates a new store adapter.
func NewBridge(s store.Store) *Bridge {
	return &Bridge{store: s}
}

// CreateRun converts and saves a run record.
func (b *Bridge) CreateRun(ctx context.Context, run pipeline.StoreRun) error {
	storeRun := store.Run{
		RunID:      run.RunID,
		StartedAt:  run.StartedAt,
		Repository: run.Repository,
		Branch:     run.Branch,
		CommitSHA:  run.CommitSHA,
		EventName:  run.EventName,
		PRNumber:   run.PRNumber,
		WorkingDir: run.WorkingDir,
	}
	return b.store.CreateRun(ctx, storeRun)
}

// SaveSteps converts and saves step records.
func (b *Bridge) SaveSteps(ctx context.Context, steps []pipeline.StoreStep) error {
	storeSteps := make([]store.StepRecord, len(steps))
	for i, s := range steps {
		storeSteps[i] = store.StepRecord{
			StepID:     store.GenerateStepID(s.RunID, s.Name),
			RunID:      s.RunID,
			Name:       s.Name,
			Outcome:    s.Outcome,
			DurationMS: s.DurationMS,
			Output:     s.Output,
		}
	}
	return b.store.SaveSteps(ctx, storeSteps)
}

// SaveComments converts and saves comment records.
func (b *Bridge) SaveComments(ctx context.Context, comments []pipeline.StoreComment) error {
	storeComments := make([]store.CommentRecord, len(comments))
	for i, c := range comments {
		storeComments[i] = store.CommentRecord{
			CommentID: store.GenerateCommentID(),
			RunID:     c.RunID,
			Part:      c.Part,
			Total:     c.Total,
			GitHubID:  c.GitHubID,
			HTMLURL:   c.HTMLURL,
			PostError: c.PostError,
			CreatedAt: c.CreatedAt,
		}
	}
	return b.store.SaveComments(ctx, storeComments)
}

// FinishRun records the final outcome of a run.
func (b *Bridge) FinishRun(ctx context.Context, runID string, outcome string, finishedAt time.Time) error {
	return b.store.FinishRun(ctx, runID, outcome, finishedAt)
}

// Close closes the underlying store.
func (b *Bridge) Close() error {
	return b.store.Close()
}
