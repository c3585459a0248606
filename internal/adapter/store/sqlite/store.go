package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bkyoung/tfpr/internal/store"
	_ "github.com/mattn/go-sqlite3"
)

// Store implements the store.Store interface using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- Stores metadata about each pipeline run
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		outcome TEXT NOT NULL DEFAULT 'running',
		repository TEXT NOT NULL,
		branch TEXT,
		commit_sha TEXT,
		event_name TEXT,
		pr_number INTEGER DEFAULT 0,
		working_dir TEXT
	);

	-- Terraform step results within a run
	CREATE TABLE IF NOT EXISTS steps (
		step_id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		name TEXT NOT NULL,
		outcome TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		output TEXT,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	-- Plan comment parts posted (or attempted) during a run
	CREATE TABLE IF NOT EXISTS comments (
		comment_id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		part INTEGER NOT NULL,
		total INTEGER NOT NULL,
		github_id INTEGER DEFAULT 0,
		html_url TEXT,
		post_error TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_steps_run_id ON steps(run_id);
	CREATE INDEX IF NOT EXISTS idx_comments_run_id ON comments(run_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// CreateRun inserts a new run record.
func (s *Store) CreateRun(ctx context.Context, run store.Run) error {
	query := `
	INSERT INTO runs (run_id, started_at, outcome, repository, branch, commit_sha, event_name, pr_number, working_dir)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	outcome := run.Outcome
	if outcome == "" {
		outcome = "running"
	}

	_, err := s.db.ExecContext(ctx, query,
		run.RunID,
		run.StartedAt.Unix(),
		outcome,
		run.Repository,
		run.Branch,
		run.CommitSHA,
		run.EventName,
		run.PRNumber,
		run.WorkingDir,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// FinishRun records the final outcome and finish time of a run.
func (s *Store) FinishRun(ctx context.Context, runID string, outcome string, finishedAt time.Time) error {
	query := `UPDATE runs SET outcome = ?, finished_at = ? WHERE run_id = ?`

	result, err := s.db.ExecContext(ctx, query, outcome, finishedAt.Unix(), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (store.Run, error) {
	query := `
	SELECT run_id, started_at, finished_at, outcome, repository, branch, commit_sha, event_name, pr_number, working_dir
	FROM runs WHERE run_id = ?
	`

	var run store.Run
	var startedAt int64
	var finishedAt sql.NullInt64
	var branch, commitSHA, eventName, workingDir sql.NullString

	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&run.RunID,
		&startedAt,
		&finishedAt,
		&run.Outcome,
		&run.Repository,
		&branch,
		&commitSHA,
		&eventName,
		&run.PRNumber,
		&workingDir,
	)
	if err == sql.ErrNoRows {
		return store.Run{}, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return store.Run{}, fmt.Errorf("failed to get run: %w", err)
	}

	run.StartedAt = time.Unix(startedAt, 0).UTC()
	if finishedAt.Valid {
		run.FinishedAt = time.Unix(finishedAt.Int64, 0).UTC()
	}
	run.Branch = branch.String
	run.CommitSHA = commitSHA.String
	run.EventName = eventName.String
	run.WorkingDir = workingDir.String

	return run, nil
}

// ListRuns retrieves the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	query := `
	SELECT run_id, started_at, finished_at, outcome, repository, branch, commit_sha, event_name, pr_number, working_dir
	FROM runs ORDER BY started_at DESC, run_id DESC LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var run store.Run
		var startedAt int64
		var finishedAt sql.NullInt64
		var branch, commitSHA, eventName, workingDir sql.NullString

		if err := rows.Scan(
			&run.RunID,
			&startedAt,
			&finishedAt,
			&run.Outcome,
			&run.Repository,
			&branch,
			&commitSHA,
			&eventName,
			&run.PRNumber,
			&workingDir,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.StartedAt = time.Unix(startedAt, 0).UTC()
		if finishedAt.Valid {
			run.FinishedAt = time.Unix(finishedAt.Int64, 0).UTC()
		}
		run.Branch = branch.String
		run.CommitSHA = commitSHA.String
		run.EventName = eventName.String
		run.WorkingDir = workingDir.String

		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// SaveSteps persists step records in a single transaction.
func (s *Store) SaveSteps(ctx context.Context, steps []store.StepRecord) error {
	if len(steps) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO steps (step_id, run_id, name, outcome, duration_ms, output)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, query,
			step.StepID,
			step.RunID,
			step.Name,
			step.Outcome,
			step.DurationMS,
			step.Output,
		); err != nil {
			return fmt.Errorf("failed to save step %s: %w", step.StepID, err)
		}
	}

	return tx.Commit()
}

// GetStepsByRun retrieves all steps for a run in insertion order.
func (s *Store) GetStepsByRun(ctx context.Context, runID string) ([]store.StepRecord, error) {
	query := `
	SELECT step_id, run_id, name, outcome, duration_ms, output
	FROM steps WHERE run_id = ? ORDER BY rowid
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get steps: %w", err)
	}
	defer rows.Close()

	var steps []store.StepRecord
	for rows.Next() {
		var step store.StepRecord
		var output sql.NullString

		if err := rows.Scan(
			&step.StepID,
			&step.RunID,
			&step.Name,
			&step.Outcome,
			&step.DurationMS,
			&output,
		); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}

		step.Output = output.String
		steps = append(steps, step)
	}

	return steps, rows.Err()
}

// SaveComments persists comment records in a single transaction.
func (s *Store) SaveComments(ctx context.Context, comments []store.CommentRecord) error {
	if len(comments) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO comments (comment_id, run_id, part, total, github_id, html_url, post_error, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, comment := range comments {
		if _, err := tx.ExecContext(ctx, query,
			comment.CommentID,
			comment.RunID,
			comment.Part,
			comment.Total,
			comment.GitHubID,
			comment.HTMLURL,
			comment.PostError,
			comment.CreatedAt.Unix(),
		); err != nil {
			return fmt.Errorf("failed to save comment %s: %w", comment.CommentID, err)
		}
	}

	return tx.Commit()
}

// GetCommentsByRun retrieves all comment records for a run, ordered by part.
func (s *Store) GetCommentsByRun(ctx context.Context, runID string) ([]store.CommentRecord, error) {
	query := `
	SELECT comment_id, run_id, part, total, github_id, html_url, post_error, created_at
	FROM comments WHERE run_id = ? ORDER BY part
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	defer rows.Close()

	var comments []store.CommentRecord
	for rows.Next() {
		var comment store.CommentRecord
		var htmlURL, postError sql.NullString
		var createdAt int64

		if err := rows.Scan(
			&comment.CommentID,
			&comment.RunID,
			&comment.Part,
			&comment.Total,
			&comment.GitHubID,
			&htmlURL,
			&postError,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}

		comment.HTMLURL = htmlURL.String
		comment.PostError = postError.String
		comment.CreatedAt = time.Unix(createdAt, 0).UTC()
		comments = append(comments, comment)
	}

	return comments, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
