package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateRunID creates a unique, time-ordered run ID.
// Format: run-<timestamp>-<hash>
// Example: run-20260829T143052Z-a3f9c2
func GenerateRunID(timestamp time.Time, repository, commitSHA string) string {
	// Use UTC timestamp in ISO format for consistent ordering
	ts := timestamp.UTC().Format("20060102T150405Z")

	// Create short hash from repo, commit, and nanoseconds for uniqueness
	input := fmt.Sprintf("%s|%s|%d", repository, commitSHA, timestamp.UnixNano())
	hash := sha256.Sum256([]byte(input))
	shortHash := hex.EncodeToString(hash[:3]) // 6 character hash

	return fmt.Sprintf("run-%s-%s", ts, shortHash)
}

// GenerateStepID creates a unique ID for a step within a run.
// Format: step-<run_id>-<name>
func GenerateStepID(runID, name string) string {
	return fmt.Sprintf("step-%s-%s", runID, name)
}

// GenerateCommentID creates a unique ID for a posted comment part.
// Comment parts have no natural key of their own (the same part of the same
// run can be retried), so a random UUID is used.
func GenerateCommentID() string {
	return fmt.Sprintf("comment-%s", uuid.NewString())
}
