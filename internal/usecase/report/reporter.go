// Package report posts rendered terraform plans to pull requests as
// bounded-size multi-part comments.
package report

import (
	"context"
	"fmt"

	"github.com/bkyoung/tfpr/internal/adapter/github"
	"github.com/bkyoung/tfpr/internal/chunk"
	"github.com/bkyoung/tfpr/internal/domain"
)

// DefaultMaxChunkSize is GitHub's issue comment body limit.
const DefaultMaxChunkSize = 65536

// CommentClient defines the interface for posting pull request comments.
// This interface allows for mocking in tests.
type CommentClient interface {
	CreateIssueComment(ctx context.Context, input github.CreateCommentInput) (*github.CreateCommentResponse, error)
}

// Reporter splits a rendered plan into chunks and posts each chunk as a
// separate PR comment, labeled with its part index and run metadata.
type Reporter struct {
	client CommentClient
}

// NewReporter creates a new Reporter with the given client.
func NewReporter(client CommentClient) *Reporter {
	return &Reporter{client: client}
}

// Request contains all data needed to report a plan. Metadata travels inside
// the request as an immutable value; the reporter reads no ambient state.
type Request struct {
	// PlanText is the rendered plan. Empty text produces zero comments.
	PlanText string

	// MaxChunkSize bounds each comment body's chunk. Zero selects
	// DefaultMaxChunkSize. The header and attribution lines are added on top
	// of the chunk, so the effective comment size slightly exceeds this.
	MaxChunkSize int

	// Outcomes are the recorded results of the preceding terraform steps.
	Outcomes domain.StepOutcomes

	// Meta identifies the run: actor, event, working directory, workflow,
	// and the target repository and pull request.
	Meta domain.RunContext
}

// Report posts one comment per chunk, strictly in chunk order. A failed part
// is recorded in the summary and does not stop later parts; the caller
// decides whether any failure should fail the overall run.
//
// Report performs no deduplication against earlier runs: invoking it twice
// with identical input posts two complete comment sets. The run ledger in the
// store is the audit trail for that.
func (r *Reporter) Report(ctx context.Context, req Request) (domain.ReportSummary, error) {
	if req.Meta.PRNumber <= 0 {
		return domain.ReportSummary{}, fmt.Errorf("report: pull request number must be positive, got %d", req.Meta.PRNumber)
	}

	maxSize := req.MaxChunkSize
	if maxSize == 0 {
		maxSize = DefaultMaxChunkSize
	}

	chunks, err := chunk.Split(req.PlanText, maxSize)
	if err != nil {
		return domain.ReportSummary{}, fmt.Errorf("report: %w", err)
	}

	summary := domain.ReportSummary{}
	total := len(chunks)
	for i, c := range chunks {
		part := domain.PartResult{Part: i + 1, Total: total}

		body := BuildPartBody(i+1, total, c, req.Outcomes, req.Meta)
		resp, postErr := r.client.CreateIssueComment(ctx, github.CreateCommentInput{
			Owner:       req.Meta.Owner,
			Repo:        req.Meta.Repo,
			IssueNumber: req.Meta.PRNumber,
			Body:        body,
		})
		if postErr != nil {
			part.Err = fmt.Errorf("post part %d/%d: %w", i+1, total, postErr)
		} else {
			part.CommentID = resp.ID
			part.HTMLURL = resp.HTMLURL
		}

		summary.Parts = append(summary.Parts, part)
	}

	return summary, nil
}
