// Package domain contains the core types shared across the pipeline.
package domain

// Outcome is the recorded result of a single pipeline step.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailure   Outcome = "failure"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeSkipped   Outcome = "skipped"
)

// Failed reports whether the step ended in failure.
func (o Outcome) Failed() bool {
	return o == OutcomeFailure
}

// Ran reports whether the step actually executed (was not skipped or cancelled).
func (o Outcome) Ran() bool {
	return o == OutcomeSuccess || o == OutcomeFailure
}

// StepOutcomes collects the outcomes of the terraform steps that ran before
// reporting and gating. Steps that did not run are recorded as skipped.
type StepOutcomes struct {
	Fmt      Outcome
	Init     Outcome
	Validate Outcome
	Plan     Outcome
}

// RunContext is the immutable metadata for one pipeline run. It is resolved
// once at startup (from CI environment, flags, or the local git repository)
// and passed explicitly to every component that needs it; nothing reads
// ambient process state after wiring.
type RunContext struct {
	// Actor is the identity that triggered the run (e.g. the pusher).
	Actor string

	// EventName is the triggering event, e.g. "push" or "pull_request".
	EventName string

	// Workflow is the human-readable name of the pipeline definition.
	Workflow string

	// WorkingDir is the terraform working directory, relative to the repo root.
	WorkingDir string

	// Owner and Repo identify the GitHub repository.
	Owner string
	Repo  string

	// PRNumber is the pull request number, 0 when the event is not a PR.
	PRNumber int

	// CommitSHA and Branch describe the checked-out revision.
	CommitSHA string
	Branch    string
}

// IsPullRequest reports whether the run was triggered by a pull request event.
func (c RunContext) IsPullRequest() bool {
	return c.EventName == "pull_request" && c.PRNumber > 0
}

// Repository returns the "owner/repo" form, or empty when either part is
// missing.
func (c RunContext) Repository() string {
	if c.Owner == "" || c.Repo == "" {
		return ""
	}
	return c.Owner + "/" + c.Repo
}

// PartResult records the result of posting one chunk of a multi-part plan
// comment. A nil Err means the part was posted; the caller decides whether a
// failed part should fail the run.
type PartResult struct {
	Part      int
	Total     int
	CommentID int64
	HTMLURL   string
	Err       error
}

// ReportSummary aggregates the per-part results of one report invocation.
type ReportSummary struct {
	Parts []PartResult
}

// Posted returns the number of parts that were posted successfully.
func (s ReportSummary) Posted() int {
	n := 0
	for _, p := range s.Parts {
		if p.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the parts that could not be posted.
func (s ReportSummary) Failed() []PartResult {
	var failed []PartResult
	for _, p := range s.Parts {
		if p.Err != nil {
			failed = append(failed, p)
		}
	}
	return failed
}
