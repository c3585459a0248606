// Package pipeline implements the core run flow: terraform steps with
// deferred fail-fast, plan reporting on pull requests, the final gate, and
// apply plus deployment on push events.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bkyoung/tfpr/internal/domain"
	"github.com/bkyoung/tfpr/internal/usecase/gate"
	"github.com/bkyoung/tfpr/internal/usecase/report"
)

// TerraformStep is the recorded result of one terraform step.
type TerraformStep struct {
	Name     string
	Outcome  domain.Outcome
	Output   string
	Duration time.Duration
}

// Terraform abstracts the terraform CLI steps. A step returns an error only
// when the tool could not be invoked at all; a non-zero exit is a recorded
// failure outcome, not an error, so later steps still run.
type Terraform interface {
	Fmt(ctx context.Context) (TerraformStep, error)
	Init(ctx context.Context) (TerraformStep, error)
	Validate(ctx context.Context) (TerraformStep, error)

	// Plan additionally returns the rendered human-readable plan text,
	// empty when planning failed.
	Plan(ctx context.Context) (TerraformStep, string, error)

	Apply(ctx context.Context) (TerraformStep, error)
}

// Reporter posts the rendered plan to the pull request.
type Reporter interface {
	Report(ctx context.Context, req report.Request) (domain.ReportSummary, error)
}

// ImageBuilder builds and pushes the application container image.
type ImageBuilder interface {
	BuildAndPush(ctx context.Context, ref string) error
}

// Deployer restarts the service on the target host with the new image.
type Deployer interface {
	Deploy(ctx context.Context, ref string) error
}

// Store defines the outbound port for persisting run history.
type Store interface {
	CreateRun(ctx context.Context, run StoreRun) error
	SaveSteps(ctx context.Context, steps []StoreStep) error
	SaveComments(ctx context.Context, comments []StoreComment) error
	FinishRun(ctx context.Context, runID string, outcome string, finishedAt time.Time) error
	Close() error
}

// StoreRun represents a pipeline run for persistence.
type StoreRun struct {
	RunID      string
	StartedAt  time.Time
	Repository string
	Branch     string
	CommitSHA  string
	EventName  string
	PRNumber   int
	WorkingDir string
}

// StoreStep represents a step result for persistence.
type StoreStep struct {
	RunID      string
	Name       string
	Outcome    string
	DurationMS int64
	Output     string
}

// StoreComment represents a posted (or attempted) comment part for persistence.
type StoreComment struct {
	RunID     string
	Part      int
	Total     int
	GitHubID  int64
	HTMLURL   string
	PostError string
	CreatedAt time.Time
}

// OrchestratorDeps captures the inbound dependencies for the orchestrator.
type OrchestratorDeps struct {
	Terraform Terraform
	Reporter  Reporter     // Optional: required only for pull request runs
	Builder   ImageBuilder // Optional: required only when deploying
	Deployer  Deployer     // Optional: required only when deploying
	Store     Store        // Optional: persistence layer for run history
	Logger    Logger       // Optional: structured logging for warnings and info
	Now       func() time.Time
}

// RunRequest represents an inbound CLI request.
type RunRequest struct {
	// Meta identifies the run. Resolved once at startup and passed through
	// unchanged.
	Meta domain.RunContext

	// MaxChunkSize bounds each plan comment chunk. Zero selects the default.
	MaxChunkSize int

	// StrictReport fails the run when any comment part could not be posted.
	// Without it, failed parts are logged and the gate decides alone.
	StrictReport bool

	// Apply runs terraform apply after a clean strict gate. Used on push
	// events; never set for pull requests.
	Apply bool

	// ImageRef is the container image to build, push, and deploy after a
	// successful apply. Empty disables the deploy stage.
	ImageRef string
}

// Result captures the orchestrator outcome.
type Result struct {
	RunID    string
	Outcomes domain.StepOutcomes
	Steps    []TerraformStep
	Report   domain.ReportSummary
	Applied  bool
	Deployed bool
}

// Orchestrator implements the pipeline run flow.
type Orchestrator struct {
	deps OrchestratorDeps
}

// NewOrchestrator wires the orchestrator dependencies.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{deps: deps}
}

// validateDependencies checks that all required dependencies are present.
func (o *Orchestrator) validateDependencies(req RunRequest) error {
	if o.deps.Terraform == nil {
		return errors.New("terraform runner is required")
	}
	if req.Meta.IsPullRequest() && o.deps.Reporter == nil {
		return errors.New("reporter is required for pull request runs")
	}
	if req.Apply && req.ImageRef != "" {
		if o.deps.Builder == nil {
			return errors.New("image builder is required when an image ref is set")
		}
		if o.deps.Deployer == nil {
			return errors.New("deployer is required when an image ref is set")
		}
	}
	// Store is optional
	// Logger is optional
	return nil
}

// Run executes the pipeline. The terraform steps all run regardless of
// earlier step failures; outcomes are collected and a single gate at the end
// decides whether the run fails. On pull requests the rendered plan is posted
// before the gate, so reviewers see the plan even when it failed.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (Result, error) {
	if err := o.validateDependencies(req); err != nil {
		return Result{}, err
	}

	meta := req.Meta
	runID := generateRunID(o.deps.Now(), meta.Repository(), meta.CommitSHA)
	result := Result{RunID: runID}

	o.createRun(ctx, runID, meta)

	outcomes := domain.StepOutcomes{
		Fmt:      domain.OutcomeSkipped,
		Init:     domain.OutcomeSkipped,
		Validate: domain.OutcomeSkipped,
		Plan:     domain.OutcomeSkipped,
	}

	fmtStep, err := o.deps.Terraform.Fmt(ctx)
	if err != nil {
		return o.fail(ctx, result, fmt.Errorf("terraform fmt: %w", err))
	}
	result.Steps = append(result.Steps, fmtStep)
	outcomes.Fmt = fmtStep.Outcome

	initStep, err := o.deps.Terraform.Init(ctx)
	if err != nil {
		return o.fail(ctx, result, fmt.Errorf("terraform init: %w", err))
	}
	result.Steps = append(result.Steps, initStep)
	outcomes.Init = initStep.Outcome

	validateStep, err := o.deps.Terraform.Validate(ctx)
	if err != nil {
		return o.fail(ctx, result, fmt.Errorf("terraform validate: %w", err))
	}
	result.Steps = append(result.Steps, validateStep)
	outcomes.Validate = validateStep.Outcome

	planStep, planText, err := o.deps.Terraform.Plan(ctx)
	if err != nil {
		return o.fail(ctx, result, fmt.Errorf("terraform plan: %w", err))
	}
	result.Steps = append(result.Steps, planStep)
	outcomes.Plan = planStep.Outcome
	result.Outcomes = outcomes

	o.saveSteps(ctx, runID, result.Steps)

	if meta.IsPullRequest() {
		summary, err := o.deps.Reporter.Report(ctx, report.Request{
			PlanText:     planText,
			MaxChunkSize: req.MaxChunkSize,
			Outcomes:     outcomes,
			Meta:         meta,
		})
		if err != nil {
			return o.fail(ctx, result, fmt.Errorf("report plan: %w", err))
		}
		result.Report = summary
		o.saveComments(ctx, runID, summary)

		if failed := summary.Failed(); len(failed) > 0 {
			if req.StrictReport {
				return o.fail(ctx, result, fmt.Errorf("report plan: %d of %d parts failed to post", len(failed), len(summary.Parts)))
			}
			o.logWarning(ctx, "some plan comment parts failed to post", map[string]interface{}{
				"runID":  runID,
				"failed": len(failed),
				"total":  len(summary.Parts),
			})
		}
	}

	if err := gate.Evaluate(outcomes); err != nil {
		return o.fail(ctx, result, err)
	}

	if req.Apply {
		if err := gate.EvaluateStrict(outcomes); err != nil {
			return o.fail(ctx, result, err)
		}

		applyStep, err := o.deps.Terraform.Apply(ctx)
		if err != nil {
			return o.fail(ctx, result, fmt.Errorf("terraform apply: %w", err))
		}
		result.Steps = append(result.Steps, applyStep)
		o.saveSteps(ctx, runID, []TerraformStep{applyStep})
		if applyStep.Outcome.Failed() {
			return o.fail(ctx, result, errors.New("terraform apply step failed"))
		}
		result.Applied = true

		if req.ImageRef != "" {
			if err := o.deps.Builder.BuildAndPush(ctx, req.ImageRef); err != nil {
				return o.fail(ctx, result, fmt.Errorf("build image: %w", err))
			}
			if err := o.deps.Deployer.Deploy(ctx, req.ImageRef); err != nil {
				return o.fail(ctx, result, fmt.Errorf("deploy image: %w", err))
			}
			result.Deployed = true
			o.logInfo(ctx, "deployed image", map[string]interface{}{
				"runID": runID,
				"ref":   req.ImageRef,
			})
		}
	}

	o.finishRun(ctx, runID, "success")
	return result, nil
}

// fail records the terminal failure outcome and passes the error through.
func (o *Orchestrator) fail(ctx context.Context, result Result, err error) (Result, error) {
	outcome := "failure"
	if ctx.Err() != nil {
		outcome = "cancelled"
	}
	o.finishRun(ctx, result.RunID, outcome)
	return result, err
}

// createRun records the run start. Persistence failures are logged and do
// not break the run.
func (o *Orchestrator) createRun(ctx context.Context, runID string, meta domain.RunContext) {
	if o.deps.Store == nil {
		return
	}

	err := o.deps.Store.CreateRun(ctx, StoreRun{
		RunID:      runID,
		StartedAt:  o.deps.Now(),
		Repository: meta.Repository(),
		Branch:     meta.Branch,
		CommitSHA:  meta.CommitSHA,
		EventName:  meta.EventName,
		PRNumber:   meta.PRNumber,
		WorkingDir: meta.WorkingDir,
	})
	if err != nil {
		o.logWarning(ctx, "failed to record run start", map[string]interface{}{
			"error": err.Error(),
			"runID": runID,
		})
	}
}

func (o *Orchestrator) saveSteps(ctx context.Context, runID string, steps []TerraformStep) {
	if o.deps.Store == nil || len(steps) == 0 {
		return
	}

	records := make([]StoreStep, len(steps))
	for i, step := range steps {
		records[i] = StoreStep{
			RunID:      runID,
			Name:       step.Name,
			Outcome:    string(step.Outcome),
			DurationMS: step.Duration.Milliseconds(),
			Output:     step.Output,
		}
	}

	if err := o.deps.Store.SaveSteps(ctx, records); err != nil {
		o.logWarning(ctx, "failed to record step results", map[string]interface{}{
			"error": err.Error(),
			"runID": runID,
		})
	}
}

func (o *Orchestrator) saveComments(ctx context.Context, runID string, summary domain.ReportSummary) {
	if o.deps.Store == nil || len(summary.Parts) == 0 {
		return
	}

	now := o.deps.Now()
	records := make([]StoreComment, len(summary.Parts))
	for i, part := range summary.Parts {
		record := StoreComment{
			RunID:     runID,
			Part:      part.Part,
			Total:     part.Total,
			GitHubID:  part.CommentID,
			HTMLURL:   part.HTMLURL,
			CreatedAt: now,
		}
		if part.Err != nil {
			record.PostError = part.Err.Error()
		}
		records[i] = record
	}

	if err := o.deps.Store.SaveComments(ctx, records); err != nil {
		o.logWarning(ctx, "failed to record posted comments", map[string]interface{}{
			"error": err.Error(),
			"runID": runID,
		})
	}
}

func (o *Orchestrator) finishRun(ctx context.Context, runID string, outcome string) {
	if o.deps.Store == nil {
		return
	}

	// Finish must be recorded even when the surrounding context was
	// cancelled, so it uses a fresh context.
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}

	if err := o.deps.Store.FinishRun(ctx, runID, outcome, o.deps.Now()); err != nil {
		o.logWarning(ctx, "failed to record run finish", map[string]interface{}{
			"error":   err.Error(),
			"runID":   runID,
			"outcome": outcome,
		})
	}
}

func (o *Orchestrator) logWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if o.deps.Logger != nil {
		o.deps.Logger.LogWarning(ctx, message, fields)
	}
}

func (o *Orchestrator) logInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if o.deps.Logger != nil {
		o.deps.Logger.LogInfo(ctx, message, fields)
	}
}
