// Package terraform drives the terraform CLI. Exit codes and rendered plan
// text are the only contracts consumed; provisioning semantics stay
// terraform's own.
package terraform

import (
	"context"
	"fmt"
	"time"

	"github.com/bkyoung/tfpr/internal/adapter/execx"
	"github.com/bkyoung/tfpr/internal/domain"
)

const defaultBinary = "terraform"

// planFile is the well-known name the binary plan is written to inside the
// working directory, and later rendered from.
const planFile = "tfplan"

// StepResult describes one terraform step invocation.
type StepResult struct {
	Name     string
	Outcome  domain.Outcome
	Output   string
	Duration time.Duration
}

// Runner invokes the terraform CLI in a fixed working directory.
type Runner struct {
	dir      string
	binary   string
	varFiles []string
	exec     execx.Execer
	now      func() time.Time
}

// NewRunner constructs a Runner for the given terraform working directory.
func NewRunner(dir string) *Runner {
	return &Runner{
		dir:    dir,
		binary: defaultBinary,
		exec:   execx.System{},
		now:    time.Now,
	}
}

// SetBinary overrides the terraform binary path.
func (r *Runner) SetBinary(binary string) {
	if binary != "" {
		r.binary = binary
	}
}

// SetVarFiles sets -var-file arguments passed to plan.
func (r *Runner) SetVarFiles(varFiles []string) {
	r.varFiles = varFiles
}

// SetExecer overrides the command execer (for testing).
func (r *Runner) SetExecer(execer execx.Execer) {
	r.exec = execer
}

// Fmt runs a non-mutating format check.
func (r *Runner) Fmt(ctx context.Context) (StepResult, error) {
	return r.step(ctx, "fmt", "fmt", "-check", "-recursive")
}

// Init initializes the working directory.
func (r *Runner) Init(ctx context.Context) (StepResult, error) {
	return r.step(ctx, "init", "init", "-input=false", "-no-color")
}

// Validate checks the configuration for internal consistency.
func (r *Runner) Validate(ctx context.Context) (StepResult, error) {
	return r.step(ctx, "validate", "validate", "-no-color")
}

// Plan computes the execution plan and, when planning succeeds, renders it to
// human-readable text. The rendered text is returned alongside the step
// result so the reporter can post it without re-reading tool state.
func (r *Runner) Plan(ctx context.Context) (StepResult, string, error) {
	args := []string{"plan", "-input=false", "-no-color", "-out=" + planFile}
	for _, vf := range r.varFiles {
		args = append(args, "-var-file="+vf)
	}

	result, err := r.step(ctx, "plan", args...)
	if err != nil || result.Outcome.Failed() {
		return result, "", err
	}

	rendered, err := r.renderPlan(ctx)
	if err != nil {
		return result, "", err
	}
	return result, rendered, nil
}

// Apply applies the previously computed plan file.
func (r *Runner) Apply(ctx context.Context) (StepResult, error) {
	return r.step(ctx, "apply", "apply", "-input=false", "-no-color", "-auto-approve", planFile)
}

// renderPlan converts the binary plan file into display text.
func (r *Runner) renderPlan(ctx context.Context) (string, error) {
	result, err := r.exec.Run(ctx, r.dir, r.binary, "show", "-no-color", planFile)
	if err != nil {
		return "", fmt.Errorf("terraform show: %w", err)
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("terraform show exited %d: %s", result.ExitCode, result.Stderr)
	}
	return result.Stdout, nil
}

func (r *Runner) step(ctx context.Context, name string, args ...string) (StepResult, error) {
	started := r.now()

	result, err := r.exec.Run(ctx, r.dir, r.binary, args...)
	if err != nil {
		return StepResult{Name: name, Outcome: domain.OutcomeFailure}, fmt.Errorf("terraform %s: %w", name, err)
	}

	outcome := domain.OutcomeSuccess
	if result.ExitCode != 0 {
		outcome = domain.OutcomeFailure
	}

	output := result.Stdout
	if result.Stderr != "" {
		output += result.Stderr
	}

	return StepResult{
		Name:     name,
		Outcome:  outcome,
		Output:   output,
		Duration: r.now().Sub(started),
	}, nil
}
