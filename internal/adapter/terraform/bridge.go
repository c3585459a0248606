package terraform

import (
	"context"

	"github.com/bkyoung/tfpr/internal/usecase/pipeline"
)

// Bridge adapts Runner to the pipeline.Terraform interface, converting the
// adapter's step results into the use case's port type.
type Bridge struct {
	runner *Runner
}

// NewBridge wraps a Runner for the pipeline orchestrator.
func NewBridge(runner *Runner) *Bridge {
	return &Bridge{runner: runner}
}

func toPipelineStep(step StepResult) pipeline.TerraformStep {
	return pipeline.TerraformStep{
		Name:     step.Name,
		Outcome:  step.Outcome,
		Output:   step.Output,
		Duration: step.Duration,
	}
}

// Fmt runs the format check step.
func (b *Bridge) Fmt(ctx context.Context) (pipeline.TerraformStep, error) {
	step, err := b.runner.Fmt(ctx)
	return toPipelineStep(step), err
}

// Init runs the init step.
func (b *Bridge) Init(ctx context.Context) (pipeline.TerraformStep, error) {
	step, err := b.runner.Init(ctx)
	return toPipelineStep(step), err
}

// Validate runs the validate step.
func (b *Bridge) Validate(ctx context.Context) (pipeline.TerraformStep, error) {
	step, err := b.runner.Validate(ctx)
	return toPipelineStep(step), err
}

// Plan runs the plan step and renders the plan text.
func (b *Bridge) Plan(ctx context.Context) (pipeline.TerraformStep, string, error) {
	step, planText, err := b.runner.Plan(ctx)
	return toPipelineStep(step), planText, err
}

// Apply runs the apply step against the saved plan file.
func (b *Bridge) Apply(ctx context.Context) (pipeline.TerraformStep, error) {
	step, err := b.runner.Apply(ctx)
	return toPipelineStep(step), err
}
