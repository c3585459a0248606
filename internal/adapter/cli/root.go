package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bkyoung/tfpr/internal/domain"
	"github.com/bkyoung/tfpr/internal/usecase/gate"
	"github.com/bkyoung/tfpr/internal/usecase/pipeline"
	"github.com/bkyoung/tfpr/internal/usecase/report"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// PipelineRunner defines the dependency required to run the full pipeline.
type PipelineRunner interface {
	Run(ctx context.Context, req pipeline.RunRequest) (pipeline.Result, error)
}

// PlanReporter defines the dependency required to post a plan on its own.
type PlanReporter interface {
	Report(ctx context.Context, req report.Request) (domain.ReportSummary, error)
}

// Arguments encapsulates IO injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
	InReader  io.Reader
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Runner   PipelineRunner
	Reporter PlanReporter
	Args     Arguments

	// Meta carries the run metadata resolved at startup (CI environment or
	// local git). Flags override individual fields.
	Meta domain.RunContext

	DefaultMaxChunkSize int
	DefaultStrict       bool
	DefaultImageRef     string
	Version             string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "tfpr",
		Short: "Terraform plan/apply pipeline with PR plan comments",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(runCommand(deps))
	root.AddCommand(reportCommand(deps))
	root.AddCommand(gateCommand())

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

// metaFlags registers the run metadata override flags, returning the
// resolver that applies them over the wired-in defaults.
func metaFlags(cmd *cobra.Command, defaults domain.RunContext) func() domain.RunContext {
	var owner, repo, commitSHA, branch, actor, eventName, workflow string
	var prNumber int

	cmd.Flags().StringVar(&owner, "owner", "", "Repository owner (overrides detected value)")
	cmd.Flags().StringVar(&repo, "repo", "", "Repository name (overrides detected value)")
	cmd.Flags().IntVar(&prNumber, "pr-number", 0, "Pull request number (overrides detected value)")
	cmd.Flags().StringVar(&commitSHA, "commit-sha", "", "Commit SHA (overrides detected value)")
	cmd.Flags().StringVar(&branch, "branch", "", "Branch name (overrides detected value)")
	cmd.Flags().StringVar(&actor, "actor", "", "Actor that triggered the run (overrides detected value)")
	cmd.Flags().StringVar(&eventName, "event", "", "Triggering event name (overrides detected value)")
	cmd.Flags().StringVar(&workflow, "workflow", "", "Workflow name shown in the comment attribution")

	return func() domain.RunContext {
		meta := defaults
		if owner != "" {
			meta.Owner = owner
		}
		if repo != "" {
			meta.Repo = repo
		}
		if prNumber > 0 {
			meta.PRNumber = prNumber
		}
		if commitSHA != "" {
			meta.CommitSHA = commitSHA
		}
		if branch != "" {
			meta.Branch = branch
		}
		if actor != "" {
			meta.Actor = actor
		}
		if eventName != "" {
			meta.EventName = eventName
		}
		if workflow != "" {
			meta.Workflow = workflow
		}
		return meta
	}
}

func runCommand(deps Dependencies) *cobra.Command {
	var apply bool
	var imageRef string
	var strict bool
	var maxChunkSize int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the terraform pipeline: fmt, init, validate, plan, report, gate",
		Args:  cobra.NoArgs,
	}
	resolveMeta := metaFlags(cmd, deps.Meta)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if deps.Runner == nil {
			return errors.New("pipeline runner is not configured")
		}

		meta := resolveMeta()

		// Apply defaults to push events unless set explicitly.
		if !cmd.Flags().Changed("apply") {
			apply = meta.EventName == "push"
		}

		result, err := deps.Runner.Run(cmd.Context(), pipeline.RunRequest{
			Meta:         meta,
			MaxChunkSize: maxChunkSize,
			StrictReport: strict,
			Apply:        apply,
			ImageRef:     imageRef,
		})

		printRunResult(cmd.OutOrStdout(), result)
		return err
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Apply the plan after a clean gate (defaults to true on push events)")
	cmd.Flags().StringVar(&imageRef, "image-ref", deps.DefaultImageRef, "Container image to build and deploy after apply (empty disables deploy)")
	cmd.Flags().BoolVar(&strict, "strict-report", deps.DefaultStrict, "Fail the run when any plan comment part fails to post")
	cmd.Flags().IntVar(&maxChunkSize, "max-chunk-size", deps.DefaultMaxChunkSize, "Maximum plan chunk size per comment in bytes")

	return cmd
}

func reportCommand(deps Dependencies) *cobra.Command {
	var planFile string
	var strict bool
	var maxChunkSize int
	var fmtOutcome, initOutcome, validateOutcome, planOutcome string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Post an already-rendered plan as PR comments",
		Args:  cobra.NoArgs,
	}
	resolveMeta := metaFlags(cmd, deps.Meta)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if deps.Reporter == nil {
			return errors.New("plan reporter is not configured")
		}

		planText, err := readPlanText(planFile, deps.Args.InReader)
		if err != nil {
			return err
		}

		outcomes, err := parseOutcomes(fmtOutcome, initOutcome, validateOutcome, planOutcome)
		if err != nil {
			return err
		}

		summary, err := deps.Reporter.Report(cmd.Context(), report.Request{
			PlanText:     planText,
			MaxChunkSize: maxChunkSize,
			Outcomes:     outcomes,
			Meta:         resolveMeta(),
		})
		if err != nil {
			return err
		}

		printReportSummary(cmd.OutOrStdout(), summary)

		if failed := summary.Failed(); strict && len(failed) > 0 {
			return fmt.Errorf("%d of %d comment parts failed to post", len(failed), len(summary.Parts))
		}
		return nil
	}

	cmd.Flags().StringVar(&planFile, "plan-file", "", "File with the rendered plan text, \"-\" for stdin (required)")
	_ = cmd.MarkFlagRequired("plan-file")
	cmd.Flags().BoolVar(&strict, "strict", deps.DefaultStrict, "Fail when any comment part fails to post")
	cmd.Flags().IntVar(&maxChunkSize, "max-chunk-size", deps.DefaultMaxChunkSize, "Maximum plan chunk size per comment in bytes")
	cmd.Flags().StringVar(&fmtOutcome, "fmt-outcome", "success", "Recorded outcome of the format step")
	cmd.Flags().StringVar(&initOutcome, "init-outcome", "success", "Recorded outcome of the init step")
	cmd.Flags().StringVar(&validateOutcome, "validate-outcome", "success", "Recorded outcome of the validate step")
	cmd.Flags().StringVar(&planOutcome, "plan-outcome", "success", "Recorded outcome of the plan step")

	return cmd
}

func gateCommand() *cobra.Command {
	var strict bool
	var fmtOutcome, initOutcome, validateOutcome, planOutcome string

	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Evaluate recorded step outcomes and fail the run accordingly",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outcomes, err := parseOutcomes(fmtOutcome, initOutcome, validateOutcome, planOutcome)
			if err != nil {
				return err
			}

			if strict {
				err = gate.EvaluateStrict(outcomes)
			} else {
				err = gate.Evaluate(outcomes)
			}
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "gate passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on any step failure, not just plan")
	cmd.Flags().StringVar(&fmtOutcome, "fmt-outcome", "success", "Recorded outcome of the format step")
	cmd.Flags().StringVar(&initOutcome, "init-outcome", "success", "Recorded outcome of the init step")
	cmd.Flags().StringVar(&validateOutcome, "validate-outcome", "success", "Recorded outcome of the validate step")
	cmd.Flags().StringVar(&planOutcome, "plan-outcome", "success", "Recorded outcome of the plan step")

	return cmd
}

// readPlanText loads the rendered plan from a file or stdin.
func readPlanText(planFile string, in io.Reader) (string, error) {
	if planFile == "-" {
		if in == nil {
			in = os.Stdin
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read plan from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(planFile)
	if err != nil {
		return "", fmt.Errorf("read plan file: %w", err)
	}
	return string(data), nil
}

func parseOutcomes(fmtOutcome, initOutcome, validateOutcome, planOutcome string) (domain.StepOutcomes, error) {
	var outcomes domain.StepOutcomes
	var err error

	if outcomes.Fmt, err = parseOutcome("fmt-outcome", fmtOutcome); err != nil {
		return domain.StepOutcomes{}, err
	}
	if outcomes.Init, err = parseOutcome("init-outcome", initOutcome); err != nil {
		return domain.StepOutcomes{}, err
	}
	if outcomes.Validate, err = parseOutcome("validate-outcome", validateOutcome); err != nil {
		return domain.StepOutcomes{}, err
	}
	if outcomes.Plan, err = parseOutcome("plan-outcome", planOutcome); err != nil {
		return domain.StepOutcomes{}, err
	}

	return outcomes, nil
}

func parseOutcome(flagName, value string) (domain.Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "success":
		return domain.OutcomeSuccess, nil
	case "failure":
		return domain.OutcomeFailure, nil
	case "cancelled":
		return domain.OutcomeCancelled, nil
	case "skipped":
		return domain.OutcomeSkipped, nil
	default:
		return "", fmt.Errorf("invalid --%s value %q (expected success, failure, cancelled, or skipped)", flagName, value)
	}
}

func printRunResult(w io.Writer, result pipeline.Result) {
	for _, step := range result.Steps {
		_, _ = fmt.Fprintf(w, "%s: %s (%.1fs)\n", step.Name, step.Outcome, step.Duration.Seconds())
	}
	if len(result.Report.Parts) > 0 {
		_, _ = fmt.Fprintf(w, "posted %d of %d plan comment parts\n", result.Report.Posted(), len(result.Report.Parts))
	}
	if result.Applied {
		_, _ = fmt.Fprintln(w, "apply: success")
	}
	if result.Deployed {
		_, _ = fmt.Fprintln(w, "deploy: success")
	}
}

func printReportSummary(w io.Writer, summary domain.ReportSummary) {
	for _, part := range summary.Parts {
		if part.Err != nil {
			_, _ = fmt.Fprintf(w, "part %d/%d: failed: %v\n", part.Part, part.Total, part.Err)
			continue
		}
		_, _ = fmt.Fprintf(w, "part %d/%d: %s\n", part.Part, part.Total, part.HTMLURL)
	}
}
