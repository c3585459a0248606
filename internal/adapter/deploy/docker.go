// Package deploy ships the application image after a successful apply:
// a docker build/push followed by a restart on the target host over ssh.
// Both tools are invoked as CLIs; their runtime semantics are their own.
package deploy

import (
	"context"
	"fmt"

	"github.com/bkyoung/tfpr/internal/adapter/execx"
)

// Builder builds and pushes the container image with the docker CLI.
type Builder struct {
	contextDir string
	exec       execx.Execer
}

// NewBuilder constructs a Builder for the given docker build context.
func NewBuilder(contextDir string) *Builder {
	return &Builder{
		contextDir: contextDir,
		exec:       execx.System{},
	}
}

// SetExecer overrides the command execer (for testing).
func (b *Builder) SetExecer(execer execx.Execer) {
	b.exec = execer
}

// BuildAndPush builds the image tagged with ref and pushes it.
// Deploy steps run after the gate, so a tool failure is an error here
// rather than a recorded outcome.
func (b *Builder) BuildAndPush(ctx context.Context, ref string) error {
	if ref == "" {
		return fmt.Errorf("deploy: image ref is required")
	}

	result, err := b.exec.Run(ctx, b.contextDir, "docker", "build", "-t", ref, ".")
	if err != nil {
		return fmt.Errorf("docker build: %w", err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("docker build exited %d: %s", result.ExitCode, result.Stderr)
	}

	result, err = b.exec.Run(ctx, b.contextDir, "docker", "push", ref)
	if err != nil {
		return fmt.Errorf("docker push: %w", err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("docker push exited %d: %s", result.ExitCode, result.Stderr)
	}

	return nil
}
