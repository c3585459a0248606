// Package execx wraps external command execution behind a small port so
// adapters that shell out (terraform, docker, ssh) can be exercised in tests
// without the real binaries installed.
package execx

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Execer runs an external command in a working directory and reports its
// output and exit code.
type Execer interface {
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// Result captures one command invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// System shells out via os/exec.
type System struct{}

// Run executes the command. A non-zero exit is reported through
// Result.ExitCode, not as an error; errors are reserved for failures to start
// the process at all (missing binary, bad working directory).
func (System) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}
