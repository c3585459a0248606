package deploy

import (
	"context"
	"fmt"

	"github.com/bkyoung/tfpr/internal/adapter/execx"
)

// SSHDeployer restarts the service on the target host by running commands
// over the ssh CLI. Session semantics (auth, known hosts) belong to ssh and
// the runner's environment.
type SSHDeployer struct {
	target string // user@host
	exec   execx.Execer
}

// NewSSHDeployer constructs a deployer for the given user@host target.
func NewSSHDeployer(target string) *SSHDeployer {
	return &SSHDeployer{
		target: target,
		exec:   execx.System{},
	}
}

// SetExecer overrides the command execer (for testing).
func (d *SSHDeployer) SetExecer(execer execx.Execer) {
	d.exec = execer
}

// Deploy pulls the new image on the host and restarts the container.
func (d *SSHDeployer) Deploy(ctx context.Context, ref string) error {
	if d.target == "" {
		return fmt.Errorf("deploy: ssh target is required")
	}
	if ref == "" {
		return fmt.Errorf("deploy: image ref is required")
	}

	remote := fmt.Sprintf("docker pull %s && docker compose up -d", ref)
	result, err := d.exec.Run(ctx, "", "ssh", "-o", "BatchMode=yes", d.target, remote)
	if err != nil {
		return fmt.Errorf("ssh deploy: %w", err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("ssh deploy exited %d: %s", result.ExitCode, result.Stderr)
	}

	return nil
}
