package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/ports"
)

// ShellRunner runs user-defined command lines through a shell.
type ShellRunner struct {
	shell   string
	timeout time.Duration
}

// NewShellRunner builds a runner; shell defaults to sh. Each command is
// killed after domain.DefaultCommandTimeout.
func NewShellRunner(shell string) *ShellRunner {
	if shell == "" || shell == "auto" {
		shell = "sh"
	}
	return &ShellRunner{shell: shell, timeout: domain.DefaultCommandTimeout}
}

// Run implements ports.CommandRunner. A non-zero exit is returned as an error
// alongside the captured output.
func (r *ShellRunner) Run(ctx context.Context, command string) (domain.ExecutionResult, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	c := exec.CommandContext(ctx, r.shell, shellFlag(r.shell), command)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	c.WaitDelay = time.Second

	start := time.Now()
	err := c.Run()

	result := domain.ExecutionResult{
		Ran:        err == nil,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMS: time.Since(start).Milliseconds(),
		Err:        err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}
	return result, err
}

func shellFlag(shell string) string {
	switch strings.TrimSuffix(strings.ToLower(filepath.Base(shell)), ".exe") {
	case "cmd":
		return "/C"
	case "powershell", "pwsh":
		return "-Command"
	default:
		return "-c"
	}
}

var _ ports.CommandRunner = (*ShellRunner)(nil)
