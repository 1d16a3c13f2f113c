package executor

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/doeshing/apex/internal/ports"
)

// SystemLauncher starts desktop programs detached from the assistant process.
type SystemLauncher struct {
	goos string
}

// NewSystemLauncher returns a launcher for the running OS.
func NewSystemLauncher() *SystemLauncher {
	return &SystemLauncher{goos: runtime.GOOS}
}

// Open hands target (URL or path) to the desktop's default handler.
func (l *SystemLauncher) Open(ctx context.Context, target string) error {
	program, args := openCommand(l.goos, target)
	return l.Start(ctx, program, args...)
}

// Start launches program without waiting for it to exit.
func (l *SystemLauncher) Start(ctx context.Context, program string, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd := exec.Command(program, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", program, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// LookPath resolves program on PATH.
func (l *SystemLauncher) LookPath(program string) (string, error) {
	return exec.LookPath(program)
}

func openCommand(goos, target string) (string, []string) {
	switch goos {
	case "windows":
		return "cmd", []string{"/c", "start", "", target}
	case "darwin":
		return "open", []string{target}
	default:
		return "xdg-open", []string{target}
	}
}

var _ ports.Launcher = (*SystemLauncher)(nil)
