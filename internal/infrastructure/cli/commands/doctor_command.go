package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/apex/internal/app"
	"github.com/doeshing/apex/internal/domain"
)

// ErrChecksFailed is returned when at least one doctor check is an error.
var ErrChecksFailed = errors.New("dependency check failed")

// NewDoctorCommand creates the doctor command (also reachable as --check).
func NewDoctorCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, API keys and local dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := load(cmd.Context())
			if err != nil {
				return err
			}
			return RunDoctor(cmd.Context(), cmd.OutOrStdout(), container, nil)
		},
	}
}

// RunDoctor runs the checks and prints the report with render, or as plain
// lines when render is nil.
func RunDoctor(ctx context.Context, out io.Writer, container *app.Container, render func(domain.HealthReport)) error {
	if container.DoctorService == nil {
		return errors.New("doctor service unavailable")
	}

	report, err := container.DoctorService.Run(ctx)
	if render != nil {
		render(report)
	} else {
		printReport(out, report)
	}

	if err != nil {
		return fmt.Errorf("diagnostics aborted: %w", err)
	}
	if report.HasErrors() {
		return ErrChecksFailed
	}
	return nil
}

func printReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		fmt.Fprintf(out, "[%s] %s - %s\n", check.Status, check.Name, check.Details)
	}
}
