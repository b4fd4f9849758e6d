package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/infernav/internal/app"
	"github.com/doeshing/infernav/internal/domain"
	"github.com/doeshing/infernav/internal/infrastructure/cli/helpers"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(containerFn ContainerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and cache files",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFn()
			if err != nil {
				// Still report, so the failing check is visible next to the error.
				helpers.RenderHealthReport(cmd.OutOrStdout(), domain.HealthReport{Checks: []domain.HealthCheck{{
					Name:    "Config file",
					Status:  domain.HealthError,
					Details: err.Error(),
				}}})
				return fmt.Errorf("diagnostics completed with errors: %w", err)
			}
			return runDoctorDiagnostics(cmd, cmd.OutOrStdout(), container)
		},
	}
}

// runDoctorDiagnostics runs environment diagnostics
func runDoctorDiagnostics(cmd *cobra.Command, out io.Writer, container *app.Container) error {
	if container.DoctorService == nil {
		return fmt.Errorf("doctor service unavailable")
	}

	report, err := container.DoctorService.Run(cmd.Context())

	// Display report even if there were errors
	helpers.RenderHealthReport(out, report)

	if err != nil {
		return fmt.Errorf("diagnostics completed with errors: %w", err)
	}
	if report.Worst() == domain.HealthError {
		return fmt.Errorf("diagnostics found errors")
	}
	return nil
}
