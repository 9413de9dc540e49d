// Package validate provides the validate command implementation.
package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coasterranker/coastermap/internal/cmd/alerts"
	"github.com/coasterranker/coastermap/internal/cmd/application"
	"github.com/coasterranker/coastermap/internal/cmd/output"
	"github.com/coasterranker/coastermap/pkg/validation"
)

// Flags holds the validate command flags.
type Flags struct {
	Strict bool
}

// NewCommand creates the validate command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "validate",
		GroupID: "management",
		Short:   "Check catalog invariants and lint records",
		Long: `Validate checks that the store and the cross-reference table agree with
each other and that split-track siblings are consistent, then lints every
record for missing data and categories that do not belong in the catalog.

Invariant violations make the command fail. With --strict, lint warnings
do too.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd, app, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.Strict, "strict", false, "fail on lint warnings as well")

	return cmd
}

// Execute validates the catalog.
func Execute(cmd *cobra.Command, app application.Application, flags *Flags) error {
	client, err := app.Client()
	if err != nil {
		return err
	}

	report := client.Validate(validation.DefaultRules())
	if err := output.Render(cmd.OutOrStdout(), app.OutputFormat(), report, output.ValidationReport(report)); err != nil {
		return err
	}

	w := alerts.NewFormatWriter(cmd.ErrOrStderr(), app.OutputFormat())
	if n := len(report.Errors()); n > 0 {
		return fmt.Errorf("catalog has %d invariant violation(s)", n)
	}
	if n := len(report.Warnings()); n > 0 {
		if flags.Strict {
			return fmt.Errorf("catalog has %d lint warning(s)", n)
		}
		return w.WriteAlert(alerts.NewWarning(fmt.Sprintf("Catalog is valid with %d lint warning(s)", n)).
			WithDetails("rerun with --strict to fail on warnings"))
	}
	app.Logger().Debug().Int("records", report.Records).Msg("Catalog is valid")
	return w.WriteAlert(alerts.NewSuccess(fmt.Sprintf("Catalog is valid (%d records)", report.Records)))
}
