// Package export provides the export command implementation.
package export

import (
	"github.com/spf13/cobra"

	"github.com/coasterranker/coastermap/internal/cmd/application"
	"github.com/coasterranker/coastermap/internal/cmd/output"
	"github.com/coasterranker/coastermap/pkg/export"
)

// NewCommand creates the export command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:     "export",
		GroupID: "management",
		Short:   "Export the catalog to SQLite",
		Long: `Export writes the store and the cross-reference table into a SQLite
database. Existing rows are replaced in one transaction.`,
		Example: `  coastermap export --sqlite coasters.db`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			catalog := client.Catalog()
			stats, err := export.SQLite(cmd.Context(), path, catalog.Store, catalog.CrossReference)
			if err != nil {
				return err
			}
			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), stats, output.ExportStats(path, stats))
		},
	}

	cmd.Flags().StringVar(&path, "sqlite", "", "SQLite database file to write")
	_ = cmd.MarkFlagRequired("sqlite")

	return cmd
}
