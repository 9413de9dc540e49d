// Package report provides the report command implementation.
package report

import (
	"github.com/spf13/cobra"

	"github.com/coasterranker/coastermap/internal/cmd/application"
	"github.com/coasterranker/coastermap/internal/cmd/output"
)

// NewCommand creates the report command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "report",
		GroupID: "management",
		Short:   "Show catalog statistics",
		Long: `Report summarizes the store: steel and wooden coasters, split tracks,
the most common types, manufacturers, statuses and countries, and how many
records carry coordinates, speed, height and length.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			stats := client.Stats()
			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), stats, output.StoreStats(stats))
		},
	}
}
