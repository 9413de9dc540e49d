// Package merge provides the merge command implementation.
package merge

import (
	"github.com/spf13/cobra"

	"github.com/coasterranker/coastermap"
	"github.com/coasterranker/coastermap/internal/cmd/alerts"
	"github.com/coasterranker/coastermap/internal/cmd/application"
	"github.com/coasterranker/coastermap/internal/cmd/output"
	"github.com/coasterranker/coastermap/pkg/coasters"
	"github.com/coasterranker/coastermap/pkg/differ"
	"github.com/coasterranker/coastermap/pkg/merger"
	"github.com/coasterranker/coastermap/pkg/save"
)

// Flags holds the merge command flags.
type Flags struct {
	DryRun   bool
	NoBackup bool
	Diff     bool
}

// diffOutput is the machine-readable result of a merge run with --diff.
type diffOutput struct {
	Report  *merger.Report    `json:"report" yaml:"report"`
	Changes *differ.Changeset `json:"changes" yaml:"changes"`
}

// NewCommand creates the merge command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "merge <batch.json>",
		GroupID: "core",
		Short:   "Merge a batch of fetched records into the catalog",
		Args:    cobra.ExactArgs(1),
		Long: `Merge reconciles a JSON array of freshly fetched records against the
local catalog.

Records are grouped by external id. Known attractions are updated without
erasing curated values, new ones get the next local id, and multi-track
attractions are matched track by track by name. Records from denied models
and manufacturers are filtered out.

The catalog files are backed up before they are overwritten.`,
		Example: `  coastermap merge fetched.json              # Merge and save
  coastermap merge fetched.json --dry-run    # Report only, nothing saved
  coastermap merge fetched.json --dry-run --diff  # Preview field changes
  coastermap merge fetched.json -o json      # Machine-readable report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd, app, args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "merge in memory and report without saving")
	cmd.Flags().BoolVar(&flags.NoBackup, "no-backup", false, "do not back up the catalog files before saving")
	cmd.Flags().BoolVar(&flags.Diff, "diff", false, "list the records and fields the merge changed")

	return cmd
}

// Execute merges the batch at path.
func Execute(cmd *cobra.Command, app application.Application, path string, flags *Flags) error {
	ctx := cmd.Context()
	logger := app.Logger()

	records, err := coasters.LoadBatch(path)
	if err != nil {
		return err
	}

	var opts []coastermap.Option
	if flags.NoBackup {
		opts = append(opts, coastermap.WithSaveOptions(save.WithBackup(false)))
	}
	client, err := app.Client(opts...)
	if err != nil {
		return err
	}

	var before *coasters.Store
	if flags.Diff {
		before = client.Catalog().Store
	}

	report, err := client.Merge(ctx, records)
	if err != nil {
		return err
	}

	if !flags.DryRun {
		if err := client.Save(ctx); err != nil {
			return err
		}
	}

	logger.Info().Str("run_id", report.RunID).Msg(report.Summary())
	if !flags.Diff {
		err = output.Render(cmd.OutOrStdout(), app.OutputFormat(), report, output.MergeReport(report))
	} else {
		changes := differ.New().Stores(before, client.Catalog().Store)
		tables := append(output.MergeReport(report), output.Changeset(changes))
		err = output.Render(cmd.OutOrStdout(), app.OutputFormat(), diffOutput{Report: report, Changes: changes}, tables)
	}
	if err != nil || !flags.DryRun {
		return err
	}
	return alerts.NewFormatWriter(cmd.ErrOrStderr(), app.OutputFormat()).
		WriteAlert(alerts.NewInfo("Dry run, catalog not saved"))
}
