// Package update provides the update command implementation.
package update

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/coasterranker/coastermap"
	"github.com/coasterranker/coastermap/internal/cmd/alerts"
	"github.com/coasterranker/coastermap/internal/cmd/application"
	"github.com/coasterranker/coastermap/internal/cmd/output"
	"github.com/coasterranker/coastermap/internal/sources/dump"
	"github.com/coasterranker/coastermap/pkg/batch"
	"github.com/coasterranker/coastermap/pkg/save"
)

// Flags holds the update command flags.
type Flags struct {
	Dump          string
	Start         int
	End           int
	Status        string
	Resume        bool
	NoProgress    bool
	NoBackup      bool
	NoStatusWatch bool
	SaveInterval  int
	Delay         time.Duration

	// delaySet records whether --delay was given.
	delaySet bool
}

// NewCommand creates the update command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "update",
		GroupID: "core",
		Short:   "Fetch and merge many external ids in one long run",
		Long: `Update walks a list of external ids, fetches each from the source, and
merges the results into the catalog at every checkpoint.

The ids are either a numeric range (--start/--end), every stored attraction
with a given status (--status), or every id the source holds. Progress is
written after each checkpoint, so an interrupted run can continue with
--resume. Fetch failures are counted and reported, they never stop the run.`,
		Example: `  coastermap update --dump rcdb.json                       # Every id in the dump
  coastermap update --dump rcdb.json --start 1 --end 5000  # A range of ids
  coastermap update --dump rcdb.json --status SBNO         # Re-check standing-but-not-operating rides
  coastermap update --dump rcdb.json --resume              # Continue an interrupted run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags.delaySet = cmd.Flags().Changed("delay")
			return Execute(cmd, app, flags)
		},
	}

	cmd.Flags().StringVar(&flags.Dump, "dump", "", "JSON dump of source records to fetch from")
	cmd.Flags().IntVar(&flags.Start, "start", 0, "first external id of the range")
	cmd.Flags().IntVar(&flags.End, "end", 0, "last external id of the range")
	cmd.Flags().StringVar(&flags.Status, "status", "", "refresh stored attractions with this status")
	cmd.Flags().BoolVar(&flags.Resume, "resume", false, "skip ids completed by an interrupted run")
	cmd.Flags().BoolVar(&flags.NoProgress, "no-progress", false, "do not write a progress file")
	cmd.Flags().BoolVar(&flags.NoBackup, "no-backup", false, "do not back up the catalog files at checkpoints")
	cmd.Flags().BoolVar(&flags.NoStatusWatch, "no-status-watch", false, "do not report status changes")
	cmd.Flags().IntVar(&flags.SaveInterval, "save-interval", 0, "ids fetched between checkpoints (default from config)")
	cmd.Flags().DurationVar(&flags.Delay, "delay", 0, "pause between fetches (default from config)")
	_ = cmd.MarkFlagRequired("dump")
	cmd.MarkFlagsMutuallyExclusive("status", "start")
	cmd.MarkFlagsMutuallyExclusive("status", "end")
	cmd.MarkFlagsRequiredTogether("start", "end")

	return cmd
}

// Execute runs the batch update.
func Execute(cmd *cobra.Command, app application.Application, flags *Flags) error {
	ctx := cmd.Context()
	logger := app.Logger()

	var opts []coastermap.Option
	if flags.NoBackup {
		opts = append(opts, coastermap.WithSaveOptions(save.WithBackup(false)))
	}
	client, err := app.Client(opts...)
	if err != nil {
		return err
	}

	source := dump.New(dump.WithPath(flags.Dump))
	ids, err := selectIDs(ctx, client, source, flags)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		logger.Warn().Msg("No external ids to update")
		return nil
	}

	result, err := client.Update(ctx, source, ids, batchOptions(app.BatchSettings(), flags)...)
	if result == nil || (err != nil && !errors.Is(err, context.Canceled)) {
		return err
	}
	if err := output.Render(cmd.OutOrStdout(), app.OutputFormat(), result, output.BatchResult(result)); err != nil {
		return err
	}
	if result.Interrupted {
		alert := alerts.NewWarning("Update interrupted").
			WithDetails(fmt.Sprintf("%d records fetched and saved", result.Fetched),
				"rerun with --resume to continue")
		return alerts.NewFormatWriter(cmd.ErrOrStderr(), app.OutputFormat()).WriteAlert(alert)
	}
	return nil
}

// selectIDs works out which external ids to fetch.
func selectIDs(ctx context.Context, client coastermap.Client, source *dump.Source, flags *Flags) ([]string, error) {
	switch {
	case flags.Status != "":
		return batch.IDsWithStatus(client.Catalog().Store, flags.Status), nil
	case flags.Start > 0 || flags.End > 0:
		if flags.End < flags.Start {
			return nil, fmt.Errorf("--end (%d) is before --start (%d)", flags.End, flags.Start)
		}
		return batch.Range(flags.Start, flags.End), nil
	default:
		ids, err := source.IDs(ctx)
		if err != nil {
			return nil, err
		}
		batch.SortIDs(ids)
		return ids, nil
	}
}

// batchOptions merges configured settings with flag overrides.
func batchOptions(settings application.BatchSettings, flags *Flags) []batch.Option {
	interval := settings.SaveInterval
	if flags.SaveInterval > 0 {
		interval = flags.SaveInterval
	}
	delay := settings.FetchDelay
	if flags.delaySet {
		delay = flags.Delay
	}

	opts := []batch.Option{
		batch.WithSaveInterval(interval),
		batch.WithDelay(delay),
		batch.WithStatusWatch(!flags.NoStatusWatch),
	}
	if !flags.NoProgress && settings.ProgressPath != "" {
		opts = append(opts, batch.WithProgressFile(settings.ProgressPath, flags.Resume))
	}
	return opts
}
