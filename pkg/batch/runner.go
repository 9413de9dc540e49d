package batch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/coasterranker/coastermap/pkg/coasters"
	"github.com/coasterranker/coastermap/pkg/errors"
	"github.com/coasterranker/coastermap/pkg/logging"
	"github.com/coasterranker/coastermap/pkg/merger"
)

// defaultStatus is assumed when a fetched record carries no status.
const defaultStatus = "Operating"

// StatusChange is an attraction whose fetched status differs from the
// stored one.
type StatusChange struct {
	ExternalID string `json:"external_id" yaml:"external_id"`
	Name       string `json:"name" yaml:"name"`
	Old        string `json:"old" yaml:"old"`
	New        string `json:"new" yaml:"new"`
}

// Result summarizes a batch run.
type Result struct {
	RunID       string `json:"run_id" yaml:"run_id"`
	Requested   int    `json:"requested" yaml:"requested"`
	Resumed     int    `json:"resumed" yaml:"resumed"`
	Fetched     int    `json:"fetched" yaml:"fetched"`
	NotFound    int    `json:"not_found" yaml:"not_found"`
	Failed      int    `json:"failed" yaml:"failed"`
	Checkpoints int    `json:"checkpoints" yaml:"checkpoints"`

	FailedIDs     []string       `json:"failed_ids,omitempty" yaml:"failed_ids,omitempty"`
	StatusChanges []StatusChange `json:"status_changes,omitempty" yaml:"status_changes,omitempty"`
	Interrupted   bool           `json:"interrupted" yaml:"interrupted"`

	Report *merger.Report `json:"merge" yaml:"merge"`
}

// Runner fetches ids and merges the results into a catalog.
type Runner struct {
	fetcher Fetcher
	merger  merger.Merger
	catalog *coasters.Catalog
	options *options
}

// NewRunner creates a Runner over catalog.
func NewRunner(fetcher Fetcher, m merger.Merger, catalog *coasters.Catalog, opts ...Option) (*Runner, error) {
	if fetcher == nil || m == nil || catalog == nil {
		return nil, &errors.ValidationError{
			Field:   "runner",
			Message: "fetcher, merger, and catalog are required",
		}
	}
	options, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &Runner{fetcher: fetcher, merger: m, catalog: catalog, options: options}, nil
}

// runState is the bookkeeping of one Run call.
type runState struct {
	result   *Result
	progress *Progress
	pending  []*coasters.Record
	since    int
	logger   *zerolog.Logger
}

// Run fetches every id in order. Fetch failures are counted and never stop
// the run. When ctx is cancelled, whatever was fetched is merged and saved
// before the context error is returned. Save failures abort the run.
func (r *Runner) Run(ctx context.Context, ids []string) (*Result, error) {
	state, start, err := r.begin(ctx, ids)
	if err != nil {
		return nil, err
	}
	logger := state.logger

	var runErr error
	for i, id := range ids[start:] {
		if ctx.Err() != nil {
			runErr = ctx.Err()
			break
		}

		records, err := r.fetch(ctx, id)
		if err != nil && ctx.Err() != nil {
			runErr = ctx.Err()
			break
		}
		r.collect(state, id, records, err)

		if state.since >= r.options.saveInterval {
			if err := r.checkpoint(ctx, state); err != nil {
				return state.result, err
			}
		}

		if i < len(ids)-start-1 && r.options.delay > 0 {
			if err := sleep(ctx, r.options.delay); err != nil {
				runErr = err
				break
			}
		}
	}

	// Merge and save what was fetched even when interrupted.
	if err := r.checkpoint(context.WithoutCancel(ctx), state); err != nil {
		return state.result, err
	}
	state.result.Report.TotalRecords = r.catalog.Store.Len()

	if runErr != nil {
		state.result.Interrupted = true
		logger.Warn().
			Str("last_completed_id", state.progress.LastCompletedID).
			Int("completed", state.progress.CompletedCount).
			Msg("Batch interrupted, progress saved")
		return state.result, runErr
	}

	if r.options.progressPath != "" {
		if err := ClearProgress(r.options.progressPath); err != nil {
			return state.result, err
		}
	}
	state.result.Report.Finalize()
	logger.Info().
		Int("fetched", state.result.Fetched).
		Int("not_found", state.result.NotFound).
		Int("failed", state.result.Failed).
		Str("summary", state.result.Report.Summary()).
		Msg("Batch completed")
	return state.result, nil
}

// begin prepares the run state and works out where to start.
func (r *Runner) begin(ctx context.Context, ids []string) (*runState, int, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		Requested: len(ids),
		Report:    merger.NewReport(),
	}
	result.Report.RunID = result.RunID
	ctx = logging.WithRunID(ctx, result.RunID)
	logger := logging.FromContext(ctx)

	now := r.options.now()
	progress := &Progress{RunID: result.RunID, StartedAt: now, UpdatedAt: now}
	start := 0

	if r.options.resume && r.options.progressPath != "" {
		previous, err := LoadProgress(r.options.progressPath)
		if err != nil {
			return nil, 0, err
		}
		if previous != nil {
			start = resumeIndex(ids, previous.LastCompletedID)
			progress.LastCompletedID = previous.LastCompletedID
			progress.CompletedCount = previous.CompletedCount
			progress.StartedAt = previous.StartedAt
			result.Resumed = start
			logger.Info().
				Str("last_completed_id", previous.LastCompletedID).
				Int("skipped", start).
				Msg("Resuming batch")
		}
	}

	logger.Info().
		Int("ids", len(ids)-start).
		Int("save_interval", r.options.saveInterval).
		Dur("delay", r.options.delay).
		Msg("Starting batch")

	return &runState{result: result, progress: progress, logger: logger}, start, nil
}

// collect books the outcome of one fetch.
func (r *Runner) collect(state *runState, id string, records []*coasters.Record, err error) {
	switch {
	case err != nil:
		state.result.Failed++
		state.result.FailedIDs = append(state.result.FailedIDs, id)
		state.logger.Warn().Err(err).Str("external_id", id).Msg("Fetch failed")
	case len(records) == 0:
		state.result.NotFound++
		state.logger.Debug().Str("external_id", id).Msg("Not found or filtered")
	default:
		state.result.Fetched++
		if len(records) == 1 && r.options.statusWatch {
			r.watchStatus(state, id, records[0])
		}
		state.pending = append(state.pending, records...)
		state.logger.Debug().
			Str("external_id", id).
			Int("tracks", len(records)).
			Msg("Fetched")
	}

	state.progress.LastCompletedID = id
	state.progress.CompletedCount++
	state.since++
}

// watchStatus records a status change against the stored record.
func (r *Runner) watchStatus(state *runState, id string, fetched *coasters.Record) {
	existing, ok := r.catalog.Record(id)
	if !ok {
		return
	}
	next := fetched.Status()
	if next == "" {
		next = defaultStatus
	}
	if previous := existing.Status(); previous != next {
		state.result.StatusChanges = append(state.result.StatusChanges, StatusChange{
			ExternalID: id,
			Name:       fetched.Name(),
			Old:        previous,
			New:        next,
		})
	}
}

// checkpoint merges pending records, saves the catalog, and writes progress.
func (r *Runner) checkpoint(ctx context.Context, state *runState) error {
	if state.since == 0 && len(state.pending) == 0 {
		return nil
	}

	if len(state.pending) > 0 {
		report, err := r.merger.Merge(ctx, r.catalog, state.pending)
		if err != nil {
			return err
		}
		state.result.Report.Accumulate(report)
		state.pending = nil
		for _, anomaly := range report.Anomalies {
			if anomaly.Kind != merger.AnomalyMergeError {
				continue
			}
			// Progress moves past these ids, so list them for a targeted rerun.
			state.result.FailedIDs = append(state.result.FailedIDs, anomaly.ExternalID)
			state.logger.Warn().Str("external_id", anomaly.ExternalID).Msg("Merge failed, id listed for rerun")
		}
	}

	if r.options.save != nil {
		if err := r.options.save(ctx, r.catalog); err != nil {
			return err
		}
	}

	state.progress.UpdatedAt = r.options.now()
	if r.options.progressPath != "" {
		if err := state.progress.Save(r.options.progressPath); err != nil {
			return err
		}
	}

	state.since = 0
	state.result.Checkpoints++
	state.logger.Info().
		Str("last_completed_id", state.progress.LastCompletedID).
		Int("completed", state.progress.CompletedCount).
		Int("total_records", r.catalog.Store.Len()).
		Msg("Checkpoint saved")
	return nil
}

// fetch calls the fetcher with exponential backoff between attempts.
func (r *Runner) fetch(ctx context.Context, id string) ([]*coasters.Record, error) {
	var lastErr error
	backoff := r.options.retryBackoff
	for attempt := 1; attempt <= r.options.maxAttempts; attempt++ {
		records, err := r.fetcher.Fetch(ctx, id)
		if err == nil {
			return records, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == r.options.maxAttempts {
			break
		}
		if err := sleep(ctx, backoff); err != nil {
			return nil, err
		}
		backoff *= 2
		if r.options.maxRetryBackoff > 0 && backoff > r.options.maxRetryBackoff {
			backoff = r.options.maxRetryBackoff
		}
	}
	return nil, &errors.FetchError{ExternalID: id, Attempts: r.options.maxAttempts, Err: lastErr}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
