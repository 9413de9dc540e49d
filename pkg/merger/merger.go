// Package merger reconciles freshly fetched records against the local
// catalog.
//
// A batch is filtered, grouped by external id, and merged group by group.
// A group of one record updates or adds a single record; a larger group is a
// multi-track attraction whose tracks are matched by name against the records
// already sharing that external id. Curated fields are never erased by empty
// fetched values, and a failing group never stops the rest of the batch.
package merger

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/coasterranker/coastermap/pkg/coasters"
	"github.com/coasterranker/coastermap/pkg/errors"
	"github.com/coasterranker/coastermap/pkg/logging"
)

// Merger merges fetched records into a catalog.
type Merger interface {
	// Merge reconciles records into catalog in place and reports what changed.
	// The catalog must not be mutated concurrently.
	Merge(ctx context.Context, catalog *coasters.Catalog, records []*coasters.Record) (*Report, error)
}

// engine is the default implementation of Merger.
type engine struct {
	filter *filter
	scheme IDScheme
	policy fieldPolicy
}

// New creates a Merger with options.
func New(opts ...Option) (Merger, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &engine{
		filter: newFilter(options.denylist, options.exclusions),
		scheme: options.scheme,
		policy: fieldPolicy{fields: options.updateFields},
	}, nil
}

// mergeContext holds the state shared by every group of one merge call.
type mergeContext struct {
	catalog *coasters.Catalog
	report  *Report
	logger  *zerolog.Logger
}

// Merge reconciles a fetched batch.
func (e *engine) Merge(ctx context.Context, catalog *coasters.Catalog, records []*coasters.Record) (*Report, error) {
	if catalog == nil || catalog.Store == nil || catalog.CrossReference == nil {
		return nil, &errors.ValidationError{
			Field:   "catalog",
			Message: "store and cross-reference table are required",
		}
	}

	report := NewReport()
	ctx = logging.WithRunID(ctx, report.RunID)
	mctx := &mergeContext{
		catalog: catalog,
		report:  report,
		logger:  logging.FromContext(ctx),
	}

	// Step 1: Filter and group
	grouping := groupRecords(records, e.filter)
	report.Filtered = grouping.filtered
	if grouping.unkeyed > 0 {
		report.skip(grouping.unkeyed, Anomaly{
			Kind:    AnomalyMissingExternalID,
			Message: "fetched record has no external id",
		})
		mctx.logger.Warn().
			Int("count", grouping.unkeyed).
			Msg("Skipping fetched records without an external id")
	}

	mctx.logger.Debug().
		Int("records", len(records)).
		Int("groups", len(grouping.groups)).
		Int("filtered", grouping.filtered).
		Msg("Grouped fetched records")

	// Step 2: Merge each group
	for _, g := range grouping.groups {
		var err error
		if g.isSplit() {
			report.SplitGroups++
			err = e.mergeSplit(mctx, g)
		} else {
			report.SimpleGroups++
			err = e.mergeSingle(mctx, g.externalID, g.records[0])
		}
		if err != nil {
			e.fail(mctx, g, err)
		}
	}

	// Step 3: Finish the report
	report.TotalRecords = catalog.Store.Len()
	report.Finalize()

	mctx.logger.Info().
		Int("updated", report.Updated).
		Int("added", report.Added).
		Int("preserved_splits", report.PreservedSplits).
		Int("skipped", report.Skipped).
		Int("filtered", report.Filtered).
		Int("total", report.TotalRecords).
		Dur("duration", report.Metadata.Duration).
		Msg("Merge completed")

	return report, nil
}

// fail records a group that could not be merged.
func (e *engine) fail(mctx *mergeContext, g *group, err error) {
	mergeErr := errors.NewMergeError(g.externalID, len(g.records), err)
	mctx.report.Errors = append(mctx.report.Errors, mergeErr)
	mctx.report.skip(len(g.records), Anomaly{
		Kind:       AnomalyMergeError,
		ExternalID: g.externalID,
		Message:    err.Error(),
	})
	mctx.logger.Error().
		Err(err).
		Str("external_id", g.externalID).
		Int("tracks", len(g.records)).
		Msg("Failed to merge group")
}
