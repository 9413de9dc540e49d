package merger

import (
	"github.com/coasterranker/coastermap/pkg/coasters"
	"github.com/coasterranker/coastermap/pkg/errors"
)

// mergeSingle reconciles the only fetched record of an external id.
func (e *engine) mergeSingle(mctx *mergeContext, externalID string, fetched *coasters.Record) error {
	store := mctx.catalog.Store
	xref := mctx.catalog.CrossReference

	localID, mapped := xref.Get(externalID)
	if !mapped {
		id, err := e.scheme.Next(store)
		if err != nil {
			return err
		}
		record := fetched.Clone()
		record.Set(coasters.FieldID, id)
		store.Put(id, record)
		xref.Set(externalID, id)
		mctx.report.added(id)
		return nil
	}

	// A split that still has two or more tracks is refreshed even when the
	// mapped track is gone.
	if tracks := store.WithExternalID(externalID); len(tracks) > 1 {
		e.mergeSplitAsSingle(mctx, externalID, fetched, tracks)
		return nil
	}

	if !store.Has(localID) {
		anomaly := errors.NewOrphanedMappingError(externalID, localID)
		mctx.report.skip(1, Anomaly{
			Kind:       AnomalyOrphanedMapping,
			ExternalID: externalID,
			LocalIDs:   []string{localID},
			Message:    anomaly.Error(),
		})
		mctx.logger.Warn().
			Str("external_id", externalID).
			Str("local_id", localID).
			Msg("Mapping exists but record is not in the store")
		return nil
	}

	record, _ := store.Get(localID)
	e.policy.apply(record, fetched, false)
	mctx.report.updated(localID)
	return nil
}

// mergeSplitAsSingle updates every track of a locally split attraction that
// the source reported as one record. Curated track names are kept.
func (e *engine) mergeSplitAsSingle(mctx *mergeContext, externalID string, fetched *coasters.Record, tracks []string) {
	mctx.logger.Warn().
		Str("external_id", externalID).
		Strs("tracks", tracks).
		Msg("Split attraction fetched as a single record, updating all tracks")
	mctx.report.Anomalies = append(mctx.report.Anomalies, Anomaly{
		Kind:       AnomalySplitFetchedAsSingle,
		ExternalID: externalID,
		LocalIDs:   tracks,
		Message:    "source reported one record for a split attraction",
	})

	group := coasters.SplitGroup{ExternalID: externalID, Members: tracks}
	for _, id := range tracks {
		record, _ := mctx.catalog.Store.Get(id)
		curated := record.Name()

		e.policy.apply(record, fetched, false)
		if curated != "" {
			record.Set(coasters.FieldName, curated)
		}

		group.Stamp(record, id, ExtractTrackName(record.Name()))
		mctx.report.updated(id)
	}
	mctx.report.PreservedSplits++
}
