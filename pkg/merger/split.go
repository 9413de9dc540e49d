package merger

import (
	"strings"

	"github.com/coasterranker/coastermap/pkg/coasters"
)

// mergeSplit reconciles a multi-track attraction: every fetched track is
// matched to at most one existing record sharing the external id, unmatched
// tracks become new records, and every track is stamped with the group.
func (e *engine) mergeSplit(mctx *mergeContext, g *group) error {
	store := mctx.catalog.Store
	logger := mctx.logger.With().Str("external_id", g.externalID).Logger()

	ids := matchTracks(store, store.WithExternalID(g.externalID), g.records)

	// New tracks get ids one at a time, each inserted before the next id is
	// derived, so a group never hands out the same id twice.
	isNew := make([]bool, len(ids))
	for i, track := range g.records {
		if ids[i] != "" {
			continue
		}
		id, err := e.scheme.Next(store)
		if err != nil {
			for j := range i {
				if isNew[j] {
					store.Delete(ids[j])
				}
			}
			return err
		}
		placeholder := track.Clone()
		placeholder.Set(coasters.FieldID, id)
		store.Put(id, placeholder)
		ids[i] = id
		isNew[i] = true
	}

	group := coasters.SplitGroup{ExternalID: g.externalID, Members: ids}
	updated := 0
	for i, track := range g.records {
		id := ids[i]
		stamped := track.Clone()
		group.Stamp(stamped, id, ExtractTrackName(track.Name()))

		if isNew[i] {
			stamped.Set(coasters.FieldID, id)
			store.Put(id, stamped)
			mctx.report.added(id)
			continue
		}

		record, _ := store.Get(id)
		e.policy.apply(record, stamped, true)
		mctx.report.updated(id)
		updated++
	}

	if !mctx.catalog.CrossReference.Has(g.externalID) {
		mctx.catalog.CrossReference.Set(g.externalID, ids[0])
	}
	if updated > 0 {
		mctx.report.PreservedSplits++
	}

	logger.Info().
		Int("tracks", len(ids)).
		Int("updated", updated).
		Int("added", len(ids)-updated).
		Msg("Merged split group")
	return nil
}

// matchTracks pairs each fetched track with an existing record. A record is
// claimed by at most one track. Exact name matches are taken for every track
// before any substring match is tried; candidates are considered in store
// order. Unmatched tracks are left as "".
func matchTracks(store *coasters.Store, candidates []string, tracks []*coasters.Record) []string {
	ids := make([]string, len(tracks))
	claimed := make(map[string]bool, len(candidates))

	claim := func(i int, match func(fetched, existing string) bool) {
		name := tracks[i].Name()
		if name == "" {
			return
		}
		for _, id := range candidates {
			if claimed[id] {
				continue
			}
			record, _ := store.Get(id)
			if match(name, record.Name()) {
				ids[i] = id
				claimed[id] = true
				return
			}
		}
	}

	for i := range tracks {
		claim(i, func(fetched, existing string) bool {
			return fetched == existing
		})
	}
	for i := range tracks {
		if ids[i] != "" {
			continue
		}
		claim(i, func(fetched, existing string) bool {
			return existing != "" && (strings.Contains(existing, fetched) || strings.Contains(fetched, existing))
		})
	}
	return ids
}
