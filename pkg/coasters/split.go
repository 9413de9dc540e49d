package coasters

import "slices"

// SplitGroup is a multi-track attraction: every track shares one external id
// and lists the other tracks as siblings.
type SplitGroup struct {
	ExternalID string
	Members    []string
}

// Contains reports whether id is a track of the group.
func (g SplitGroup) Contains(id string) bool {
	return slices.Contains(g.Members, id)
}

// Siblings returns every member except id, in group order. The result is
// never nil.
func (g SplitGroup) Siblings(id string) []string {
	siblings := make([]string, 0, len(g.Members))
	for _, member := range g.Members {
		if member != id {
			siblings = append(siblings, member)
		}
	}
	return siblings
}

// Stamp writes the split-protection fields of track id onto record.
func (g SplitGroup) Stamp(record *Record, id, trackName string) {
	record.Set(FieldIsSplitTrack, true)
	record.Set(FieldSplitGroup, g.ExternalID)
	record.Set(FieldTrackName, trackName)
	record.Set(FieldSplitSiblings, g.Siblings(id))
}

// SplitGroups collects the split groups recorded in a store, keyed by
// split group id. Members are listed in store order.
func SplitGroups(store *Store) map[string]SplitGroup {
	groups := make(map[string]SplitGroup)
	store.Range(func(id string, record *Record) bool {
		if !record.IsSplitTrack() {
			return true
		}
		key := record.SplitGroup()
		group := groups[key]
		group.ExternalID = key
		group.Members = append(group.Members, id)
		groups[key] = group
		return true
	})
	return groups
}
