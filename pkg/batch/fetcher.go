// Package batch runs long fetch-and-merge jobs over many external ids.
//
// The runner fetches ids one at a time, merges the collected records into
// the catalog at every checkpoint, saves the catalog, and records how far it
// got so an interrupted run can resume.
package batch

import (
	"context"
	"sort"
	"strconv"

	"github.com/coasterranker/coastermap/pkg/coasters"
)

// Fetcher returns the records the source holds for one external id: none
// when the id is unknown or filtered, one for a single attraction, several
// for a multi-track attraction.
type Fetcher interface {
	Fetch(ctx context.Context, externalID string) ([]*coasters.Record, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, externalID string) ([]*coasters.Record, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, externalID string) ([]*coasters.Record, error) {
	return f(ctx, externalID)
}

// Range returns the external ids start through end inclusive.
func Range(start, end int) []string {
	if end < start {
		return nil
	}
	ids := make([]string, 0, end-start+1)
	for id := start; id <= end; id++ {
		ids = append(ids, strconv.Itoa(id))
	}
	return ids
}

// IDsWithStatus returns the distinct external ids of records whose status
// equals status, sorted numerically. Non-numeric ids sort after numeric ones.
func IDsWithStatus(store *coasters.Store, status string) []string {
	seen := make(map[string]bool)
	var ids []string
	store.Range(func(_ string, record *coasters.Record) bool {
		ext := record.ExternalID()
		if ext != "" && !seen[ext] && record.Status() == status {
			seen[ext] = true
			ids = append(ids, ext)
		}
		return true
	})
	SortIDs(ids)
	return ids
}

// SortIDs sorts external ids numerically where possible.
func SortIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
}
