package validation

import (
	"fmt"
	"slices"

	"github.com/coasterranker/coastermap/pkg/coasters"
)

// Invariants checks the relationships a merge must preserve between the
// store and the cross-reference table. Issues are returned in store order,
// followed by cross-reference issues in table order.
func Invariants(catalog *coasters.Catalog) []Issue {
	var issues []Issue
	store, xref := catalog.Store, catalog.CrossReference

	add := func(category Category, id string, record *coasters.Record, format string, args ...any) {
		issue := Issue{
			Severity: SeverityError,
			Category: category,
			LocalID:  id,
			Message:  fmt.Sprintf(format, args...),
		}
		if record != nil {
			issue.ExternalID = record.ExternalID()
			issue.Name = record.Name()
		}
		issues = append(issues, issue)
	}

	seen := make(map[string]string)
	store.Range(func(id string, record *coasters.Record) bool {
		if localID := record.LocalID(); localID != "" {
			if localID != id {
				add(CategoryIDMismatch, id, record, "id field %q differs from store key", localID)
			}
			if first, dup := seen[localID]; dup {
				add(CategoryDuplicateID, id, record, "id %q is also used by %s", localID, first)
			} else {
				seen[localID] = id
			}
		}

		if ext := record.ExternalID(); ext != "" && !xref.Has(ext) {
			add(CategoryUnmappedExternalID, id, record, "external id %s has no cross-reference entry", ext)
		}

		if record.IsSplitTrack() {
			checkSiblings(store, id, record, add)
		}
		return true
	})

	xref.Range(func(ext, localID string) bool {
		record, ok := store.Get(localID)
		switch {
		case !ok:
			issues = append(issues, Issue{
				Severity:   SeverityError,
				Category:   CategoryOrphanedMapping,
				LocalID:    localID,
				ExternalID: ext,
				Message:    fmt.Sprintf("external id %s maps to %s, which is not in the store", ext, localID),
			})
		case record.ExternalID() != ext:
			add(CategoryMappingMismatch, localID, record, "mapped from external id %s but carries %q", ext, record.ExternalID())
		}
		return true
	})

	return issues
}

type addFunc func(category Category, id string, record *coasters.Record, format string, args ...any)

func checkSiblings(store *coasters.Store, id string, record *coasters.Record, add addFunc) {
	if group, ext := record.SplitGroup(), record.ExternalID(); group != "" && ext != "" && group != ext {
		add(CategorySplitGroupMismatch, id, record, "split group %s differs from external id %s", group, ext)
	}

	for _, siblingID := range record.SplitSiblings() {
		sibling, ok := store.Get(siblingID)
		if !ok || siblingID == id {
			add(CategoryUnknownSibling, id, record, "sibling %s is not another record in the store", siblingID)
			continue
		}
		if !slices.Contains(sibling.SplitSiblings(), id) {
			add(CategoryAsymmetricSibling, id, record, "sibling %s does not list this track", siblingID)
		}
		if !sibling.IsSplitTrack() || sibling.SplitGroup() != record.SplitGroup() {
			add(CategorySplitGroupMismatch, id, record, "sibling %s is in split group %q, not %q",
				siblingID, sibling.SplitGroup(), record.SplitGroup())
		}
	}
}
