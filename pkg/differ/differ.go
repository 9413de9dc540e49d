package differ

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/coasterranker/coastermap/pkg/coasters"
)

// Differ handles change detection between store snapshots.
type Differ interface {
	// Stores compares two stores keyed by local id.
	Stores(existing, updated *coasters.Store) *Changeset

	// Records compares two versions of one record field by field.
	Records(existing, updated *coasters.Record) []FieldChange
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreFields map[string]bool
	valueWidth   int
}

// New creates a Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{
		ignoreFields: make(map[string]bool),
		valueWidth:   defaultValueWidth,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Stores compares two stores and returns the changes, sorted by local id.
// A nil store is treated as empty.
func (diff *differ) Stores(existing, updated *coasters.Store) *Changeset {
	if existing == nil {
		existing = coasters.NewStore()
	}
	if updated == nil {
		updated = coasters.NewStore()
	}

	changeset := &Changeset{
		Added:   []RecordRef{},
		Updated: []RecordUpdate{},
		Removed: []RecordRef{},
	}

	updated.Range(func(id string, record *coasters.Record) bool {
		old, ok := existing.Get(id)
		if !ok {
			changeset.Added = append(changeset.Added, ref(id, record))
			return true
		}
		if changes := diff.Records(old, record); len(changes) > 0 {
			changeset.Updated = append(changeset.Updated, RecordUpdate{
				RecordRef: ref(id, record),
				Changes:   changes,
			})
		}
		return true
	})

	existing.Range(func(id string, record *coasters.Record) bool {
		if !updated.Has(id) {
			changeset.Removed = append(changeset.Removed, ref(id, record))
		}
		return true
	})

	sortChangeset(changeset)
	changeset.summarize()
	return changeset
}

// Records compares fields in the existing record's order, then fields only
// the updated record carries.
func (diff *differ) Records(existing, updated *coasters.Record) []FieldChange {
	if existing == nil {
		existing = coasters.NewRecord()
	}
	if updated == nil {
		updated = coasters.NewRecord()
	}

	changes := []FieldChange{}
	for _, field := range existing.Keys() {
		if diff.ignoreFields[field] {
			continue
		}
		oldValue, _ := existing.Get(field)
		newValue, ok := updated.Get(field)
		switch {
		case !ok:
			changes = append(changes, FieldChange{
				Field:    field,
				OldValue: diff.render(oldValue),
				Type:     ChangeTypeRemove,
			})
		case !sameValue(oldValue, newValue):
			changes = append(changes, FieldChange{
				Field:    field,
				OldValue: diff.render(oldValue),
				NewValue: diff.render(newValue),
				Type:     ChangeTypeUpdate,
			})
		}
	}

	for _, field := range updated.Keys() {
		if diff.ignoreFields[field] || existing.Has(field) {
			continue
		}
		newValue, _ := updated.Get(field)
		changes = append(changes, FieldChange{
			Field:    field,
			NewValue: diff.render(newValue),
			Type:     ChangeTypeAdd,
		})
	}
	return changes
}

func ref(id string, record *coasters.Record) RecordRef {
	return RecordRef{
		LocalID:    id,
		ExternalID: record.ExternalID(),
		Name:       record.Name(),
	}
}

// sameValue treats values that render identically as equal, so an int
// written by the merge matches the json.Number it was decoded as.
func sameValue(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	return rawString(a) == rawString(b)
}

func rawString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case bool, int, int64, float64:
		return fmt.Sprint(t)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func (diff *differ) render(v any) string {
	return truncateString(rawString(v), diff.valueWidth)
}

// truncateString shortens s to maxLen runes including the ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if maxLen <= 0 || len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

func sortChangeset(c *Changeset) {
	sort.Slice(c.Added, func(i, j int) bool { return c.Added[i].LocalID < c.Added[j].LocalID })
	sort.Slice(c.Updated, func(i, j int) bool { return c.Updated[i].LocalID < c.Updated[j].LocalID })
	sort.Slice(c.Removed, func(i, j int) bool { return c.Removed[i].LocalID < c.Removed[j].LocalID })
}
