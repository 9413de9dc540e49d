package merger

import (
	"slices"

	"github.com/coasterranker/coastermap/pkg/coasters"
)

// Predicate reports whether a fetched record must be left out of a merge.
type Predicate func(record *coasters.Record) bool

// Denylist excludes records by exact model or manufacturer name. The source
// lists alpine and mountain coasters alongside roller coasters; they are not
// part of the catalog.
type Denylist struct {
	Models        []string `json:"models" yaml:"models"`
	Manufacturers []string `json:"manufacturers" yaml:"manufacturers"`
}

// DefaultDenylist returns the models and manufacturers excluded by default.
func DefaultDenylist() Denylist {
	return Denylist{
		Models:        []string{"Alpine Coaster", "Mountain Coaster"},
		Manufacturers: []string{"Yamasakutalab"},
	}
}

// Matches reports whether the record's model or manufacturer is denied.
func (d Denylist) Matches(record *coasters.Record) bool {
	if model := record.String(coasters.FieldModel); model != "" && slices.Contains(d.Models, model) {
		return true
	}
	if manufacturer := record.String(coasters.FieldManufacturer); manufacturer != "" && slices.Contains(d.Manufacturers, manufacturer) {
		return true
	}
	return false
}

// filter combines the denylist with any extra predicates.
type filter struct {
	denylist   Denylist
	predicates []Predicate
}

func newFilter(denylist Denylist, predicates []Predicate) *filter {
	return &filter{denylist: denylist, predicates: predicates}
}

// excluded reports whether a record is filtered out.
func (f *filter) excluded(record *coasters.Record) bool {
	if f.denylist.Matches(record) {
		return true
	}
	for _, predicate := range f.predicates {
		if predicate(record) {
			return true
		}
	}
	return false
}
