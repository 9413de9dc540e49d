package coasters

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// CrossReference maps external ids to local ids. For a split group the
// external id points at the first track.
type CrossReference struct {
	entries *orderedmap.OrderedMap[string, string]
}

// NewCrossReference returns an empty table.
func NewCrossReference() *CrossReference {
	return &CrossReference{entries: orderedmap.New[string, string]()}
}

// Get returns the local id mapped to an external id.
func (x *CrossReference) Get(externalID string) (string, bool) {
	if x == nil || x.entries == nil {
		return "", false
	}
	return x.entries.Get(externalID)
}

// Has reports whether an external id is mapped.
func (x *CrossReference) Has(externalID string) bool {
	_, ok := x.Get(externalID)
	return ok
}

// Set maps an external id to a local id.
func (x *CrossReference) Set(externalID, localID string) {
	if x.entries == nil {
		x.entries = orderedmap.New[string, string]()
	}
	x.entries.Set(externalID, localID)
}

// Len returns the number of entries.
func (x *CrossReference) Len() int {
	if x == nil || x.entries == nil {
		return 0
	}
	return x.entries.Len()
}

// Range calls fn for every entry in table order until fn returns false.
func (x *CrossReference) Range(fn func(externalID, localID string) bool) {
	if x == nil || x.entries == nil {
		return
	}
	for pair := x.entries.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone returns a copy of the table.
func (x *CrossReference) Clone() *CrossReference {
	clone := NewCrossReference()
	x.Range(func(externalID, localID string) bool {
		clone.entries.Set(externalID, localID)
		return true
	})
	return clone
}

// Equal reports whether both tables hold the same entries in the same order.
func (x *CrossReference) Equal(other *CrossReference) bool {
	if x.Len() != other.Len() {
		return false
	}
	if x.Len() == 0 {
		return true
	}
	equal := true
	pb := other.entries.Oldest()
	x.Range(func(externalID, localID string) bool {
		if pb == nil || pb.Key != externalID || pb.Value != localID {
			equal = false
			return false
		}
		pb = pb.Next()
		return true
	})
	return equal
}

// MarshalJSON encodes the table as a JSON object.
func (x *CrossReference) MarshalJSON() ([]byte, error) {
	if x.entries == nil {
		return []byte("{}"), nil
	}
	return encodeObject(x.entries)
}

// UnmarshalJSON decodes a JSON object of external id to local id. Local ids
// written as numbers are accepted.
func (x *CrossReference) UnmarshalJSON(data []byte) error {
	record := NewRecord()
	if err := record.UnmarshalJSON(data); err != nil {
		return err
	}
	x.entries = orderedmap.New[string, string](record.Len())
	for _, key := range record.Keys() {
		x.entries.Set(key, record.String(key))
	}
	return nil
}
