package coasters

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Store maps local ids to records. Iteration follows insertion order, which
// for a loaded store is the order of the file.
type Store struct {
	records *orderedmap.OrderedMap[string, *Record]
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{records: orderedmap.New[string, *Record]()}
}

func (s *Store) init() {
	if s.records == nil {
		s.records = orderedmap.New[string, *Record]()
	}
}

// Get returns the record stored under a local id.
func (s *Store) Get(id string) (*Record, bool) {
	if s == nil || s.records == nil {
		return nil, false
	}
	return s.records.Get(id)
}

// Has reports whether a local id is present.
func (s *Store) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Put stores a record under a local id. A new id is appended at the end;
// replacing an existing id keeps its position.
func (s *Store) Put(id string, record *Record) {
	s.init()
	s.records.Set(id, record)
}

// Delete removes a local id from the store.
func (s *Store) Delete(id string) {
	if s.records != nil {
		s.records.Delete(id)
	}
}

// Len returns the number of records.
func (s *Store) Len() int {
	if s == nil || s.records == nil {
		return 0
	}
	return s.records.Len()
}

// IDs returns every local id in store order.
func (s *Store) IDs() []string {
	ids := make([]string, 0, s.Len())
	s.Range(func(id string, _ *Record) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}

// Range calls fn for every record in store order until fn returns false.
func (s *Store) Range(fn func(id string, record *Record) bool) {
	if s == nil || s.records == nil {
		return
	}
	for pair := s.records.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// WithExternalID returns the local ids of every record carrying the given
// external id, in store order. The store is scanned; the cross-reference
// table is not consulted.
func (s *Store) WithExternalID(externalID string) []string {
	var ids []string
	if externalID == "" {
		return ids
	}
	s.Range(func(id string, record *Record) bool {
		if record.ExternalID() == externalID {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}

// Clone returns a deep copy of the store.
func (s *Store) Clone() *Store {
	clone := NewStore()
	s.Range(func(id string, record *Record) bool {
		clone.records.Set(id, record.Clone())
		return true
	})
	return clone
}

// Equal reports whether both stores hold equal records in the same order.
func (s *Store) Equal(other *Store) bool {
	if s.Len() != other.Len() {
		return false
	}
	a, b := s.IDs(), other.IDs()
	for i, id := range a {
		if b[i] != id {
			return false
		}
		ra, _ := s.Get(id)
		rb, _ := other.Get(id)
		if !ra.Equal(rb) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the store as a JSON object keyed by local id.
func (s *Store) MarshalJSON() ([]byte, error) {
	s.init()
	return encodeObject(s.records)
}

// UnmarshalJSON decodes a JSON object keyed by local id.
func (s *Store) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	s.records = orderedmap.New[string, *Record](raw.Len())
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		record := NewRecord()
		if err := json.Unmarshal(pair.Value, record); err != nil {
			return fmt.Errorf("record %s: %w", pair.Key, err)
		}
		s.records.Set(pair.Key, record)
	}
	return nil
}
