// Package coasters provides the record, store, and cross-reference types of
// the roller-coaster catalog together with their JSON persistence.
//
// Records keep their fields in file order. Stores keep their records in file
// order and append new records at the end, so iterating a store is
// deterministic across runs.
package coasters

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is a single catalog entry: an ordered mapping of field names to
// JSON values. Numbers decoded from files are kept as json.Number.
type Record struct {
	fields *orderedmap.OrderedMap[string, any]
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{fields: orderedmap.New[string, any]()}
}

// With sets a field and returns the record, for building fixtures.
func (r *Record) With(key string, value any) *Record {
	r.Set(key, value)
	return r
}

// Get returns the value of a field.
func (r *Record) Get(key string) (any, bool) {
	if r == nil || r.fields == nil {
		return nil, false
	}
	return r.fields.Get(key)
}

// Has reports whether the field is present, even when its value is null.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Set stores a field. Existing fields keep their position.
func (r *Record) Set(key string, value any) {
	if r.fields == nil {
		r.fields = orderedmap.New[string, any]()
	}
	r.fields.Set(key, value)
}

// Delete removes a field.
func (r *Record) Delete(key string) {
	if r.fields != nil {
		r.fields.Delete(key)
	}
}

// Keys returns the field names in order.
func (r *Record) Keys() []string {
	if r == nil || r.fields == nil {
		return nil
	}
	keys := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil || r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// String returns a field as a string. Numbers are formatted, other types
// yield "".
func (r *Record) String(key string) string {
	v, _ := r.Get(key)
	return stringify(v)
}

// Name returns the display name.
func (r *Record) Name() string {
	return r.String(FieldName)
}

// LocalID returns the value of the id field.
func (r *Record) LocalID() string {
	return r.String(FieldID)
}

// ExternalID returns the source system id normalized to a string, or "" when
// the record has none.
func (r *Record) ExternalID() string {
	return r.String(FieldExternalID)
}

// Status returns the operating status. It is stored either as a plain string
// or as an object carrying a "state" field.
func (r *Record) Status() string {
	v, _ := r.Get(FieldStatus)
	if m, ok := v.(map[string]any); ok {
		return stringify(m[FieldStatusState])
	}
	return stringify(v)
}

// IsSplitTrack reports whether the record is one track of a multi-track attraction.
func (r *Record) IsSplitTrack() bool {
	v, _ := r.Get(FieldIsSplitTrack)
	b, ok := v.(bool)
	return ok && b
}

// SplitGroup returns the external id of the split group the record belongs to.
func (r *Record) SplitGroup() string {
	return r.String(FieldSplitGroup)
}

// TrackName returns the short per-track label.
func (r *Record) TrackName() string {
	return r.String(FieldTrackName)
}

// SplitSiblings returns the local ids of the other tracks in the group.
func (r *Record) SplitSiblings() []string {
	v, _ := r.Get(FieldSplitSiblings)
	switch s := v.(type) {
	case []string:
		return append([]string(nil), s...)
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str := stringify(item); str != "" {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// Clone returns a deep copy of the record. Nested slices and objects are
// copied, so the clone never shares mutable state with the original.
func (r *Record) Clone() *Record {
	clone := NewRecord()
	if r == nil || r.fields == nil {
		return clone
	}
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		clone.fields.Set(pair.Key, CloneValue(pair.Value))
	}
	return clone
}

// Equal reports whether both records hold the same fields in the same order
// with deeply equal values.
func (r *Record) Equal(other *Record) bool {
	if r.Len() != other.Len() {
		return false
	}
	if r.Len() == 0 {
		return true
	}
	for pa, pb := r.fields.Oldest(), other.fields.Oldest(); pa != nil && pb != nil; pa, pb = pa.Next(), pb.Next() {
		if pa.Key != pb.Key || !reflect.DeepEqual(pa.Value, pb.Value) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the record as a JSON object in field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil || r.fields == nil {
		return []byte("{}"), nil
	}
	return encodeObject(r.fields)
}

// UnmarshalJSON decodes a JSON object, keeping field order and decoding
// numbers as json.Number.
func (r *Record) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return err
	}
	r.fields = orderedmap.New[string, any](raw.Len())
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		dec := json.NewDecoder(bytes.NewReader(pair.Value))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		r.fields.Set(pair.Key, v)
	}
	return nil
}

// CloneValue deep-copies a decoded JSON value.
func CloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = CloneValue(item)
		}
		return out
	case []string:
		return append([]string{}, t...)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = CloneValue(item)
		}
		return out
	case *Record:
		return t.Clone()
	default:
		return v
	}
}

// IsEmpty reports whether a value counts as absent: null, false, zero,
// an empty string, or an empty list or object.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f == 0
		}
		return t == ""
	case int:
		return t == 0
	case int64:
		return t == 0
	case int32:
		return t == 0
	case float64:
		return t == 0
	case float32:
		return t == 0
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case *Record:
		return t.Len() == 0
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Map:
			return rv.Len() == 0
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return rv.IsZero()
		}
		return false
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return normalizeNumber(t.String())
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// normalizeNumber turns "500.0" into "500" so ids written as floats compare
// equal to ids written as integers.
func normalizeNumber(s string) string {
	if !strings.ContainsAny(s, ".eE") {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) >= 1e15 {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}
