// Package dump serves pre-fetched source records from a JSON file.
//
// The file is either an array of records, grouped by their rcdbId, or an
// object keyed by external id whose values are a record or an array of
// records. Records marked "filtered": true stand for ids the source
// rejected and are never served.
package dump

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/coasterranker/coastermap/pkg/coasters"
	"github.com/coasterranker/coastermap/pkg/errors"
	"github.com/coasterranker/coastermap/pkg/logging"
)

// Source is a batch.Fetcher over a dump file. The file is read on first use.
type Source struct {
	path string

	once     sync.Once
	err      error
	records  *orderedmap.OrderedMap[string, []*coasters.Record]
	filtered int
}

// Option configures a Source.
type Option func(*Source)

// WithPath sets the dump file path.
func WithPath(path string) Option {
	return func(s *Source) {
		s.path = path
	}
}

// New creates a dump source.
func New(opts ...Option) *Source {
	s := &Source{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the dump file. Calling it is optional, Fetch loads on demand.
func (s *Source) Load(ctx context.Context) error {
	s.once.Do(func() {
		s.err = s.load(ctx)
	})
	return s.err
}

// Fetch returns copies of the records held for externalID, or none when the
// id is absent or filtered.
func (s *Source) Fetch(ctx context.Context, externalID string) ([]*coasters.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	records, ok := s.records.Get(externalID)
	if !ok {
		return nil, nil
	}
	out := make([]*coasters.Record, len(records))
	for i, record := range records {
		out[i] = record.Clone()
	}
	return out, nil
}

// IDs returns the external ids in the dump in file order.
func (s *Source) IDs(ctx context.Context) ([]string, error) {
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	ids := make([]string, 0, s.records.Len())
	for pair := s.records.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids, nil
}

// Filtered returns how many records the dump marked as filtered.
func (s *Source) Filtered() int {
	return s.filtered
}

func (s *Source) load(ctx context.Context) error {
	if s.path == "" {
		return errors.NewValidationError("dump_path", s.path, "cannot be empty")
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return errors.WrapIO("read", s.path, err)
	}

	s.records = orderedmap.New[string, []*coasters.Record]()
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '[':
		err = s.loadArray(trimmed)
	default:
		err = s.loadObject(trimmed)
	}
	if err != nil {
		return errors.WrapParse("json", s.path, err)
	}

	logging.FromContext(ctx).Info().
		Str("path", s.path).
		Int("external_ids", s.records.Len()).
		Int("filtered", s.filtered).
		Msg("Loaded source dump")
	return nil
}

func (s *Source) loadArray(data []byte) error {
	var records []*coasters.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	for _, record := range records {
		s.add(record.ExternalID(), record)
	}
	return nil
}

func (s *Source) loadObject(data []byte) error {
	entries := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, entries); err != nil {
		return err
	}
	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		raw := bytes.TrimSpace(pair.Value)
		if len(raw) > 0 && raw[0] == '[' {
			var records []*coasters.Record
			if err := json.Unmarshal(raw, &records); err != nil {
				return err
			}
			for _, record := range records {
				s.add(pair.Key, record)
			}
			continue
		}
		record := coasters.NewRecord()
		if err := json.Unmarshal(raw, record); err != nil {
			return err
		}
		s.add(pair.Key, record)
	}
	return nil
}

func (s *Source) add(externalID string, record *coasters.Record) {
	if record == nil || externalID == "" {
		return
	}
	if filtered, _ := record.Get(coasters.FieldFiltered); filtered == true {
		s.filtered++
		return
	}
	if !record.Has(coasters.FieldExternalID) {
		record.Set(coasters.FieldExternalID, externalID)
	}
	records, _ := s.records.Get(externalID)
	s.records.Set(externalID, append(records, record))
}
