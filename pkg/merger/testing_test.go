package merger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coasterranker/coastermap/pkg/coasters"
)

// record builds a record from alternating keys and values.
func record(kv ...any) *coasters.Record {
	r := coasters.NewRecord()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1])
	}
	return r
}

// put stores r under id, stamping the id field the way the catalog files do.
func put(catalog *coasters.Catalog, id string, r *coasters.Record) {
	r.Set(coasters.FieldID, id)
	catalog.Store.Put(id, r)
}

func mustGet(t *testing.T, catalog *coasters.Catalog, id string) *coasters.Record {
	t.Helper()
	r, ok := catalog.Store.Get(id)
	require.True(t, ok, "record %s not in store", id)
	return r
}

func merge(t *testing.T, catalog *coasters.Catalog, records []*coasters.Record, opts ...Option) *Report {
	t.Helper()
	m, err := New(opts...)
	require.NoError(t, err)
	report, err := m.Merge(context.Background(), catalog, records)
	require.NoError(t, err)
	return report
}
