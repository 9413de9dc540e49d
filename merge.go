package coastermap

import (
	"context"

	"github.com/coasterranker/coastermap/pkg/coasters"
	"github.com/coasterranker/coastermap/pkg/merger"
)

// Compile-time interface check to ensure proper implementation.
var _ Merger = (*client)(nil)

// Merger merges fetched batches into the catalog.
type Merger interface {
	// Merge reconciles one fetched batch and reports what changed. The
	// catalog is modified in memory only; call Save to persist it.
	Merge(ctx context.Context, records []*coasters.Record) (*merger.Report, error)
}

// Merge reconciles records into the catalog.
func (c *client) Merge(ctx context.Context, records []*coasters.Record) (*merger.Report, error) {
	c.mu.Lock()
	report, events, err := c.merge(ctx, c.merger, records)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	c.hooks.fire(events)
	return report, nil
}

// merge runs m over the catalog and collects hook events. The caller holds
// the write lock.
func (c *client) merge(ctx context.Context, m merger.Merger, records []*coasters.Record) (*merger.Report, []event, error) {
	var before *coasters.Store
	if c.hooks.wantsUpdates() {
		before = c.catalog.Store.Clone()
	}

	report, err := m.Merge(ctx, c.catalog, records)
	if err != nil {
		return nil, nil, err
	}
	return report, collect(report, before, c.catalog.Store), nil
}

// recordingMerger merges through the client and keeps the hook events of
// every call. The caller holds the write lock.
type recordingMerger struct {
	client *client
	events []event
}

// Merge implements merger.Merger.
func (m *recordingMerger) Merge(ctx context.Context, _ *coasters.Catalog, records []*coasters.Record) (*merger.Report, error) {
	report, events, err := m.client.merge(ctx, m.client.merger, records)
	if err != nil {
		return nil, err
	}
	m.events = append(m.events, events...)
	return report, nil
}
