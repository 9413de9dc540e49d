// Package coastermap keeps a local roller coaster catalog in step with the
// records fetched from an external database.
//
// A Client owns one catalog (the record store and its cross-reference),
// merges fetched batches into it, fires hooks for added and updated records,
// and saves it with timestamped backups.
//
// Example usage:
//
//	client, err := coastermap.New(
//	    coastermap.WithStorePath("database/data/coasters_master.json"),
//	    coastermap.WithCrossReferencePath("database/data/rcdb_to_custom_mapping.json"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client.OnRecordAdded(func(record coasters.Record) {
//	    log.Printf("New coaster: %s", record.Name())
//	})
//
//	report, err := client.Merge(ctx, fetched)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Summary())
//
//	if err := client.Save(ctx); err != nil {
//	    log.Fatal(err)
//	}
package coastermap

import (
	"sync"

	"github.com/coasterranker/coastermap/pkg/coasters"
	"github.com/coasterranker/coastermap/pkg/errors"
	"github.com/coasterranker/coastermap/pkg/logging"
	"github.com/coasterranker/coastermap/pkg/merger"
	"github.com/coasterranker/coastermap/pkg/validation"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Catalog provides copy-on-read access to the catalog.
type Catalog interface {
	// Catalog returns a deep copy of the current catalog.
	Catalog() *coasters.Catalog

	// Validate checks the catalog invariants and lints its records.
	Validate(rules validation.Rules) *validation.Report

	// Stats summarizes the store.
	Stats() *validation.Stats
}

// Client manages a catalog with merges, batch updates, and event hooks.
type Client interface {
	Catalog

	// Merger merges fetched batches
	Merger

	// Updater runs batch fetch-and-merge jobs
	Updater

	// Persistence saves the catalog
	Persistence

	// Hooks registers change callbacks
	Hooks
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options

	// mu serializes writers; the catalog has a single writer at a time.
	mu      sync.RWMutex
	catalog *coasters.Catalog
	merger  merger.Merger

	hooks *hooks
}

// New creates a Client. Without WithCatalog, the store and cross-reference
// are loaded from their paths; missing files start an empty catalog.
func New(opts ...Option) (Client, error) {
	options, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	catalog := options.catalog
	if catalog == nil {
		catalog, err = coasters.LoadCatalog(options.storePath, options.xrefPath)
		if err != nil {
			return nil, err
		}
		logging.Debug().
			Str("store_path", options.storePath).
			Int("records", catalog.Store.Len()).
			Int("cross_references", catalog.CrossReference.Len()).
			Msg("Catalog loaded")
	}

	m, err := merger.New(options.mergeOptions...)
	if err != nil {
		return nil, errors.WrapResource("create", "merger", "", err)
	}

	return &client{
		options: options,
		catalog: catalog,
		merger:  m,
		hooks:   newHooks(),
	}, nil
}

// Catalog returns a copy of the current catalog.
func (c *client) Catalog() *coasters.Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catalog.Clone()
}

// Validate runs the invariant checks and the lint pass.
func (c *client) Validate(rules validation.Rules) *validation.Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return validation.Validate(c.catalog, rules)
}

// Stats summarizes the store.
func (c *client) Stats() *validation.Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return validation.ComputeStats(c.catalog.Store)
}
