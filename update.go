package coastermap

import (
	"context"

	"github.com/coasterranker/coastermap/pkg/batch"
	"github.com/coasterranker/coastermap/pkg/coasters"
	"github.com/coasterranker/coastermap/pkg/save"
)

// Compile-time interface check to ensure proper implementation.
var _ Updater = (*client)(nil)

// Updater runs batch fetch-and-merge jobs against the catalog.
type Updater interface {
	// Update fetches ids through fetcher and merges them at every
	// checkpoint. Unless opts set another save function, the catalog is
	// saved with backups at each checkpoint.
	Update(ctx context.Context, fetcher batch.Fetcher, ids []string, opts ...batch.Option) (*batch.Result, error)
}

// Update runs a batch job. The catalog is locked for the whole run and hooks
// fire once it ends, interrupted or not.
func (c *client) Update(ctx context.Context, fetcher batch.Fetcher, ids []string, opts ...batch.Option) (*batch.Result, error) {
	recorder := &recordingMerger{client: c}

	saveFunc := batch.WithSaveFunc(func(ctx context.Context, _ *coasters.Catalog) error {
		return c.save(ctx)
	})
	runner, err := batch.NewRunner(fetcher, recorder, c.catalog, append([]batch.Option{saveFunc}, opts...)...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	result, runErr := runner.Run(ctx, ids)
	c.mu.Unlock()

	c.hooks.fire(recorder.events)
	return result, runErr
}

// save writes the catalog. The caller holds the lock.
func (c *client) save(ctx context.Context, opts ...save.Option) error {
	opts = append(append([]save.Option{}, c.options.saveOptions...), opts...)
	return c.catalog.Save(ctx, c.options.storePath, c.options.xrefPath, opts...)
}
