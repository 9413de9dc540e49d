package coastermap

import (
	"context"

	"github.com/coasterranker/coastermap/pkg/save"
)

// Compile-time interface check to ensure proper implementation.
var _ Persistence = (*client)(nil)

// Persistence handles catalog persistence operations.
type Persistence interface {
	// Save writes the store and cross-reference, backing up the previous
	// files unless save.WithBackup(false) is given.
	Save(ctx context.Context, opts ...save.Option) error
}

// Save persists the catalog to its configured paths.
func (c *client) Save(ctx context.Context, opts ...save.Option) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.save(ctx, opts...)
}
