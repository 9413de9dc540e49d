package coastermap

import (
	"github.com/coasterranker/coastermap/pkg/coasters"
	"github.com/coasterranker/coastermap/pkg/constants"
	"github.com/coasterranker/coastermap/pkg/errors"
	"github.com/coasterranker/coastermap/pkg/merger"
	"github.com/coasterranker/coastermap/pkg/save"
)

// options holds the client configuration.
type options struct {
	storePath    string
	xrefPath     string
	saveOptions  []save.Option
	catalog      *coasters.Catalog
	mergeOptions []merger.Option
}

func defaults() *options {
	return &options{
		storePath: constants.DefaultStorePath,
		xrefPath:  constants.DefaultCrossReferencePath,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Option is a function that configures a Client.
type Option func(*options) error

// WithStorePath sets the record store file.
func WithStorePath(path string) Option {
	return func(o *options) error {
		if path == "" {
			return errors.NewValidationError("store_path", path, "cannot be empty")
		}
		o.storePath = path
		return nil
	}
}

// WithCrossReferencePath sets the cross-reference file.
func WithCrossReferencePath(path string) Option {
	return func(o *options) error {
		if path == "" {
			return errors.NewValidationError("xref_path", path, "cannot be empty")
		}
		o.xrefPath = path
		return nil
	}
}

// WithBackupDir sets where backups are written on save. The default is a
// backups directory next to the store.
func WithBackupDir(dir string) Option {
	return func(o *options) error {
		o.saveOptions = append(o.saveOptions, save.WithBackupDir(dir))
		return nil
	}
}

// WithSaveOptions sets save options applied to every save, including the
// checkpoints of Update. Options given to Save are applied after them.
func WithSaveOptions(opts ...save.Option) Option {
	return func(o *options) error {
		o.saveOptions = append(o.saveOptions, opts...)
		return nil
	}
}

// WithCatalog uses an in-memory catalog instead of loading one from disk.
func WithCatalog(catalog *coasters.Catalog) Option {
	return func(o *options) error {
		if catalog == nil || catalog.Store == nil || catalog.CrossReference == nil {
			return errors.NewValidationError("catalog", nil, "store and cross-reference are required")
		}
		o.catalog = catalog
		return nil
	}
}

// WithMergeOptions configures the merge engine.
func WithMergeOptions(opts ...merger.Option) Option {
	return func(o *options) error {
		o.mergeOptions = append(o.mergeOptions, opts...)
		return nil
	}
}
