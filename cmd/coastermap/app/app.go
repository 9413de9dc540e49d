// Package app provides the application context and dependency management
// for the coastermap CLI: configuration, logging, and the lazily created
// catalog client shared by every command.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/coasterranker/coastermap"
	"github.com/coasterranker/coastermap/internal/cmd/application"
	"github.com/coasterranker/coastermap/pkg/errors"
	"github.com/coasterranker/coastermap/pkg/logging"
	"github.com/coasterranker/coastermap/pkg/merger"
	"github.com/coasterranker/coastermap/pkg/save"
)

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// App represents the coastermap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Client instance (lazy-initialized, singleton)
	mu     sync.Mutex
	client coastermap.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.logger == nil {
		app.setLogger(NewLogger(app.config))
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// BatchSettings returns the configured batch update settings.
func (a *App) BatchSettings() application.BatchSettings {
	return application.BatchSettings{
		ProgressPath: a.config.ProgressPath,
		SaveInterval: a.config.SaveInterval,
		FetchDelay:   a.config.FetchDelay,
	}
}

// Client returns the catalog client. Without options the shared instance is
// created on first use; with options a new client is built from the
// configuration plus opts.
func (a *App) Client(opts ...coastermap.Option) (coastermap.Client, error) {
	if len(opts) > 0 {
		return a.newClient(opts...)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		return a.client, nil
	}
	client, err := a.newClient()
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

func (a *App) newClient(extra ...coastermap.Option) (coastermap.Client, error) {
	opts, err := a.clientOptions()
	if err != nil {
		return nil, err
	}
	client, err := coastermap.New(append(opts, extra...)...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}
	return client, nil
}

// clientOptions builds client options from the configuration.
func (a *App) clientOptions() ([]coastermap.Option, error) {
	mergeOpts := []merger.Option{
		merger.WithDenylist(a.config.Denylist()),
		merger.WithIDScheme(a.config.IDScheme()),
	}
	exclusion, err := a.config.NameExclusion()
	if err != nil {
		return nil, err
	}
	if exclusion != nil {
		mergeOpts = append(mergeOpts, merger.WithExclusion(exclusion))
	}

	opts := []coastermap.Option{
		coastermap.WithStorePath(a.config.StorePath),
		coastermap.WithCrossReferencePath(a.config.XrefPath),
		coastermap.WithMergeOptions(mergeOpts...),
	}
	if a.config.BackupDir != "" {
		opts = append(opts, coastermap.WithBackupDir(a.config.BackupDir))
	}
	if a.config.NoBackup {
		opts = append(opts, coastermap.WithSaveOptions(save.WithBackup(false)))
	}
	return opts, nil
}

// setLogger installs logger as the app and package default logger.
func (a *App) setLogger(logger zerolog.Logger) {
	a.logger = &logger
	logging.SetDefault(logger)
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom client instance (useful for testing).
func WithClient(client coastermap.Client) Option {
	return func(a *App) error {
		a.client = client
		return nil
	}
}
