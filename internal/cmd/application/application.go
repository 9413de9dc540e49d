// Package application provides the application interface for coastermap
// commands.
//
// Commands accept the Application interface rather than the concrete App,
// so they can be tested with Mock.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            client, err := app.Client()
//	            if err != nil {
//	                return err
//	            }
//	            // ... use client
//	            return nil
//	        },
//	    }
//	}
package application

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/coasterranker/coastermap"
)

// Application provides what commands need from the application.
// All methods must be safe for concurrent access.
type Application interface {
	// Client returns the catalog client. Without options, the shared
	// instance built from configuration is returned; with options, a new
	// client is created from configuration plus opts.
	Client(opts ...coastermap.Option) (coastermap.Client, error)

	// BatchSettings returns the configured batch update settings.
	BatchSettings() BatchSettings

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}

// BatchSettings configures batch updates.
type BatchSettings struct {
	ProgressPath string
	SaveInterval int
	FetchDelay   time.Duration
}
