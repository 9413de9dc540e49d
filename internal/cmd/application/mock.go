package application

import (
	"github.com/rs/zerolog"

	"github.com/coasterranker/coastermap"
	"github.com/coasterranker/coastermap/pkg/constants"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	client, _ := coastermap.New(coastermap.WithCatalog(coasters.NewCatalog()))
//	mock := &application.Mock{
//	    ClientFunc: func(...coastermap.Option) (coastermap.Client, error) {
//	        return client, nil
//	    },
//	}
//	cmd := merge.NewCommand(mock)
type Mock struct {
	ClientFunc        func(opts ...coastermap.Option) (coastermap.Client, error)
	BatchSettingsFunc func() BatchSettings
	LoggerFunc        func() *zerolog.Logger
	OutputFormatFunc  func() string
	VersionFunc       func() string
	CommitFunc        func() string
	DateFunc          func() string
	BuiltByFunc       func() string
}

// Ensure Mock implements Application at compile time.
var _ Application = (*Mock)(nil)

// Client returns a client using the mock function or nil.
func (m *Mock) Client(opts ...coastermap.Option) (coastermap.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc(opts...)
	}
	return nil, nil
}

// BatchSettings returns settings using the mock function or the defaults
// without any delay.
func (m *Mock) BatchSettings() BatchSettings {
	if m.BatchSettingsFunc != nil {
		return m.BatchSettingsFunc()
	}
	return BatchSettings{SaveInterval: constants.DefaultSaveInterval}
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the output format using the mock function or "json".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// Version returns the version using the mock function or "test".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "test"
}

// Commit returns the commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns the date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns the builder using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}
