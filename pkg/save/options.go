// Package save configures how a catalog is written back to disk.
package save

import "time"

// Options is the configuration for save.
type Options struct {
	backup    bool
	backupDir string
	now       func() time.Time
}

// Backup reports whether existing files are copied aside before overwriting.
func (s *Options) Backup() bool {
	return s.backup
}

// BackupDir returns the directory backups are written to. Empty means
// a "backups" directory next to the store.
func (s *Options) BackupDir() string {
	return s.backupDir
}

// Now returns the timestamp used to name backups.
func (s *Options) Now() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Defaults returns the default save options.
func Defaults() *Options {
	return &Options{
		backup: true,
		now:    time.Now,
	}
}

// Apply applies the given options to the save options.
func (s *Options) Apply(opts ...Option) Options {
	for _, opt := range opts {
		opt(s)
	}
	return *s
}

// Option is a function that configures save options.
type Option func(*Options)

// WithBackup enables or disables the timestamped backup copy.
func WithBackup(enabled bool) Option {
	return func(s *Options) {
		s.backup = enabled
	}
}

// WithBackupDir overrides the backup location.
func WithBackupDir(dir string) Option {
	return func(s *Options) {
		s.backupDir = dir
	}
}

// WithClock sets the time source used for backup names.
func WithClock(now func() time.Time) Option {
	return func(s *Options) {
		s.now = now
	}
}
