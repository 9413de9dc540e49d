package batch

import (
	"context"
	"time"

	"github.com/coasterranker/coastermap/pkg/coasters"
	"github.com/coasterranker/coastermap/pkg/constants"
	"github.com/coasterranker/coastermap/pkg/errors"
)

// SaveFunc persists the catalog at a checkpoint.
type SaveFunc func(ctx context.Context, catalog *coasters.Catalog) error

type options struct {
	saveInterval    int
	delay           time.Duration
	maxAttempts     int
	retryBackoff    time.Duration
	maxRetryBackoff time.Duration
	progressPath    string
	resume          bool
	save            SaveFunc
	statusWatch     bool
	now             func() time.Time
}

func defaultOptions() *options {
	return &options{
		saveInterval:    constants.DefaultSaveInterval,
		delay:           constants.DefaultFetchDelay,
		maxAttempts:     constants.MaxRetries,
		retryBackoff:    constants.RetryBackoff,
		maxRetryBackoff: constants.MaxRetryBackoff,
		statusWatch:     true,
		now:             time.Now,
	}
}

// Option is a function that configures a Runner.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithSaveInterval sets how many ids are fetched between checkpoints.
func WithSaveInterval(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return errors.NewValidationError("save_interval", n, "must be at least 1")
		}
		o.saveInterval = n
		return nil
	}
}

// WithDelay sets the pause between two fetches.
func WithDelay(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return errors.NewValidationError("fetch_delay", d, "cannot be negative")
		}
		o.delay = d
		return nil
	}
}

// WithRetries sets the number of attempts per id and the exponential
// backoff between them.
func WithRetries(attempts int, backoff, maxBackoff time.Duration) Option {
	return func(o *options) error {
		if attempts < 1 {
			return errors.NewValidationError("max_retries", attempts, "must be at least 1")
		}
		o.maxAttempts = attempts
		o.retryBackoff = backoff
		o.maxRetryBackoff = maxBackoff
		return nil
	}
}

// WithProgressFile enables checkpoint progress tracking at path. With resume
// set, ids up to the recorded position are skipped.
func WithProgressFile(path string, resume bool) Option {
	return func(o *options) error {
		o.progressPath = path
		o.resume = resume
		return nil
	}
}

// WithSaveFunc sets how the catalog is persisted at checkpoints. Without
// one, the runner merges in memory only.
func WithSaveFunc(save SaveFunc) Option {
	return func(o *options) error {
		o.save = save
		return nil
	}
}

// WithStatusWatch enables or disables status change tracking.
func WithStatusWatch(enabled bool) Option {
	return func(o *options) error {
		o.statusWatch = enabled
		return nil
	}
}
