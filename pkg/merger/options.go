package merger

import (
	"github.com/coasterranker/coastermap/pkg/coasters"
	"github.com/coasterranker/coastermap/pkg/errors"
)

// options configures a Merger.
type options struct {
	denylist     Denylist
	exclusions   []Predicate
	scheme       IDScheme
	updateFields []string
}

func defaultOptions() *options {
	return &options{
		denylist:     DefaultDenylist(),
		scheme:       DefaultIDScheme(),
		updateFields: DefaultUpdateFields(),
	}
}

// Option is a function that configures a Merger.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns merger options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithDenylist replaces the model and manufacturer denylist. An empty
// denylist excludes nothing.
func WithDenylist(denylist Denylist) Option {
	return func(o *options) error {
		o.denylist = denylist
		return nil
	}
}

// WithExclusion adds a predicate; fetched records it matches are filtered
// out before grouping.
func WithExclusion(predicate Predicate) Option {
	return func(o *options) error {
		if predicate == nil {
			return &errors.ValidationError{
				Field:   "exclusion",
				Message: "cannot be nil",
			}
		}
		o.exclusions = append(o.exclusions, predicate)
		return nil
	}
}

// WithIDScheme sets the local id scheme used for new records.
func WithIDScheme(scheme IDScheme) Option {
	return func(o *options) error {
		if err := scheme.Validate(); err != nil {
			return err
		}
		o.scheme = scheme
		return nil
	}
}

// WithUpdateFields replaces the allow-list of fields copied onto existing
// records.
func WithUpdateFields(fields ...string) Option {
	return func(o *options) error {
		for _, field := range fields {
			switch field {
			case "", coasters.FieldID:
				return &errors.ValidationError{
					Field:   "update_fields",
					Value:   field,
					Message: "field cannot be updated from fetched data",
				}
			}
		}
		o.updateFields = append([]string(nil), fields...)
		return nil
	}
}
