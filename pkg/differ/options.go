package differ

// defaultValueWidth caps rendered field values in a changeset.
const defaultValueWidth = 60

// Option is a functional option for configuring a Differ.
type Option func(*differ)

// WithIgnoredFields skips fields during comparison.
func WithIgnoredFields(fields ...string) Option {
	return func(d *differ) {
		for _, field := range fields {
			d.ignoreFields[field] = true
		}
	}
}

// WithValueWidth sets the maximum rendered width of old and new values.
// Zero or less disables truncation.
func WithValueWidth(width int) Option {
	return func(d *differ) {
		d.valueWidth = width
	}
}
