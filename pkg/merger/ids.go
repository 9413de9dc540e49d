package merger

import (
	"fmt"
	"math"
	"strconv"

	"github.com/coasterranker/coastermap/pkg/coasters"
	"github.com/coasterranker/coastermap/pkg/constants"
	"github.com/coasterranker/coastermap/pkg/errors"
)

// maxIDWidth keeps the numeric suffix within an int.
const maxIDWidth = 18

// IDScheme describes engine-assigned local ids: a fixed prefix followed by a
// zero-padded decimal suffix of fixed width, e.g. C999000042.
type IDScheme struct {
	Prefix string
	Width  int
}

// DefaultIDScheme returns the C999 + six digit scheme.
func DefaultIDScheme() IDScheme {
	return IDScheme{Prefix: constants.DefaultIDPrefix, Width: constants.DefaultIDWidth}
}

// Validate checks the scheme is usable.
func (s IDScheme) Validate() error {
	if s.Prefix == "" {
		return errors.NewValidationError("id_prefix", s.Prefix, "cannot be empty")
	}
	if s.Width < 1 || s.Width > maxIDWidth {
		return errors.NewValidationError("id_width", s.Width, fmt.Sprintf("must be between 1 and %d", maxIDWidth))
	}
	return nil
}

// Parse returns the numeric suffix of an id that follows the scheme exactly.
// Ids with another prefix, another length, or a non-digit suffix are rejected.
func (s IDScheme) Parse(id string) (int, bool) {
	if len(id) != len(s.Prefix)+s.Width || id[:len(s.Prefix)] != s.Prefix {
		return 0, false
	}
	suffix := id[len(s.Prefix):]
	for i := 0; i < len(suffix); i++ {
		if suffix[i] < '0' || suffix[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Format renders the id with numeric suffix n.
func (s IDScheme) Format(n int) string {
	return fmt.Sprintf("%s%0*d", s.Prefix, s.Width, n)
}

// Capacity returns the largest suffix the scheme can hold.
func (s IDScheme) Capacity() int {
	return int(math.Pow10(s.Width)) - 1
}

// Next returns the id following the highest scheme id currently in the
// store, starting at 1. It reads the store on every call; callers insert the
// returned id before asking for another.
func (s IDScheme) Next(store *coasters.Store) (string, error) {
	highest := 0
	store.Range(func(id string, _ *coasters.Record) bool {
		if n, ok := s.Parse(id); ok && n > highest {
			highest = n
		}
		return true
	})
	if highest >= s.Capacity() {
		return "", fmt.Errorf("%w: %s", errors.ErrIDSpaceExhausted, s.Format(highest))
	}
	return s.Format(highest + 1), nil
}
