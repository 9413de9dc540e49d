// Package matcher matches attraction names against glob and regex patterns.
// It backs the name exclusions that keep unwanted records out of a merge.
package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/coasterranker/coastermap/pkg/errors"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style patterns (*, ?, [...]).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto detects the pattern type from its metacharacters.
	Auto
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Matcher reports whether a name matches a single pattern.
type Matcher interface {
	Match(input string) bool
	Pattern() string
	Type() PatternType
}

// Options configures the matcher behavior.
type Options struct {
	// CaseInsensitive makes matching case-insensitive.
	CaseInsensitive bool
	// Anchored requires regex patterns to match the whole input. Globs are
	// always anchored.
	Anchored bool
}

type matcher struct {
	pattern     string
	patternType PatternType
	compiled    *regexp.Regexp
}

// New compiles pattern. Globs are translated to regular expressions so that
// "*" also matches "/", which shows up in attraction names.
func New(patternType PatternType, pattern string, opts *Options) (Matcher, error) {
	if opts == nil {
		opts = &Options{}
	}
	if strings.TrimSpace(pattern) == "" {
		return nil, errors.NewValidationError("pattern", pattern, "cannot be empty")
	}
	if patternType == Auto {
		patternType = detectPatternType(pattern)
	}

	var expr string
	switch patternType {
	case Glob:
		expr = GlobToRegex(pattern)
	case Regex:
		expr = pattern
		if opts.Anchored {
			if !strings.HasPrefix(expr, "^") {
				expr = "^" + expr
			}
			if !strings.HasSuffix(expr, "$") {
				expr += "$"
			}
		}
	default:
		return nil, errors.NewValidationError("pattern_type", patternType.String(), "unsupported pattern type")
	}
	if opts.CaseInsensitive && !strings.HasPrefix(expr, "(?i)") {
		expr = "(?i)" + expr
	}

	compiled, err := regexp.Compile(expr)
	if err != nil {
		return nil, &errors.ValidationError{
			Field:   "pattern",
			Value:   pattern,
			Message: fmt.Sprintf("invalid %s pattern: %v", patternType, err),
		}
	}
	return &matcher{pattern: pattern, patternType: patternType, compiled: compiled}, nil
}

func (m *matcher) Match(input string) bool { return m.compiled.MatchString(input) }
func (m *matcher) Pattern() string { return m.pattern }
func (m *matcher) Type() PatternType { return m.patternType }

// detectPatternType treats a pattern as a regex when it carries regex-only
// syntax, and as a glob otherwise.
func detectPatternType(pattern string) PatternType {
	for _, indicator := range []string{
		"^", "$", `\d`, `\w`, `\s`, `\D`, `\W`, `\S`,
		"(?:", "(?i)", "{", "}", "+", "|", "(", ")",
	} {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}

// GlobToRegex converts a glob pattern to an anchored regex.
func GlobToRegex(glob string) string {
	var regex strings.Builder
	regex.WriteString("^")

	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '*':
			regex.WriteString(".*")
		case '?':
			regex.WriteString(".")
		case '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				regex.WriteString(`\[`)
				continue
			}
			class := glob[i+1 : i+1+end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			regex.WriteString("[" + class + "]")
			i += end + 1
		case '\\':
			if i+1 < len(glob) {
				i++
				regex.WriteString(regexp.QuoteMeta(string(glob[i])))
			}
		default:
			regex.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	regex.WriteString("$")
	return regex.String()
}

// Set matches an input against several patterns.
type Set struct {
	matchers []Matcher
}

// NewSet compiles every pattern with auto-detection. Blank patterns are
// skipped.
func NewSet(patterns []string, opts *Options) (*Set, error) {
	set := &Set{}
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}
		m, err := New(Auto, pattern, opts)
		if err != nil {
			return nil, err
		}
		set.matchers = append(set.matchers, m)
	}
	return set, nil
}

// Match returns the first pattern matching input.
func (s *Set) Match(input string) (string, bool) {
	for _, m := range s.matchers {
		if m.Match(input) {
			return m.Pattern(), true
		}
	}
	return "", false
}

// Len returns the number of compiled patterns.
func (s *Set) Len() int { return len(s.matchers) }
