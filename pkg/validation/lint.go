package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/coasterranker/coastermap/pkg/coasters"
)

// Rules configures the lint pass.
type Rules struct {
	// ExcludedKeywords flag records whose name or model mentions an excluded
	// ride category. Matching is case-insensitive; the first keyword found is
	// reported.
	ExcludedKeywords []string `json:"excluded_keywords" yaml:"excluded_keywords"`

	// SuspiciousManufacturers build both roller coasters and excluded rides.
	SuspiciousManufacturers []string `json:"suspicious_manufacturers" yaml:"suspicious_manufacturers"`

	// CriticalFields are reported when at least MinCriticalEmpty of them are empty.
	CriticalFields   []string `json:"critical_fields" yaml:"critical_fields"`
	MinCriticalEmpty int      `json:"min_critical_empty" yaml:"min_critical_empty"`
}

// DefaultRules returns the lint rules used by the validate command.
func DefaultRules() Rules {
	return Rules{
		ExcludedKeywords: []string{"alpine coaster", "mountain coaster", "alpine", "mountain"},
		SuspiciousManufacturers: []string{
			"Yamasakutalab",
			"Brandauer",
			"Aquatic Development Group",
			"Sunkid",
			"Wiegand",
		},
		CriticalFields:   []string{coasters.FieldName, coasters.FieldParkName, coasters.FieldType},
		MinCriticalEmpty: 2,
	}
}

// Lint flags records a curator should review. Findings are warnings; lint
// never fails a catalog.
func Lint(store *coasters.Store, rules Rules) []Issue {
	var issues []Issue
	store.Range(func(id string, record *coasters.Record) bool {
		issues = append(issues, lintRecord(id, record, rules)...)
		return true
	})
	return issues
}

func lintRecord(id string, record *coasters.Record, rules Rules) []Issue {
	var issues []Issue
	add := func(category Category, format string, args ...any) {
		issues = append(issues, Issue{
			Severity:   SeverityWarning,
			Category:   category,
			LocalID:    id,
			ExternalID: record.ExternalID(),
			Name:       record.Name(),
			Message:    fmt.Sprintf(format, args...),
		})
	}

	if blank(record, coasters.FieldType) {
		add(CategoryEmptyType, "type is empty")
	}

	name := strings.ToLower(record.Name())
	model := strings.ToLower(record.String(coasters.FieldModel))
	for _, keyword := range rules.ExcludedKeywords {
		keyword = strings.ToLower(keyword)
		if strings.Contains(name, keyword) || strings.Contains(model, keyword) {
			add(CategoryExcludedKeyword, "contains %q", keyword)
			break
		}
	}

	if manufacturer := record.String(coasters.FieldManufacturer); manufacturer != "" &&
		slices.Contains(rules.SuspiciousManufacturers, manufacturer) {
		add(CategorySuspiciousManufacturer, "manufacturer %s also builds excluded rides", manufacturer)
	}

	if parkName(record) == "" {
		add(CategoryMissingPark, "no park name")
	}

	empty := 0
	for _, field := range rules.CriticalFields {
		if field == coasters.FieldParkName {
			if parkName(record) == "" {
				empty++
			}
			continue
		}
		if blank(record, field) {
			empty++
		}
	}
	if rules.MinCriticalEmpty > 0 && empty >= rules.MinCriticalEmpty {
		add(CategoryCriticalFieldsEmpty, "%d critical fields empty", empty)
	}

	return issues
}

// blank reports whether a field is missing, empty, or whitespace.
func blank(record *coasters.Record, field string) bool {
	v, ok := record.Get(field)
	if !ok || coasters.IsEmpty(v) {
		return true
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// parkName accepts both the current field and the legacy "park" field.
func parkName(record *coasters.Record) string {
	if name := strings.TrimSpace(record.String(coasters.FieldParkName)); name != "" {
		return name
	}
	return strings.TrimSpace(record.String("park"))
}
