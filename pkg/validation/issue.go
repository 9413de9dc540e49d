// Package validation checks a catalog for broken invariants and suspicious
// records, and computes summary statistics over the store.
package validation

import (
	"fmt"
	"sort"
)

// Severity ranks an issue.
type Severity string

// Severities.
const (
	// SeverityError marks a broken catalog invariant.
	SeverityError Severity = "error"
	// SeverityWarning marks a record a curator should look at.
	SeverityWarning Severity = "warning"
)

// Category names the check that raised an issue.
type Category string

// Invariant categories.
const (
	CategoryIDMismatch         Category = "id_mismatch"
	CategoryDuplicateID        Category = "duplicate_id"
	CategoryUnmappedExternalID Category = "unmapped_external_id"
	CategoryOrphanedMapping    Category = "orphaned_mapping"
	CategoryMappingMismatch    Category = "mapping_mismatch"
	CategoryUnknownSibling     Category = "unknown_sibling"
	CategoryAsymmetricSibling  Category = "asymmetric_sibling"
	CategorySplitGroupMismatch Category = "split_group_mismatch"
)

// Lint categories.
const (
	CategoryEmptyType              Category = "empty_type"
	CategoryExcludedKeyword        Category = "excluded_keyword"
	CategorySuspiciousManufacturer Category = "suspicious_manufacturer"
	CategoryMissingPark            Category = "missing_park"
	CategoryCriticalFieldsEmpty    Category = "critical_fields_empty"
)

// Issue is a single finding.
type Issue struct {
	Severity   Severity `json:"severity" yaml:"severity"`
	Category   Category `json:"category" yaml:"category"`
	LocalID    string   `json:"local_id,omitempty" yaml:"local_id,omitempty"`
	ExternalID string   `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	Message    string   `json:"message" yaml:"message"`
}

// String implements fmt.Stringer.
func (i Issue) String() string {
	if i.LocalID != "" {
		return fmt.Sprintf("[%s] %s: %s", i.Category, i.LocalID, i.Message)
	}
	return fmt.Sprintf("[%s] %s", i.Category, i.Message)
}

// Report groups the findings of a validation run.
type Report struct {
	Records int     `json:"records" yaml:"records"`
	Issues  []Issue `json:"issues" yaml:"issues"`
}

// Errors returns the invariant violations.
func (r *Report) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the lint findings.
func (r *Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

// IsValid returns true if no invariant is violated.
func (r *Report) IsValid() bool {
	return len(r.Errors()) == 0
}

// ByCategory counts issues per category, sorted by category name.
func (r *Report) ByCategory() []CategoryCount {
	counts := make(map[Category]int)
	for _, issue := range r.Issues {
		counts[issue.Category]++
	}
	result := make([]CategoryCount, 0, len(counts))
	for category, count := range counts {
		result = append(result, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Category < result[j].Category
	})
	return result
}

// CategoryCount is the number of issues in one category.
type CategoryCount struct {
	Category Category `json:"category" yaml:"category"`
	Count    int      `json:"count" yaml:"count"`
}

func (r *Report) filter(severity Severity) []Issue {
	var issues []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			issues = append(issues, issue)
		}
	}
	return issues
}
