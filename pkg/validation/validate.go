package validation

import "github.com/coasterranker/coastermap/pkg/coasters"

// Validate runs the invariant checks and the lint pass.
func Validate(catalog *coasters.Catalog, rules Rules) *Report {
	issues := Invariants(catalog)
	issues = append(issues, Lint(catalog.Store, rules)...)
	return &Report{
		Records: catalog.Store.Len(),
		Issues:  issues,
	}
}
