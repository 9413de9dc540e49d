// Package differ compares two snapshots of the coaster store and reports
// which records were added, removed, or changed field by field.
package differ

import (
	"fmt"
	"strings"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates a record or field was added.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates a record or field was updated.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates a record or field was removed.
	ChangeTypeRemove ChangeType = "remove"
)

// FieldChange represents a change to a single field.
type FieldChange struct {
	Field    string     `json:"field" yaml:"field"`
	OldValue string     `json:"old_value,omitempty" yaml:"old_value,omitempty"`
	NewValue string     `json:"new_value,omitempty" yaml:"new_value,omitempty"`
	Type     ChangeType `json:"type" yaml:"type"`
}

// RecordRef identifies a record in a changeset.
type RecordRef struct {
	LocalID    string `json:"local_id" yaml:"local_id"`
	ExternalID string `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
}

// RecordUpdate represents an update to an existing record.
type RecordUpdate struct {
	RecordRef `yaml:",inline"`
	Changes   []FieldChange `json:"changes" yaml:"changes"`
}

// Changeset represents all changes between two stores.
type Changeset struct {
	Added   []RecordRef    `json:"added" yaml:"added"`
	Updated []RecordUpdate `json:"updated" yaml:"updated"`
	Removed []RecordRef    `json:"removed" yaml:"removed"`
	Summary Summary        `json:"summary" yaml:"summary"`
}

// Summary provides summary statistics for a changeset.
type Summary struct {
	Added         int `json:"added" yaml:"added"`
	Updated       int `json:"updated" yaml:"updated"`
	Removed       int `json:"removed" yaml:"removed"`
	FieldsChanged int `json:"fields_changed" yaml:"fields_changed"`
	TotalChanges  int `json:"total_changes" yaml:"total_changes"`
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c.Summary.TotalChanges > 0
}

func (c *Changeset) summarize() {
	fields := 0
	for _, update := range c.Updated {
		fields += len(update.Changes)
	}
	c.Summary = Summary{
		Added:         len(c.Added),
		Updated:       len(c.Updated),
		Removed:       len(c.Removed),
		FieldsChanged: fields,
		TotalChanges:  len(c.Added) + len(c.Updated) + len(c.Removed),
	}
}

// String returns a one-line description of the changeset.
func (c *Changeset) String() string {
	if !c.HasChanges() {
		return "no changes"
	}
	var parts []string
	if n := c.Summary.Added; n > 0 {
		parts = append(parts, fmt.Sprintf("%d added", n))
	}
	if n := c.Summary.Updated; n > 0 {
		parts = append(parts, fmt.Sprintf("%d updated (%d fields)", n, c.Summary.FieldsChanged))
	}
	if n := c.Summary.Removed; n > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", n))
	}
	return strings.Join(parts, ", ")
}
