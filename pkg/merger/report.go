package merger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AnomalyKind classifies a record the engine could not merge normally.
type AnomalyKind string

// Anomaly kinds.
const (
	// AnomalyOrphanedMapping is a cross-reference entry whose local id has no record.
	AnomalyOrphanedMapping AnomalyKind = "orphaned_mapping"
	// AnomalyMissingExternalID is a fetched record without an external id.
	AnomalyMissingExternalID AnomalyKind = "missing_external_id"
	// AnomalyMergeError is a group whose merge failed.
	AnomalyMergeError AnomalyKind = "merge_error"
	// AnomalySplitFetchedAsSingle is a locally split attraction fetched as one record.
	AnomalySplitFetchedAsSingle AnomalyKind = "split_fetched_as_single"
)

// Anomaly describes one skipped or suspicious merge.
type Anomaly struct {
	Kind       AnomalyKind `json:"kind" yaml:"kind"`
	ExternalID string      `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	LocalIDs   []string    `json:"local_ids,omitempty" yaml:"local_ids,omitempty"`
	Message    string      `json:"message" yaml:"message"`
}

// Report summarizes one merge call, or several when accumulated by a batch run.
type Report struct {
	RunID           string   `json:"run_id" yaml:"run_id"`
	Updated         int      `json:"updated" yaml:"updated"`
	Added           int      `json:"added" yaml:"added"`
	PreservedSplits int      `json:"preserved_splits" yaml:"preserved_splits"`
	Skipped         int      `json:"skipped" yaml:"skipped"`
	Filtered        int      `json:"filtered" yaml:"filtered"`
	SimpleGroups    int      `json:"simple_groups" yaml:"simple_groups"`
	SplitGroups     int      `json:"split_groups" yaml:"split_groups"`
	TotalRecords    int      `json:"total_coasters" yaml:"total_coasters"`
	UpdatedIDs      []string `json:"updated_ids" yaml:"updated_ids"`
	AddedIDs        []string `json:"added_ids" yaml:"added_ids"`

	Anomalies []Anomaly `json:"anomalies,omitempty" yaml:"anomalies,omitempty"`
	Errors    []error   `json:"-" yaml:"-"`

	Metadata ReportMetadata `json:"metadata" yaml:"metadata"`
}

// ReportMetadata contains timing of the merge.
type ReportMetadata struct {
	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" yaml:"end_time"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// NewReport creates an empty report with a fresh run id.
func NewReport() *Report {
	return &Report{
		RunID:      uuid.NewString(),
		UpdatedIDs: []string{},
		AddedIDs:   []string{},
		Metadata: ReportMetadata{
			StartTime: time.Now(),
		},
	}
}

// Finalize records the end time and duration.
func (r *Report) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}

// IsSuccess returns true if no group failed.
func (r *Report) IsSuccess() bool {
	return len(r.Errors) == 0
}

// HasChanges returns true if any record was added or updated.
func (r *Report) HasChanges() bool {
	return r.Added > 0 || r.Updated > 0
}

// Summary returns a one-line human-readable summary.
func (r *Report) Summary() string {
	s := fmt.Sprintf("%d updated, %d added, %d split groups preserved, %d skipped, %d filtered; %d records total",
		r.Updated, r.Added, r.PreservedSplits, r.Skipped, r.Filtered, r.TotalRecords)
	if !r.IsSuccess() {
		s += fmt.Sprintf(" (%d groups failed)", len(r.Errors))
	}
	return s
}

// Accumulate folds another report into r. Counts and id lists add up; the
// total reflects the latest store size.
func (r *Report) Accumulate(other *Report) {
	if other == nil {
		return
	}
	r.Updated += other.Updated
	r.Added += other.Added
	r.PreservedSplits += other.PreservedSplits
	r.Skipped += other.Skipped
	r.Filtered += other.Filtered
	r.SimpleGroups += other.SimpleGroups
	r.SplitGroups += other.SplitGroups
	r.TotalRecords = other.TotalRecords
	r.UpdatedIDs = append(r.UpdatedIDs, other.UpdatedIDs...)
	r.AddedIDs = append(r.AddedIDs, other.AddedIDs...)
	r.Anomalies = append(r.Anomalies, other.Anomalies...)
	r.Errors = append(r.Errors, other.Errors...)
}

func (r *Report) added(id string) {
	r.Added++
	r.AddedIDs = append(r.AddedIDs, id)
}

func (r *Report) updated(id string) {
	r.Updated++
	r.UpdatedIDs = append(r.UpdatedIDs, id)
}

func (r *Report) skip(count int, anomaly Anomaly) {
	r.Skipped += count
	r.Anomalies = append(r.Anomalies, anomaly)
}
