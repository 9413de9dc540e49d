package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coasterranker/coastermap/pkg/batch"
	"github.com/coasterranker/coastermap/pkg/differ"
	"github.com/coasterranker/coastermap/pkg/export"
	"github.com/coasterranker/coastermap/pkg/merger"
	"github.com/coasterranker/coastermap/pkg/validation"
)

// topN is how many entries each statistics breakdown shows.
const topN = 10

var countAlign = []Align{AlignLeft, AlignRight}

// MergeReport renders a merge report as a counter table followed by its
// anomalies.
func MergeReport(report *merger.Report) Tables {
	tables := Tables{{
		Title:           "Merge " + report.RunID,
		Headers:         []string{"Counter", "Value"},
		ColumnAlignment: countAlign,
		Rows: [][]string{
			{Title("updated"), strconv.Itoa(report.Updated)},
			{Title("added"), strconv.Itoa(report.Added)},
			{Title("preserved_splits"), strconv.Itoa(report.PreservedSplits)},
			{Title("skipped"), strconv.Itoa(report.Skipped)},
			{Title("filtered"), strconv.Itoa(report.Filtered)},
			{Title("simple_groups"), strconv.Itoa(report.SimpleGroups)},
			{Title("split_groups"), strconv.Itoa(report.SplitGroups)},
			{Title("total_coasters"), strconv.Itoa(report.TotalRecords)},
			{Title("duration"), report.Metadata.Duration.String()},
		},
	}}

	if len(report.Anomalies) > 0 {
		anomalies := Data{
			Title:   "Anomalies",
			Headers: []string{"Kind", "External ID", "Local IDs", "Message"},
		}
		for _, a := range report.Anomalies {
			anomalies.Rows = append(anomalies.Rows, []string{
				string(a.Kind), a.ExternalID, strings.Join(a.LocalIDs, ", "), a.Message,
			})
		}
		tables = append(tables, anomalies)
	}
	return tables
}

// BatchResult renders a batch run with its accumulated merge report.
func BatchResult(result *batch.Result) Tables {
	tables := Tables{{
		Title:           "Batch " + result.RunID,
		Headers:         []string{"Counter", "Value"},
		ColumnAlignment: countAlign,
		Rows: [][]string{
			{Title("requested"), strconv.Itoa(result.Requested)},
			{Title("resumed"), strconv.Itoa(result.Resumed)},
			{Title("fetched"), strconv.Itoa(result.Fetched)},
			{Title("not_found"), strconv.Itoa(result.NotFound)},
			{Title("failed"), strconv.Itoa(result.Failed)},
			{Title("checkpoints"), strconv.Itoa(result.Checkpoints)},
			{Title("interrupted"), strconv.FormatBool(result.Interrupted)},
		},
	}}

	if len(result.StatusChanges) > 0 {
		changes := Data{
			Title:   "Status changes",
			Headers: []string{"External ID", "Name", "Old", "New"},
		}
		for _, c := range result.StatusChanges {
			changes.Rows = append(changes.Rows, []string{c.ExternalID, c.Name, c.Old, c.New})
		}
		tables = append(tables, changes)
	}
	if result.Report != nil {
		tables = append(tables, MergeReport(result.Report)...)
	}
	return tables
}

// ValidationReport renders the issue counts per category and every issue.
func ValidationReport(report *validation.Report) Tables {
	summary := Data{
		Title:           fmt.Sprintf("Validated %d records", report.Records),
		Headers:         []string{"Category", "Count"},
		ColumnAlignment: countAlign,
	}
	for _, c := range report.ByCategory() {
		summary.Rows = append(summary.Rows, []string{Title(string(c.Category)), strconv.Itoa(c.Count)})
	}
	if len(report.Issues) == 0 {
		return Tables{summary}
	}

	issues := Data{
		Title:   "Issues",
		Headers: []string{"Severity", "Category", "Local ID", "External ID", "Name", "Message"},
	}
	for _, i := range report.Issues {
		issues.Rows = append(issues.Rows, []string{
			string(i.Severity), string(i.Category), i.LocalID, i.ExternalID, i.Name, i.Message,
		})
	}
	return Tables{summary, issues}
}

// StoreStats renders store statistics.
func StoreStats(stats *validation.Stats) Tables {
	pct := func(n int) string {
		return fmt.Sprintf("%d (%.1f%%)", n, stats.Percent(n))
	}
	tables := Tables{{
		Title:           "Store",
		Headers:         []string{"Metric", "Value"},
		ColumnAlignment: countAlign,
		Rows: [][]string{
			{Title("total"), strconv.Itoa(stats.Total)},
			{Title("steel"), pct(stats.Steel)},
			{Title("wood"), pct(stats.Wood)},
			{Title("split_tracks"), strconv.Itoa(stats.SplitTracks)},
			{Title("split_groups"), strconv.Itoa(stats.SplitGroups)},
			{Title("with_coordinates"), pct(stats.WithCoordinates)},
			{Title("with_speed"), pct(stats.WithSpeed)},
			{Title("with_height"), pct(stats.WithHeight)},
			{Title("with_length"), pct(stats.WithLength)},
		},
	}}

	for _, breakdown := range []struct {
		title   string
		header  string
		counter validation.Counter
	}{
		{"Top types", "Type", stats.Types},
		{"Top manufacturers", "Manufacturer", stats.Manufacturers},
		{"Top statuses", "Status", stats.Statuses},
		{"Top countries", "Country", stats.Countries},
	} {
		data := Data{
			Title:           breakdown.title,
			Headers:         []string{breakdown.header, "Count"},
			ColumnAlignment: countAlign,
		}
		for _, e := range breakdown.counter.Top(topN) {
			data.Rows = append(data.Rows, []string{e.Value, pct(e.Count)})
		}
		tables = append(tables, data)
	}
	return tables
}

// ExportStats renders the rows an export wrote.
func ExportStats(path string, stats *export.Stats) Data {
	return Data{
		Title:           "Exported to " + path,
		Headers:         []string{"Table", "Rows"},
		ColumnAlignment: countAlign,
		Rows: [][]string{
			{"coasters", strconv.Itoa(stats.Coasters)},
			{"cross_references", strconv.Itoa(stats.CrossReferences)},
		},
	}
}

// Changeset renders store changes, one row per added or removed record and
// one row per changed field.
func Changeset(changeset *differ.Changeset) Data {
	data := Data{
		Title:   "Changes: " + changeset.String(),
		Headers: []string{"Change", "Local ID", "Name", "Field", "Old", "New"},
	}
	for _, r := range changeset.Added {
		data.Rows = append(data.Rows, []string{string(differ.ChangeTypeAdd), r.LocalID, r.Name, "", "", ""})
	}
	for _, u := range changeset.Updated {
		for _, c := range u.Changes {
			data.Rows = append(data.Rows, []string{string(c.Type), u.LocalID, u.Name, c.Field, c.OldValue, c.NewValue})
		}
	}
	for _, r := range changeset.Removed {
		data.Rows = append(data.Rows, []string{string(differ.ChangeTypeRemove), r.LocalID, r.Name, "", "", ""})
	}
	return data
}
