package validation

import (
	"sort"
	"strings"

	"github.com/coasterranker/coastermap/pkg/coasters"
)

const unknown = "Unknown"

// Stats summarizes the store.
type Stats struct {
	Total int `json:"total" yaml:"total"`
	Steel int `json:"steel" yaml:"steel"`
	Wood  int `json:"wood" yaml:"wood"`

	SplitTracks int `json:"split_tracks" yaml:"split_tracks"`
	SplitGroups int `json:"split_groups" yaml:"split_groups"`

	Types         Counter `json:"types" yaml:"types"`
	Manufacturers Counter `json:"manufacturers" yaml:"manufacturers"`
	Statuses      Counter `json:"statuses" yaml:"statuses"`
	Countries     Counter `json:"countries" yaml:"countries"`

	WithCoordinates int `json:"with_coordinates" yaml:"with_coordinates"`
	WithSpeed       int `json:"with_speed" yaml:"with_speed"`
	WithHeight      int `json:"with_height" yaml:"with_height"`
	WithLength      int `json:"with_length" yaml:"with_length"`
}

// Counter counts occurrences of string values.
type Counter map[string]int

// Entry is one counted value.
type Entry struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// Top returns the n most frequent values, ties broken alphabetically. n <= 0
// returns every value.
func (c Counter) Top(n int) []Entry {
	entries := make([]Entry, 0, len(c))
	for value, count := range c {
		entries = append(entries, Entry{Value: value, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Value < entries[j].Value
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Percent returns part as a percentage of the total.
func (s *Stats) Percent(part int) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(part) / float64(s.Total) * 100
}

// ComputeStats walks the store once.
func ComputeStats(store *coasters.Store) *Stats {
	stats := &Stats{
		Types:         Counter{},
		Manufacturers: Counter{},
		Statuses:      Counter{},
		Countries:     Counter{},
	}

	store.Range(func(_ string, record *coasters.Record) bool {
		stats.Total++

		kind := orUnknown(record.String(coasters.FieldType))
		stats.Types[kind]++
		switch lower := strings.ToLower(kind); {
		case strings.Contains(lower, "steel"):
			stats.Steel++
		case strings.Contains(lower, "wood"):
			stats.Wood++
		}

		stats.Manufacturers[orUnknown(record.String(coasters.FieldManufacturer))]++
		stats.Statuses[orUnknown(record.Status())]++
		stats.Countries[orUnknown(record.String(coasters.FieldCountry))]++

		if hasCoordinates(record) {
			stats.WithCoordinates++
		}
		if present(record, coasters.FieldSpeed) {
			stats.WithSpeed++
		}
		if present(record, coasters.FieldHeight) {
			stats.WithHeight++
		}
		if present(record, coasters.FieldLength) {
			stats.WithLength++
		}

		if record.IsSplitTrack() {
			stats.SplitTracks++
		}
		return true
	})

	stats.SplitGroups = len(coasters.SplitGroups(store))
	return stats
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknown
	}
	return s
}

func present(record *coasters.Record, field string) bool {
	v, ok := record.Get(field)
	return ok && !coasters.IsEmpty(v)
}

func hasCoordinates(record *coasters.Record) bool {
	if present(record, "coordinates") {
		return true
	}
	return present(record, coasters.FieldLatitude) && present(record, coasters.FieldLongitude)
}
