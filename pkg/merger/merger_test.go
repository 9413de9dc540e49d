package merger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coasterranker/coastermap/pkg/coasters"
	"github.com/coasterranker/coastermap/pkg/errors"
	"github.com/coasterranker/coastermap/pkg/logging"
)

func TestMergeAddsNewRecord(t *testing.T) {
	catalog := coasters.NewCatalog()
	fetched := record("name", "Boulder Dash", "rcdbId", 1234, "parkName", "Lake Compounce")

	report := merge(t, catalog, []*coasters.Record{fetched})

	assert.Equal(t, 1, report.Added)
	assert.Equal(t, []string{"C999000001"}, report.AddedIDs)
	assert.Equal(t, 1, report.SimpleGroups)
	assert.Equal(t, 1, report.TotalRecords)
	assert.NotEmpty(t, report.RunID)

	added := mustGet(t, catalog, "C999000001")
	assert.Equal(t, []string{"name", "rcdbId", "parkName", "id"}, added.Keys())
	assert.Equal(t, "C999000001", added.LocalID())

	id, ok := catalog.CrossReference.Get("1234")
	require.True(t, ok)
	assert.Equal(t, "C999000001", id)

	assert.False(t, fetched.Has(coasters.FieldID), "fetched records are not mutated")
	added.Set("parkName", "changed")
	assert.Equal(t, "Lake Compounce", fetched.String("parkName"))
}

func TestMergeAssignsDistinctIDs(t *testing.T) {
	catalog := coasters.NewCatalog()
	put(catalog, "C999000007", record("name", "Existing", "rcdbId", 7))
	put(catalog, "C999ABCDEF", record("name", "Malformed"))
	put(catalog, "C9990000123", record("name", "Too long"))
	put(catalog, "C001002999", record("name", "Curated"))
	catalog.CrossReference.Set("7", "C999000007")

	batch := []*coasters.Record{
		record("name", "One", "rcdbId", 101),
		record("name", "Two", "rcdbId", 102),
		record("name", "Three", "rcdbId", 103),
	}
	report := merge(t, catalog, batch)

	assert.Equal(t, []string{"C999000008", "C999000009", "C999000010"}, report.AddedIDs)
	assert.Equal(t, 7, catalog.Store.Len())
}

func TestMergeSingleMatchOverwritesAllowedFields(t *testing.T) {
	catalog := coasters.NewCatalog()
	put(catalog, "C999000003", record(
		"name", "Old Name",
		"rcdbId", 77,
		"status", "Operating",
		"height", 30,
		"latitude", 52.1,
	))
	catalog.CrossReference.Set("77", "C999000003")

	fetched := record("name", "New Name", "rcdbId", 77, "status", "SBNO", "height", "", "speed", 0, "latitude", 1.5)
	report := merge(t, catalog, []*coasters.Record{fetched})

	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, []string{"C999000003"}, report.UpdatedIDs)
	assert.Zero(t, report.PreservedSplits)

	updated := mustGet(t, catalog, "C999000003")
	assert.Equal(t, "New Name", updated.Name())
	assert.Equal(t, "SBNO", updated.Status())
	height, _ := updated.Get("height")
	assert.Equal(t, 30, height)
	assert.False(t, updated.Has("speed"))
	latitude, _ := updated.Get("latitude")
	assert.Equal(t, 52.1, latitude, "fields outside the allow-list are not copied")
	assert.False(t, updated.Has(coasters.FieldIsSplitTrack))
}

func TestMergeOrphanedMappingIsSkipped(t *testing.T) {
	capture := logging.CaptureLoggingForTest(t)
	ctx := logging.WithLogger(context.Background(), capture.Logger)

	catalog := coasters.NewCatalog()
	put(catalog, "C999000001", record("name", "Unrelated", "rcdbId", 1))
	catalog.CrossReference.Set("77", "C999000404")
	before := catalog.Clone()

	m, err := New()
	require.NoError(t, err)
	report, err := m.Merge(ctx, catalog, []*coasters.Record{record("name", "Ghost", "rcdbId", 77)})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Added)
	assert.Zero(t, report.Updated)
	assert.True(t, report.IsSuccess())
	require.Len(t, report.Anomalies, 1)
	assert.Equal(t, AnomalyOrphanedMapping, report.Anomalies[0].Kind)
	assert.Equal(t, []string{"C999000404"}, report.Anomalies[0].LocalIDs)

	assert.True(t, before.Equal(catalog), "orphans are surfaced, not repaired")
	assert.True(t, capture.Contains("Mapping exists but record is not in the store"))
	assert.True(t, capture.Contains(`"local_id":"C999000404"`))
}

func TestMergeMultiTrackCheckedBeforeOrphan(t *testing.T) {
	catalog := coasters.NewCatalog()
	put(catalog, "C2", record("name", "Gemini - Blue", "rcdbId", 300, "status", "Operating"))
	put(catalog, "C3", record("name", "Gemini - Red", "rcdbId", 300, "status", "Operating"))
	catalog.CrossReference.Set("300", "C1")

	report := merge(t, catalog, []*coasters.Record{record("name", "Gemini", "rcdbId", 300, "status", "SBNO")})

	assert.Zero(t, report.Skipped)
	assert.ElementsMatch(t, []string{"C2", "C3"}, report.UpdatedIDs)
	assert.Equal(t, "SBNO", mustGet(t, catalog, "C2").Status())
	assert.Equal(t, "SBNO", mustGet(t, catalog, "C3").Status())
	assert.Equal(t, "Gemini - Blue", mustGet(t, catalog, "C2").Name(), "curated names are kept")
	assert.Equal(t, []string{"C3"}, mustGet(t, catalog, "C2").SplitSiblings())

	mapped, _ := catalog.CrossReference.Get("300")
	assert.Equal(t, "C1", mapped, "the stale mapping is left for a curator")
}

func TestMergeOrphanWithSingleRemainingTrack(t *testing.T) {
	catalog := coasters.NewCatalog()
	put(catalog, "C2", record("name", "Gemini - Blue", "rcdbId", 300, "status", "Operating"))
	catalog.CrossReference.Set("300", "C1")

	report := merge(t, catalog, []*coasters.Record{record("name", "Gemini", "rcdbId", 300, "status", "SBNO")})

	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Updated)
	assert.Equal(t, "Operating", mustGet(t, catalog, "C2").Status())
}

func TestMergeSplitFetchedAsSingle(t *testing.T) {
	catalog := coasters.NewCatalog()
	put(catalog, "C0310010001", record("name", "Gemini - Red", "rcdbId", 300, "speed", 50))
	put(catalog, "C0310010002", record("name", "Gemini (Blue)", "rcdbId", 300))
	put(catalog, "C0310010003", record("name", "Other", "rcdbId", 301))
	catalog.CrossReference.Set("300", "C0310010001")
	catalog.CrossReference.Set("301", "C0310010003")

	fetched := record("name", "Gemini", "rcdbId", 300, "speed", 60, "status", "Operating")
	report := merge(t, catalog, []*coasters.Record{fetched})

	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, []string{"C0310010001", "C0310010002"}, report.UpdatedIDs)
	assert.Equal(t, 1, report.PreservedSplits)
	assert.Zero(t, report.Added)
	require.Len(t, report.Anomalies, 1)
	assert.Equal(t, AnomalySplitFetchedAsSingle, report.Anomalies[0].Kind)

	red := mustGet(t, catalog, "C0310010001")
	assert.Equal(t, "Gemini - Red", red.Name())
	assert.Equal(t, "Red", red.TrackName())
	assert.True(t, red.IsSplitTrack())
	assert.Equal(t, "300", red.SplitGroup())
	assert.Equal(t, []string{"C0310010002"}, red.SplitSiblings())
	speed, _ := red.Get("speed")
	assert.Equal(t, 60, speed)

	blue := mustGet(t, catalog, "C0310010002")
	assert.Equal(t, "Gemini (Blue)", blue.Name())
	assert.Equal(t, "Blue", blue.TrackName())
	assert.Equal(t, []string{"C0310010001"}, blue.SplitSiblings())
	assert.Equal(t, "Operating", blue.Status())

	assert.Equal(t, "Other", mustGet(t, catalog, "C0310010003").Name())
}

func TestMergeSplitFetchedAsSingleWithoutCuratedName(t *testing.T) {
	catalog := coasters.NewCatalog()
	put(catalog, "C1", record("rcdbId", 300))
	put(catalog, "C2", record("name", "Twin Left", "rcdbId", 300))
	catalog.CrossReference.Set("300", "C1")

	merge(t, catalog, []*coasters.Record{record("name", "Twin Racer", "rcdbId", 300)})

	unnamed := mustGet(t, catalog, "C1")
	assert.Equal(t, "Twin Racer", unnamed.Name())
	assert.Equal(t, "Racer", unnamed.TrackName())
	assert.Equal(t, "Twin Left", mustGet(t, catalog, "C2").Name())
}

func TestMergeNewSplitGroup(t *testing.T) {
	catalog := coasters.NewCatalog()
	batch := []*coasters.Record{
		record("name", "Joris en de Draak - Water", "rcdbId", 500, "parkName", "Efteling"),
		record("name", "Joris en de Draak - Fire", "rcdbId", 500, "parkName", "Efteling"),
	}

	report := merge(t, catalog, batch)

	assert.Equal(t, 2, report.Added)
	assert.Equal(t, []string{"C999000001", "C999000002"}, report.AddedIDs)
	assert.Equal(t, 1, report.SplitGroups)
	assert.Zero(t, report.SimpleGroups)
	assert.Zero(t, report.PreservedSplits)

	water := mustGet(t, catalog, "C999000001")
	fire := mustGet(t, catalog, "C999000002")
	assert.Equal(t, "Water", water.TrackName())
	assert.Equal(t, "Fire", fire.TrackName())
	assert.Equal(t, []string{"C999000002"}, water.SplitSiblings())
	assert.Equal(t, []string{"C999000001"}, fire.SplitSiblings())
	assert.Equal(t, "500", water.SplitGroup())
	assert.Equal(t, "C999000001", water.LocalID())
	assert.Equal(t, []string{"name", "rcdbId", "parkName", "isSplitTrack", "splitGroup", "trackName", "splitSiblings", "id"}, water.Keys())

	id, ok := catalog.CrossReference.Get("500")
	require.True(t, ok)
	assert.Equal(t, "C999000001", id)

	for _, r := range batch {
		assert.False(t, r.Has(coasters.FieldIsSplitTrack), "fetched records are not mutated")
	}
}

func TestMergeSplitMatchesExistingTracks(t *testing.T) {
	catalog := coasters.NewCatalog()
	put(catalog, "C0310010001", record("name", "Joris en de Draak - Water", "rcdbId", 500, "height", 22))
	put(catalog, "C0310010002", record("name", "Joris en de Draak - Fire", "rcdbId", 500))

	batch := []*coasters.Record{
		record("name", "Joris en de Draak - Fire", "rcdbId", 500, "status", "Operating"),
		record("name", "Joris en de Draak - Water", "rcdbId", 500, "height", nil),
		record("name", "Joris en de Draak - Earth", "rcdbId", 500),
	}
	report := merge(t, catalog, batch)

	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, []string{"C0310010002", "C0310010001"}, report.UpdatedIDs)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, []string{"C999000001"}, report.AddedIDs)
	assert.Equal(t, 1, report.PreservedSplits)

	water := mustGet(t, catalog, "C0310010001")
	height, _ := water.Get("height")
	assert.Equal(t, 22, height)
	assert.Equal(t, []string{"C0310010002", "C999000001"}, water.SplitSiblings())

	fire := mustGet(t, catalog, "C0310010002")
	assert.Equal(t, "Operating", fire.Status())
	assert.Equal(t, []string{"C0310010001", "C999000001"}, fire.SplitSiblings())

	earth := mustGet(t, catalog, "C999000001")
	assert.Equal(t, "Earth", earth.TrackName())
	assert.Equal(t, []string{"C0310010002", "C0310010001"}, earth.SplitSiblings())

	id, _ := catalog.CrossReference.Get("500")
	assert.Equal(t, "C0310010002", id, "mapping points at the first fetched track")
}

func TestMergeSplitKeepsExistingMapping(t *testing.T) {
	catalog := coasters.NewCatalog()
	put(catalog, "C1", record("name", "Racer - Left", "rcdbId", 9))
	catalog.CrossReference.Set("9", "C1")

	merge(t, catalog, []*coasters.Record{
		record("name", "Racer - Right", "rcdbId", 9),
		record("name", "Racer - Left", "rcdbId", 9),
	})

	id, _ := catalog.CrossReference.Get("9")
	assert.Equal(t, "C1", id)
}

func TestMergeSplitClaimsExclusively(t *testing.T) {
	catalog := coasters.NewCatalog()
	put(catalog, "C1", record("name", "Twin", "rcdbId", 42))

	report := merge(t, catalog, []*coasters.Record{
		record("name", "Twin", "rcdbId", 42),
		record("name", "Twin", "rcdbId", 42),
	})

	assert.Equal(t, []string{"C1"}, report.UpdatedIDs)
	assert.Equal(t, []string{"C999000001"}, report.AddedIDs)
	assert.Equal(t, []string{"C999000001"}, mustGet(t, catalog, "C1").SplitSiblings())
	assert.Equal(t, []string{"C1"}, mustGet(t, catalog, "C999000001").SplitSiblings())
}

func TestMergeSplitExactMatchesBeforeSubstrings(t *testing.T) {
	catalog := coasters.NewCatalog()
	put(catalog, "C1", record("name", "Dragon", "rcdbId", 8))
	put(catalog, "C2", record("name", "Dragon Left", "rcdbId", 8))

	report := merge(t, catalog, []*coasters.Record{
		record("name", "Dragon Left Track", "rcdbId", 8),
		record("name", "Dragon", "rcdbId", 8),
	})

	assert.Equal(t, []string{"C2", "C1"}, report.UpdatedIDs)
	assert.Zero(t, report.Added)
	assert.Equal(t, "Dragon Left Track", mustGet(t, catalog, "C2").Name())
	assert.Equal(t, "Dragon", mustGet(t, catalog, "C1").Name())
}

func TestMergeSplitSubstringUsesStoreOrder(t *testing.T) {
	catalog := coasters.NewCatalog()
	put(catalog, "C2", record("name", "Loop", "rcdbId", 3))
	put(catalog, "C1", record("name", "Loop Racer", "rcdbId", 3))
	put(catalog, "C3", record("name", "", "rcdbId", 3))

	report := merge(t, catalog, []*coasters.Record{
		record("name", "Loop Racer Blue", "rcdbId", 3),
		record("name", "", "rcdbId", 3),
	})

	assert.Equal(t, []string{"C2"}, report.UpdatedIDs, "first candidate in store order wins")
	assert.Equal(t, []string{"C999000001"}, report.AddedIDs, "empty names never match")
}

func TestMergeFiltersExcludedRecords(t *testing.T) {
	tests := []struct {
		name     string
		record   *coasters.Record
		opts     []Option
		filtered bool
	}{
		{"alpine model", record("rcdbId", 1, "model", "Alpine Coaster"), nil, true},
		{"mountain model", record("rcdbId", 1, "model", "Mountain Coaster"), nil, true},
		{"denied manufacturer", record("rcdbId", 1, "manufacturer", "Yamasakutalab"), nil, true},
		{"model match is exact", record("rcdbId", 1, "model", "Alpine Coaster II"), nil, false},
		{"regular coaster", record("rcdbId", 1, "model", "Boomerang"), nil, false},
		{"empty denylist", record("rcdbId", 1, "model", "Alpine Coaster"), []Option{WithDenylist(Denylist{})}, false},
		{
			"custom predicate",
			record("rcdbId", 1, "type", "Kiddie"),
			[]Option{WithExclusion(func(r *coasters.Record) bool { return r.String("type") == "Kiddie" })},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := coasters.NewCatalog()
			report := merge(t, catalog, []*coasters.Record{tt.record}, tt.opts...)
			if tt.filtered {
				assert.Equal(t, 1, report.Filtered)
				assert.Zero(t, report.Added)
				assert.Zero(t, report.SimpleGroups)
				assert.Zero(t, catalog.Store.Len())
			} else {
				assert.Zero(t, report.Filtered)
				assert.Equal(t, 1, report.Added)
			}
		})
	}
}

func TestMergeFilterRunsBeforeGrouping(t *testing.T) {
	catalog := coasters.NewCatalog()
	report := merge(t, catalog, []*coasters.Record{
		record("name", "Track A", "rcdbId", 5),
		record("name", "Track B", "rcdbId", 5, "model", "Alpine Coaster"),
	})

	assert.Equal(t, 1, report.Filtered)
	assert.Equal(t, 1, report.SimpleGroups)
	assert.Zero(t, report.SplitGroups)
	assert.False(t, mustGet(t, catalog, "C999000001").IsSplitTrack())
}

func TestMergeSkipsRecordsWithoutExternalID(t *testing.T) {
	catalog := coasters.NewCatalog()
	report := merge(t, catalog, []*coasters.Record{
		record("name", "Nameless"),
		nil,
		record("name", "Kept", "rcdbId", 1),
	})

	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 1, report.Added)
	require.Len(t, report.Anomalies, 1)
	assert.Equal(t, AnomalyMissingExternalID, report.Anomalies[0].Kind)
}

func TestMergeIsIdempotent(t *testing.T) {
	catalog := coasters.NewCatalog()
	put(catalog, "C0310010003", record("name", "Old Name", "rcdbId", 77, "height", 30))
	put(catalog, "C0310010004", record("name", "Gemini - Red", "rcdbId", 300))
	put(catalog, "C0310010005", record("name", "Gemini - Blue", "rcdbId", 300))
	catalog.CrossReference.Set("77", "C0310010003")
	catalog.CrossReference.Set("300", "C0310010004")

	batch := []*coasters.Record{
		record("name", "Joris en de Draak - Water", "rcdbId", 500),
		record("name", "New Name", "rcdbId", 77, "status", "SBNO"),
		record("name", "Joris en de Draak - Fire", "rcdbId", 500),
		record("name", "Gemini", "rcdbId", 300, "speed", 60),
		record("name", "Fresh", "rcdbId", 900),
	}

	first := merge(t, catalog, batch)
	afterFirst := catalog.Clone()

	second := merge(t, catalog, batch)

	assert.True(t, afterFirst.Equal(catalog), "second merge must not change the catalog")
	assert.Equal(t, 3, first.Added)
	assert.Zero(t, second.Added)
	assert.Equal(t, first.Added+first.Updated, second.Updated)
	assert.Equal(t, first.TotalRecords, second.TotalRecords)
	assertSiblingSymmetry(t, catalog)
}

func TestMergeNeverClearsPopulatedFields(t *testing.T) {
	fields := DefaultUpdateFields()
	existing := record("rcdbId", 1)
	fetched := record("rcdbId", 1)
	for _, field := range fields {
		existing.Set(field, "curated "+field)
		fetched.Set(field, "")
	}

	catalog := coasters.NewCatalog()
	put(catalog, "C1", existing)
	catalog.CrossReference.Set("1", "C1")
	merge(t, catalog, []*coasters.Record{fetched})

	updated := mustGet(t, catalog, "C1")
	for _, field := range fields {
		assert.Equal(t, "curated "+field, updated.String(field))
	}
}

func TestMergeIDSpaceExhaustionIsIsolated(t *testing.T) {
	catalog := coasters.NewCatalog()
	put(catalog, "T8", record("name", "Existing", "rcdbId", 3))
	catalog.CrossReference.Set("3", "T8")

	report := merge(t, catalog, []*coasters.Record{
		record("name", "Split - A", "rcdbId", 2),
		record("name", "Split - B", "rcdbId", 2),
		record("name", "Existing", "rcdbId", 3, "status", "Closed"),
		record("name", "New", "rcdbId", 4),
	}, WithIDScheme(IDScheme{Prefix: "T", Width: 1}))

	assert.Equal(t, 2, report.Skipped, "the split group fails as a whole")
	assert.Equal(t, []string{"T8"}, report.UpdatedIDs)
	assert.Equal(t, []string{"T9"}, report.AddedIDs)
	require.Len(t, report.Errors, 1)
	assert.ErrorIs(t, report.Errors[0], errors.ErrIDSpaceExhausted)

	var mergeErr *errors.MergeError
	require.ErrorAs(t, report.Errors[0], &mergeErr)
	assert.Equal(t, "2", mergeErr.ExternalID)
	assert.Equal(t, 2, mergeErr.Tracks)

	assert.False(t, catalog.CrossReference.Has("2"))
	assert.Equal(t, "Closed", mustGet(t, catalog, "T8").Status())
	assert.Equal(t, []string{"T8", "T9"}, catalog.Store.IDs(), "partial inserts of the failed group are rolled back")
	assert.False(t, report.IsSuccess())
}

func TestMergeRequiresCatalog(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	_, err = m.Merge(context.Background(), nil, nil)
	assert.True(t, errors.IsValidationError(err))

	_, err = m.Merge(context.Background(), &coasters.Catalog{Store: coasters.NewStore()}, nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	_, err := New(WithIDScheme(IDScheme{Prefix: "", Width: 6}))
	assert.Error(t, err)

	_, err = New(WithExclusion(nil))
	assert.Error(t, err)

	_, err = New(WithUpdateFields("name", "id"))
	assert.Error(t, err)
}

func TestMergeCustomUpdateFields(t *testing.T) {
	catalog := coasters.NewCatalog()
	put(catalog, "C1", record("name", "Keep", "rcdbId", 1, "status", "Operating"))
	catalog.CrossReference.Set("1", "C1")

	merge(t, catalog, []*coasters.Record{record("name", "Drop", "rcdbId", 1, "status", "SBNO")},
		WithUpdateFields("status"))

	updated := mustGet(t, catalog, "C1")
	assert.Equal(t, "Keep", updated.Name())
	assert.Equal(t, "SBNO", updated.Status())
}

// assertSiblingSymmetry checks every split track's siblings exist, list it
// back, and share its split group.
func assertSiblingSymmetry(t *testing.T, catalog *coasters.Catalog) {
	t.Helper()
	catalog.Store.Range(func(id string, r *coasters.Record) bool {
		if !r.IsSplitTrack() {
			return true
		}
		for _, siblingID := range r.SplitSiblings() {
			sibling, ok := catalog.Store.Get(siblingID)
			if !assert.True(t, ok, "%s lists unknown sibling %s", id, siblingID) {
				continue
			}
			assert.Contains(t, sibling.SplitSiblings(), id)
			assert.Equal(t, r.SplitGroup(), sibling.SplitGroup())
		}
		return true
	})
}
