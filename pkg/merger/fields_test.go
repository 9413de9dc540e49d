package merger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coasterranker/coastermap/pkg/coasters"
)

func TestFieldPolicyCopiesOnlyNonEmpty(t *testing.T) {
	policy := fieldPolicy{fields: DefaultUpdateFields()}
	existing := record("name", "Curated", "height", json.Number("30"), "inversions", json.Number("2"), "status", "Operating")
	fetched := record("name", "Fetched", "height", json.Number("0"), "inversions", nil, "status", "", "length", json.Number("900"))

	policy.apply(existing, fetched, false)

	assert.Equal(t, "Fetched", existing.Name())
	height, _ := existing.Get("height")
	assert.Equal(t, json.Number("30"), height)
	inversions, _ := existing.Get("inversions")
	assert.Equal(t, json.Number("2"), inversions)
	assert.Equal(t, "Operating", existing.Status())
	length, _ := existing.Get("length")
	assert.Equal(t, json.Number("900"), length)
}

func TestFieldPolicyAlwaysCopiesExternalID(t *testing.T) {
	policy := fieldPolicy{fields: DefaultUpdateFields()}

	existing := record("rcdbId", json.Number("77"))
	policy.apply(existing, record("rcdbId", "77"), false)
	v, _ := existing.Get("rcdbId")
	assert.Equal(t, "77", v, "overwritten even when unchanged")

	policy.apply(existing, record("name", "x"), false)
	v, _ = existing.Get("rcdbId")
	assert.Equal(t, "77", v, "absent external id leaves the field alone")
}

func TestFieldPolicySplitFields(t *testing.T) {
	policy := fieldPolicy{fields: DefaultUpdateFields()}

	t.Run("ignored outside split context", func(t *testing.T) {
		existing := record("name", "x")
		policy.apply(existing, record("isSplitTrack", true, "trackName", "Left"), false)
		assert.False(t, existing.Has("isSplitTrack"))
		assert.False(t, existing.Has("trackName"))
	})

	t.Run("fetched values win", func(t *testing.T) {
		existing := record("isSplitTrack", true, "splitGroup", "1", "trackName", "Old", "splitSiblings", []any{"C9"})
		policy.apply(existing, record("splitGroup", "2", "trackName", "New", "splitSiblings", []string{"C1"}), true)
		assert.Equal(t, "2", existing.SplitGroup())
		assert.Equal(t, "New", existing.TrackName())
		assert.Equal(t, []string{"C1"}, existing.SplitSiblings())
	})

	t.Run("fall back to existing values", func(t *testing.T) {
		existing := record("isSplitTrack", true, "splitGroup", "1", "trackName", "Left", "splitSiblings", []any{"C9"})
		policy.apply(existing, record("trackName", nil), true)
		assert.True(t, existing.IsSplitTrack())
		assert.Equal(t, "1", existing.SplitGroup())
		assert.Equal(t, "Left", existing.TrackName())
		assert.Equal(t, []string{"C9"}, existing.SplitSiblings())
	})

	t.Run("nothing to fall back to", func(t *testing.T) {
		existing := record("name", "x")
		policy.apply(existing, record(), true)
		assert.True(t, existing.IsSplitTrack())
		assert.False(t, existing.Has("splitGroup"))
		assert.False(t, existing.Has("trackName"))
		assert.False(t, existing.Has("splitSiblings"))
	})

	t.Run("values are copied", func(t *testing.T) {
		siblings := []string{"C1"}
		existing := record()
		policy.apply(existing, record("splitSiblings", siblings), true)
		siblings[0] = "changed"
		assert.Equal(t, []string{"C1"}, existing.SplitSiblings())
	})
}

func TestDenylistMatches(t *testing.T) {
	denylist := DefaultDenylist()
	assert.True(t, denylist.Matches(record("model", "Alpine Coaster")))
	assert.True(t, denylist.Matches(record("manufacturer", "Yamasakutalab")))
	assert.False(t, denylist.Matches(record("model", "alpine coaster")))
	assert.False(t, denylist.Matches(record()))
	assert.False(t, Denylist{}.Matches(record("model", "Alpine Coaster")))
}

func TestGroupRecordsKeepsFirstAppearanceOrder(t *testing.T) {
	f := newFilter(DefaultDenylist(), nil)
	result := groupRecords([]*coasters.Record{
		record("rcdbId", 2, "name", "b1"),
		record("rcdbId", 1, "name", "a"),
		record("rcdbId", json.Number("2"), "name", "b2"),
		record("rcdbId", 3, "model", "Mountain Coaster"),
		record("name", "no id"),
	}, f)

	assert.Equal(t, 1, result.filtered)
	assert.Equal(t, 1, result.unkeyed)
	if assert.Len(t, result.groups, 2) {
		assert.Equal(t, "2", result.groups[0].externalID)
		assert.True(t, result.groups[0].isSplit())
		assert.Equal(t, "b2", result.groups[0].records[1].Name())
		assert.Equal(t, "1", result.groups[1].externalID)
		assert.False(t, result.groups[1].isSplit())
	}
}
