package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coasterranker/coastermap/pkg/coasters"
)

func fixture(t *testing.T) *coasters.Catalog {
	t.Helper()
	catalog := coasters.NewCatalog()
	require.NoError(t, json.Unmarshal([]byte(`{
		"C999000001": {"id": "C999000001", "rcdbId": 1, "name": "Steel Vengeance", "parkName": "Cedar Point",
			"country": "USA", "status": "Operating", "type": "Steel"},
		"C999000002": {"id": "C999000002", "rcdbId": 500, "name": "Twister - Red", "park": "Old Park",
			"status": {"state": "SBNO"}, "isSplitTrack": true, "splitGroup": "500", "trackName": "Red",
			"splitSiblings": ["C999000003"]},
		"C999000003": {"id": "C999000003", "rcdbId": 500, "name": "Twister - Blue",
			"isSplitTrack": true, "splitGroup": "500", "trackName": "Blue",
			"splitSiblings": ["C999000002"]}
	}`), catalog.Store))
	catalog.CrossReference.Set("1", "C999000001")
	catalog.CrossReference.Set("500", "C999000002")
	return catalog
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out", "coasters.db")
	catalog := fixture(t)

	stats, err := SQLite(ctx, path, catalog.Store, catalog.CrossReference)
	require.NoError(t, err)
	assert.Equal(t, &Stats{Coasters: 3, CrossReferences: 2}, stats)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var (
		name, park, status string
		split              bool
		track              sql.NullString
	)
	require.NoError(t, db.QueryRow(
		`SELECT name, park, status, is_split_track, track_name FROM coasters WHERE local_id = ?`,
		"C999000002").Scan(&name, &park, &status, &split, &track))
	assert.Equal(t, "Twister - Red", name)
	assert.Equal(t, "Old Park", park)
	assert.Equal(t, "SBNO", status)
	assert.True(t, split)
	assert.Equal(t, "Red", track.String)

	var data string
	require.NoError(t, db.QueryRow(`SELECT data FROM coasters WHERE local_id = ?`, "C999000001").Scan(&data))
	record := coasters.NewRecord()
	require.NoError(t, json.Unmarshal([]byte(data), record))
	original, _ := catalog.Store.Get("C999000001")
	assert.True(t, original.Equal(record))

	var localID string
	require.NoError(t, db.QueryRow(`SELECT local_id FROM cross_references WHERE external_id = ?`, "500").Scan(&localID))
	assert.Equal(t, "C999000002", localID)
}

func TestSQLiteReplacesExistingRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "coasters.db")
	catalog := fixture(t)

	_, err := SQLite(ctx, path, catalog.Store, catalog.CrossReference)
	require.NoError(t, err)

	catalog.Store.Delete("C999000003")
	stats, err := SQLite(ctx, path, catalog.Store, catalog.CrossReference)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Coasters)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM coasters`).Scan(&count))
	assert.Equal(t, 2, count)
}
