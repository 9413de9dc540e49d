package coasters

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coasterranker/coastermap/pkg/errors"
	"github.com/coasterranker/coastermap/pkg/save"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadCatalogMissingFiles(t *testing.T) {
	dir := t.TempDir()
	catalog, err := LoadCatalog(filepath.Join(dir, "store.json"), filepath.Join(dir, "xref.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, catalog.Store.Len())
	assert.Equal(t, 0, catalog.CrossReference.Len())
}

func TestLoadCatalogParseError(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "store.json")
	writeFile(t, storePath, `{"C1": `)

	_, err := LoadCatalog(storePath, filepath.Join(dir, "xref.json"))
	require.Error(t, err)

	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.Equal(t, storePath, parseErr.File)
}

func TestCatalogSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "data", "coasters_master.json")
	xrefPath := filepath.Join(dir, "data", "rcdb_to_custom_mapping.json")

	catalog := NewCatalog()
	catalog.Store.Put("C999000002", NewRecord().With(FieldID, "C999000002").With(FieldName, "Zürich & Co").With(FieldExternalID, 2))
	catalog.Store.Put("C999000001", NewRecord().With(FieldID, "C999000001").With(FieldName, "Alpha").With(FieldExternalID, 1))
	catalog.CrossReference.Set("2", "C999000002")
	catalog.CrossReference.Set("1", "C999000001")

	require.NoError(t, catalog.Save(context.Background(), storePath, xrefPath, save.WithBackup(false)))

	data, err := os.ReadFile(storePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"C999000002\": {\n    \"id\": \"C999000002\",")
	assert.Contains(t, string(data), "Zürich & Co")

	loaded, err := LoadCatalog(storePath, xrefPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"C999000002", "C999000001"}, loaded.Store.IDs())
	record, _ := loaded.Store.Get("C999000002")
	assert.Equal(t, "2", record.ExternalID())
	id, _ := loaded.CrossReference.Get("1")
	assert.Equal(t, "C999000001", id)

	_, err = os.Stat(filepath.Join(dir, "data", "backups"))
	assert.True(t, os.IsNotExist(err), "no backup directory when backups are disabled")
}

func TestCatalogSaveWritesBackups(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "coasters_master.json")
	xrefPath := filepath.Join(dir, "rcdb_to_custom_mapping.json")
	writeFile(t, storePath, `{"C1": {"name": "old"}}`)
	writeFile(t, xrefPath, `{"1": "C1"}`)

	catalog, err := LoadCatalog(storePath, xrefPath)
	require.NoError(t, err)
	record, _ := catalog.Store.Get("C1")
	record.Set(FieldName, "new")

	require.NoError(t, catalog.Save(context.Background(), storePath, xrefPath, save.WithClock(fixedClock)))

	backupDir := filepath.Join(dir, "backups")
	storeBackup, err := os.ReadFile(filepath.Join(backupDir, "coasters_master.json.backup_20250314_092653"))
	require.NoError(t, err)
	assert.Equal(t, `{"C1": {"name": "old"}}`, string(storeBackup))

	_, err = os.Stat(filepath.Join(backupDir, "rcdb_to_custom_mapping.json.backup_20250314_092653"))
	assert.NoError(t, err)

	reloaded, err := LoadStore(storePath)
	require.NoError(t, err)
	record, _ = reloaded.Get("C1")
	assert.Equal(t, "new", record.Name())
}

func TestCatalogSaveBackupDirOverride(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "store.json")
	xrefPath := filepath.Join(dir, "xref.json")
	backupDir := filepath.Join(dir, "elsewhere")
	writeFile(t, storePath, `{}`)

	catalog := NewCatalog()
	require.NoError(t, catalog.Save(context.Background(), storePath, xrefPath,
		save.WithBackupDir(backupDir), save.WithClock(fixedClock)))

	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only files that existed are backed up")
	assert.Equal(t, BackupName(storePath, "20250314_092653"), entries[0].Name())
}

func TestCatalogSavePropagatesIOErrors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	writeFile(t, blocker, "not a directory")

	err := NewCatalog().Save(context.Background(), filepath.Join(blocker, "store.json"), filepath.Join(dir, "xref.json"), save.WithBackup(false))
	require.Error(t, err)

	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestLoadBatch(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "batch.json")
	writeFile(t, path, `[{"rcdbId": 500, "name": "Twister - Red"}, {"rcdbId": 500, "name": "Twister - Blue"}]`)
	records, err := LoadBatch(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "500", records[1].ExternalID())
	assert.Equal(t, []string{"rcdbId", "name"}, records[0].Keys())

	_, err = LoadBatch(filepath.Join(dir, "missing.json"))
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)

	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `{"not": "an array"}`)
	_, err = LoadBatch(bad)
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}
