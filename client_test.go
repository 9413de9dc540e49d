package coastermap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coasterranker/coastermap/pkg/batch"
	"github.com/coasterranker/coastermap/pkg/coasters"
	"github.com/coasterranker/coastermap/pkg/merger"
	"github.com/coasterranker/coastermap/pkg/save"
	"github.com/coasterranker/coastermap/pkg/validation"
)

func fetched(ext any, name string) *coasters.Record {
	return coasters.NewRecord().
		With(coasters.FieldExternalID, ext).
		With(coasters.FieldName, name).
		With(coasters.FieldParkName, "Test Park").
		With(coasters.FieldType, "Steel")
}

func paths(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "coasters_master.json"), filepath.Join(dir, "rcdb_to_custom_mapping.json")
}

func TestNewStartsEmptyWithoutFiles(t *testing.T) {
	storePath, xrefPath := paths(t)
	client, err := New(WithStorePath(storePath), WithCrossReferencePath(xrefPath))
	require.NoError(t, err)
	assert.Zero(t, client.Catalog().Store.Len())
}

func TestNewOptionErrors(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"empty store path", WithStorePath("")},
		{"empty xref path", WithCrossReferencePath("")},
		{"nil catalog", WithCatalog(nil)},
		{"invalid merge option", WithMergeOptions(merger.WithUpdateFields("id"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithCatalog(coasters.NewCatalog()), tt.opt)
			assert.Error(t, err)
		})
	}
}

func TestMergeFiresHooks(t *testing.T) {
	ctx := context.Background()
	client, err := New(WithCatalog(coasters.NewCatalog()))
	require.NoError(t, err)

	var added []string
	var updated [][2]string
	client.OnRecordAdded(func(record coasters.Record) {
		added = append(added, record.Name())
	})
	client.OnRecordUpdated(func(old, new coasters.Record) {
		updated = append(updated, [2]string{old.Name(), new.Name()})
	})

	report, err := client.Merge(ctx, []*coasters.Record{fetched(1, "Original")})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, []string{"Original"}, added)
	assert.Empty(t, updated)

	report, err = client.Merge(ctx, []*coasters.Record{fetched(1, "Renamed")})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, [][2]string{{"Original", "Renamed"}}, updated)
}

func TestHookCanRegisterHooks(t *testing.T) {
	ctx := context.Background()
	client, err := New(WithCatalog(coasters.NewCatalog()))
	require.NoError(t, err)

	var later []string
	client.OnRecordAdded(func(coasters.Record) {
		client.OnRecordAdded(func(record coasters.Record) {
			later = append(later, record.Name())
		})
	})

	done := make(chan error, 1)
	go func() {
		_, err := client.Merge(ctx, []*coasters.Record{fetched(1, "First")})
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("merge blocked while a hook registered another hook")
	}
	assert.Empty(t, later, "hooks registered during firing start with the next merge")

	_, err = client.Merge(ctx, []*coasters.Record{fetched(2, "Second")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Second"}, later)
}

func TestCatalogReturnsCopy(t *testing.T) {
	ctx := context.Background()
	client, err := New(WithCatalog(coasters.NewCatalog()))
	require.NoError(t, err)

	report, err := client.Merge(ctx, []*coasters.Record{fetched(1, "One")})
	require.NoError(t, err)
	id := report.AddedIDs[0]

	copied := client.Catalog()
	record, ok := copied.Store.Get(id)
	require.True(t, ok)
	record.Set(coasters.FieldName, "Changed")
	copied.Store.Delete(id)

	record, ok = client.Catalog().Store.Get(id)
	require.True(t, ok)
	assert.Equal(t, "One", record.Name())
}

func TestSaveAndReload(t *testing.T) {
	ctx := context.Background()
	storePath, xrefPath := paths(t)
	backupDir := filepath.Join(t.TempDir(), "backups")

	client, err := New(
		WithStorePath(storePath),
		WithCrossReferencePath(xrefPath),
		WithBackupDir(backupDir),
	)
	require.NoError(t, err)

	_, err = client.Merge(ctx, []*coasters.Record{
		fetched(500, "Twister - Red"),
		fetched(500, "Twister - Blue"),
	})
	require.NoError(t, err)
	require.NoError(t, client.Save(ctx))

	_, err = os.Stat(backupDir)
	assert.True(t, os.IsNotExist(err), "nothing to back up on the first save")

	require.NoError(t, client.Save(ctx))
	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	reloaded, err := New(WithStorePath(storePath), WithCrossReferencePath(xrefPath))
	require.NoError(t, err)
	assert.Equal(t, client.Catalog().Store.IDs(), reloaded.Catalog().Store.IDs())
	assert.Equal(t, 1, reloaded.Catalog().CrossReference.Len())

	report := reloaded.Validate(validation.DefaultRules())
	assert.True(t, report.IsValid(), "%v", report.Errors())
	assert.Equal(t, 1, reloaded.Stats().SplitGroups)
}

func TestSaveWithoutBackup(t *testing.T) {
	ctx := context.Background()
	storePath, xrefPath := paths(t)

	client, err := New(
		WithStorePath(storePath),
		WithCrossReferencePath(xrefPath),
		WithSaveOptions(save.WithBackup(false)),
	)
	require.NoError(t, err)
	require.NoError(t, client.Save(ctx))
	require.NoError(t, client.Save(ctx))

	_, err = os.Stat(filepath.Join(filepath.Dir(storePath), "backups"))
	assert.True(t, os.IsNotExist(err))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	storePath, xrefPath := paths(t)

	client, err := New(
		WithStorePath(storePath),
		WithCrossReferencePath(xrefPath),
		WithSaveOptions(save.WithBackup(false)),
	)
	require.NoError(t, err)

	var added int
	client.OnRecordAdded(func(coasters.Record) { added++ })

	fetcher := batch.FetcherFunc(func(_ context.Context, id string) ([]*coasters.Record, error) {
		if id == "2" {
			return nil, nil
		}
		return []*coasters.Record{fetched(id, "Coaster "+id)}, nil
	})

	result, err := client.Update(ctx, fetcher, batch.Range(1, 3),
		batch.WithDelay(0),
		batch.WithSaveInterval(1),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 1, result.NotFound)
	assert.Equal(t, 2, result.Report.Added)
	assert.Equal(t, 2, added)

	reloaded, err := New(WithStorePath(storePath), WithCrossReferencePath(xrefPath))
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Catalog().Store.Len())
}
