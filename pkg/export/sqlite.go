// Package export writes the catalog into other storage formats.
package export

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/coasterranker/coastermap/pkg/coasters"
	"github.com/coasterranker/coastermap/pkg/constants"
	"github.com/coasterranker/coastermap/pkg/errors"
	"github.com/coasterranker/coastermap/pkg/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS coasters (
	local_id       TEXT PRIMARY KEY,
	external_id    TEXT,
	name           TEXT,
	park           TEXT,
	city           TEXT,
	country        TEXT,
	status         TEXT,
	manufacturer   TEXT,
	model          TEXT,
	type           TEXT,
	is_split_track INTEGER NOT NULL DEFAULT 0,
	split_group    TEXT,
	track_name     TEXT,
	data           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_coasters_external_id ON coasters(external_id);
CREATE TABLE IF NOT EXISTS cross_references (
	external_id TEXT PRIMARY KEY,
	local_id    TEXT NOT NULL
);
`

// Stats counts the rows an export wrote.
type Stats struct {
	Coasters        int `json:"coasters" yaml:"coasters"`
	CrossReferences int `json:"cross_references" yaml:"cross_references"`
}

// SQLite writes store and xref into the database at path. Existing rows are
// replaced in a single transaction, so readers see either the old or the
// new catalog.
func SQLite(ctx context.Context, path string, store *coasters.Store, xref *coasters.CrossReference) (*Stats, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, errors.WrapResource("create", "schema", path, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.WrapResource("begin", "transaction", path, err)
	}
	defer func() { _ = tx.Rollback() }()

	stats, err := writeCatalog(ctx, tx, store, xref)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.WrapResource("commit", "transaction", path, err)
	}

	logging.FromContext(ctx).Info().
		Str("path", path).
		Int("coasters", stats.Coasters).
		Int("cross_references", stats.CrossReferences).
		Msg("Exported catalog to SQLite")
	return stats, nil
}

func writeCatalog(ctx context.Context, tx *sql.Tx, store *coasters.Store, xref *coasters.CrossReference) (*Stats, error) {
	for _, table := range []string{"coasters", "cross_references"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return nil, errors.WrapResource("clear", table, "", err)
		}
	}

	insertCoaster, err := tx.PrepareContext(ctx, `
		INSERT INTO coasters (local_id, external_id, name, park, city, country, status,
			manufacturer, model, type, is_split_track, split_group, track_name, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, errors.WrapResource("prepare", "coasters insert", "", err)
	}
	defer func() { _ = insertCoaster.Close() }()

	stats := &Stats{}
	var rowErr error
	store.Range(func(id string, record *coasters.Record) bool {
		data, err := record.MarshalJSON()
		if err != nil {
			rowErr = errors.WrapResource("encode", "record", id, err)
			return false
		}
		if _, err := insertCoaster.ExecContext(ctx,
			id,
			nullable(record.ExternalID()),
			nullable(record.Name()),
			nullable(park(record)),
			nullable(record.String(coasters.FieldCity)),
			nullable(record.String(coasters.FieldCountry)),
			nullable(record.Status()),
			nullable(record.String(coasters.FieldManufacturer)),
			nullable(record.String(coasters.FieldModel)),
			nullable(record.String(coasters.FieldType)),
			record.IsSplitTrack(),
			nullable(record.SplitGroup()),
			nullable(record.TrackName()),
			string(data),
		); err != nil {
			rowErr = errors.WrapResource("insert", "record", id, err)
			return false
		}
		stats.Coasters++
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	insertXref, err := tx.PrepareContext(ctx,
		`INSERT INTO cross_references (external_id, local_id) VALUES (?, ?)`)
	if err != nil {
		return nil, errors.WrapResource("prepare", "cross_references insert", "", err)
	}
	defer func() { _ = insertXref.Close() }()

	xref.Range(func(externalID, localID string) bool {
		if _, err := insertXref.ExecContext(ctx, externalID, localID); err != nil {
			rowErr = errors.WrapResource("insert", "cross reference", externalID, err)
			return false
		}
		stats.CrossReferences++
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return stats, nil
}

// park returns the park name, accepting the legacy "park" field.
func park(record *coasters.Record) string {
	if name := record.String(coasters.FieldParkName); name != "" {
		return name
	}
	return record.String("park")
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
