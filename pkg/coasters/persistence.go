package coasters

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/coasterranker/coastermap/internal/fsutil"
	"github.com/coasterranker/coastermap/pkg/constants"
	"github.com/coasterranker/coastermap/pkg/errors"
	"github.com/coasterranker/coastermap/pkg/logging"
	"github.com/coasterranker/coastermap/pkg/save"
)

// LoadStore reads a store file. A missing file yields an empty store.
func LoadStore(path string) (*Store, error) {
	store := NewStore()
	if err := loadJSON(path, store); err != nil {
		return nil, err
	}
	return store, nil
}

// LoadCrossReference reads a cross-reference file. A missing file yields an
// empty table.
func LoadCrossReference(path string) (*CrossReference, error) {
	xref := NewCrossReference()
	if err := loadJSON(path, xref); err != nil {
		return nil, err
	}
	return xref, nil
}

// LoadBatch reads a JSON array of fetched records. Unlike the catalog
// files, the batch must exist.
func LoadBatch(path string) ([]*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	return records, nil
}

// LoadCatalog reads both catalog files.
func LoadCatalog(storePath, xrefPath string) (*Catalog, error) {
	store, err := LoadStore(storePath)
	if err != nil {
		return nil, errors.WrapResource("load", "store", "", err)
	}
	xref, err := LoadCrossReference(xrefPath)
	if err != nil {
		return nil, errors.WrapResource("load", "cross-reference", "", err)
	}
	return &Catalog{Store: store, CrossReference: xref}, nil
}

// Save writes both catalog files. Unless disabled, each existing file is
// first copied into the backup directory; backups of one save share a
// timestamp. Persistence failures are returned to the caller.
func (c *Catalog) Save(ctx context.Context, storePath, xrefPath string, opts ...save.Option) error {
	options := save.Defaults().Apply(opts...)
	logger := logging.FromContext(ctx)

	if options.Backup() {
		dir := BackupDir(storePath, options)
		stamp := options.Now().Format(constants.BackupTimestampFormat)
		for _, path := range []string{storePath, xrefPath} {
			backup, err := backupFile(path, dir, stamp)
			if err != nil {
				return err
			}
			if backup != "" {
				logger.Info().Str("path", backup).Msg("Created backup")
			}
		}
	}

	if err := writeJSON(storePath, c.Store); err != nil {
		return err
	}
	logger.Info().
		Str("path", storePath).
		Int("records", c.Store.Len()).
		Msg("Saved store")

	if err := writeJSON(xrefPath, c.CrossReference); err != nil {
		return err
	}
	logger.Info().
		Str("path", xrefPath).
		Int("entries", c.CrossReference.Len()).
		Msg("Saved cross-reference table")
	return nil
}

// BackupDir returns the directory backups of storePath are written to.
func BackupDir(storePath string, options save.Options) string {
	if dir := options.BackupDir(); dir != "" {
		return dir
	}
	return filepath.Join(filepath.Dir(storePath), constants.BackupDirName)
}

// BackupName returns the file name of a backup of path taken at stamp.
func BackupName(path, stamp string) string {
	return filepath.Base(path) + ".backup_" + stamp
}

// backupFile copies path into dir. Files that do not exist yet are skipped
// and yield "".
func backupFile(path, dir, stamp string) (string, error) {
	if !fsutil.Exists(path) {
		return "", nil
	}
	dst := filepath.Join(dir, BackupName(path, stamp))
	if err := fsutil.CopyFile(path, dst); err != nil {
		return "", errors.WrapIO("copy", dst, err)
	}
	return dst, nil
}

func loadJSON(path string, v json.Unmarshaler) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WrapIO("read", path, err)
	}
	if err := v.UnmarshalJSON(data); err != nil {
		return errors.WrapParse("json", path, err)
	}
	return nil
}

func writeJSON(path string, v json.Marshaler) error {
	data, err := marshalIndent(v)
	if err != nil {
		return errors.WrapResource("encode", filepath.Base(path), "", err)
	}
	if err := fsutil.AtomicWriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
