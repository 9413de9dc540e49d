package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coasterranker/coastermap/internal/cmd/testutil"
)

func TestExportCommand(t *testing.T) {
	catalog := testutil.NewCatalog(t,
		`{"C1": {"id": "C1", "rcdbId": 1, "name": "One"}}`,
		`{"1": "C1"}`)
	dbPath := filepath.Join(catalog.Dir, "coasters.db")

	out, err := testutil.Run(NewCommand(catalog.App("table")), "--sqlite", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "cross_references")

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)

	_, err = testutil.Run(NewCommand(catalog.App("table")))
	assert.Error(t, err, "--sqlite is required")
}
