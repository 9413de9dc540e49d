// Package testutil provides fixtures shared by the command tests.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/coasterranker/coastermap"
	"github.com/coasterranker/coastermap/internal/cmd/application"
)

// Catalog is a pair of catalog files in a temporary directory.
type Catalog struct {
	Dir       string
	StorePath string
	XrefPath  string
}

// NewCatalog creates the catalog files with the given contents. Empty
// contents leave the file absent.
func NewCatalog(t *testing.T, store, xref string) *Catalog {
	t.Helper()
	dir := t.TempDir()
	c := &Catalog{
		Dir:       dir,
		StorePath: filepath.Join(dir, "coasters_master.json"),
		XrefPath:  filepath.Join(dir, "rcdb_to_custom_mapping.json"),
	}
	if store != "" {
		WriteFile(t, c.StorePath, store)
	}
	if xref != "" {
		WriteFile(t, c.XrefPath, xref)
	}
	return c
}

// App returns a mock application whose clients read and write the catalog
// files, printing output in format.
func (c *Catalog) App(format string) *application.Mock {
	return &application.Mock{
		ClientFunc: func(opts ...coastermap.Option) (coastermap.Client, error) {
			return coastermap.New(append([]coastermap.Option{
				coastermap.WithStorePath(c.StorePath),
				coastermap.WithCrossReferencePath(c.XrefPath),
			}, opts...)...)
		},
		OutputFormatFunc: func() string { return format },
	}
}

// WriteFile writes content to path.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Run executes cmd with args and returns what it printed to stdout.
func Run(cmd *cobra.Command, args ...string) (string, error) {
	stdout, _, err := RunWithStderr(cmd, args...)
	return stdout, err
}

// RunWithStderr executes cmd with args and returns stdout and stderr
// separately.
func RunWithStderr(cmd *cobra.Command, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
