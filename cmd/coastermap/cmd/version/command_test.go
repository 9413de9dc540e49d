package version

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coasterranker/coastermap/internal/cmd/application"
	"github.com/coasterranker/coastermap/internal/cmd/testutil"
)

func TestVersionCommand(t *testing.T) {
	app := &application.Mock{
		VersionFunc:      func() string { return "1.2.3" },
		OutputFormatFunc: func() string { return "" },
	}
	out, err := testutil.Run(NewCommand(app))
	require.NoError(t, err)
	assert.Contains(t, out, "coastermap version 1.2.3")

	app.OutputFormatFunc = func() string { return "json" }
	out, err = testutil.Run(NewCommand(app))
	require.NoError(t, err)

	var info Info
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "test", info.BuiltBy)
}
