package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wadjakorntonsri/rendium/pkg/core/domain"
)

const sample = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3>Tools</H3>
    <DL><p>
        <DT><A HREF="https://pkg.go.dev">Go Packages</A>
    </DL><p>
    <DT><A HREF="https://go.dev">Go</A>
</DL><p>
`

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATABASE_URL", "file:"+filepath.Join(dir, "cli.sqlite"))
	t.Setenv("REDIS_ADDR", "")

	file := filepath.Join(dir, "bookmarks.html")
	require.NoError(t, os.WriteFile(file, []byte(sample), 0o600))
	return file
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestImportThenExport(t *testing.T) {
	file := setupEnv(t)

	out, err := run(t, "import", "--user", "ops@example.com", "--file", file)
	require.NoError(t, err, out)
	assert.Contains(t, out, "imported 2, skipped 0, folders created 1")

	out, err = run(t, "export", "--user", "ops@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "<!DOCTYPE NETSCAPE-Bookmark-file-1>")
	assert.Contains(t, out, `HREF="https://pkg.go.dev"`)

	out, err = run(t, "export", "--user", "ops@example.com", "--format", "yaml")
	require.NoError(t, err)
	var bs []domain.Bookmark
	require.NoError(t, yaml.Unmarshal([]byte(out), &bs))
	assert.Len(t, bs, 2)

	// other owners see nothing
	out, err = run(t, "export", "--user", "someone@example.com", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestImportRequiresUser(t *testing.T) {
	file := setupEnv(t)
	_, err := run(t, "import", "--file", file)
	assert.Error(t, err)
}

func TestImportNothingUsable(t *testing.T) {
	dir := t.TempDir()
	setupEnv(t)
	file := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("just some notes"), 0o600))

	out, err := run(t, "import", "--user", "ops@example.com", "--file", file)
	assert.Error(t, err)
	assert.Contains(t, out, "imported 0")
}

func TestExportUnknownFormat(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "export", "--user", "ops@example.com", "--format", "toml")
	assert.Error(t, err)
}

func TestExtractRejectsBadURL(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "extract", "not a url")
	assert.Error(t, err)
}
