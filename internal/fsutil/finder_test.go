package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("# test"), 0o600))
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.hcl")
	b := filepath.Join(dir, "nested", "b.hcl")
	writeFile(t, a)
	writeFile(t, b)
	writeFile(t, filepath.Join(dir, "notes.txt"))

	files, err := CollectFiles([]string{dir, a}, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)
}

func TestCollectFiles_ExplicitFileAnyExtension(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "monitor.conf")
	writeFile(t, conf)

	files, err := CollectFiles([]string{conf}, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{conf}, files)
}

func TestCollectFiles_MissingPath(t *testing.T) {
	_, err := CollectFiles([]string{filepath.Join(t.TempDir(), "missing.hcl")}, ".hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error accessing path")
}

func TestFindFilesByExtension_PanicsOnEmptyExtension(t *testing.T) {
	assert.Panics(t, func() { _, _ = FindFilesByExtension(t.TempDir(), "") })
}
