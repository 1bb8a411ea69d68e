package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileScanner(t *testing.T) {
	scanner := NewFileScanner("/tmp/intakes")

	assert.Equal(t, "/tmp/intakes", scanner.baseDir)
	assert.Equal(t, ".jsonl", scanner.ext)
}

func TestFileScannerScanEmptyDirectory(t *testing.T) {
	files, err := NewFileScanner(t.TempDir()).Scan()

	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFileScannerScanNested(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "2024", "06")
	require.NoError(t, os.MkdirAll(nested, 0755))

	for _, name := range []string{
		filepath.Join(dir, "b.jsonl"),
		filepath.Join(nested, "a.JSONL"),
		filepath.Join(dir, "notes.txt"),
	} {
		require.NoError(t, os.WriteFile(name, []byte("{}\n"), 0644))
	}

	files, err := NewFileScanner(dir).Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(nested, "a.JSONL"),
		filepath.Join(dir, "b.jsonl"),
	}, files)
}

func TestFileScannerSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))

	files, err := NewFileScanner(path).Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestFileScannerMissingPath(t *testing.T) {
	_, err := NewFileScanner(filepath.Join(t.TempDir(), "missing")).Scan()
	assert.Error(t, err)
}

func TestScanPathsDeduplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))

	files, err := ScanPaths([]string{dir, path})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)

	_, err = ScanPaths([]string{filepath.Join(dir, "nope")})
	assert.Error(t, err)
}
