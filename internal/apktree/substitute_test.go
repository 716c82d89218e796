package apktree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"shared object", "libmain.so", "libmain_orig.so"},
		{"no extension", "libmain", "libmain_orig"},
		{"dotted stem", "lib.main.so", "lib.main_orig.so"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BackupName(tt.input))
		})
	}
}

func TestSubstitutePreservesOriginal(t *testing.T) {
	tree := NewTree(t.TempDir())
	primary := filepath.Join(tree.LibDir("arm64-v8a"), "libmain.so")
	writeFile(t, primary, "A")

	require.NoError(t, Substitute(tree, "arm64-v8a", "libmain.so", []byte("B")))

	assert.Equal(t, "B", readFile(t, primary))
	assert.Equal(t, "A", readFile(t, filepath.Join(tree.LibDir("arm64-v8a"), "libmain_orig.so")))
}

func TestSubstituteWithoutOriginal(t *testing.T) {
	tree := NewTree(t.TempDir())

	require.NoError(t, Substitute(tree, "arm64-v8a", "libmain.so", []byte("B")))

	assert.Equal(t, "B", readFile(t, filepath.Join(tree.LibDir("arm64-v8a"), "libmain.so")))
	_, err := os.Stat(filepath.Join(tree.LibDir("arm64-v8a"), "libmain_orig.so"))
	assert.True(t, os.IsNotExist(err), "no backup should be created when there is no original")
}

func TestSubstituteRerunKeepsFirstBackup(t *testing.T) {
	tree := NewTree(t.TempDir())
	dir := tree.LibDir("arm64-v8a")
	writeFile(t, filepath.Join(dir, "libmain.so"), "A")

	require.NoError(t, Substitute(tree, "arm64-v8a", "libmain.so", []byte("B")))
	require.NoError(t, Substitute(tree, "arm64-v8a", "libmain.so", []byte("C")))

	// The backup taken on the first run holds the true original and must
	// never be silently destroyed by a later run.
	assert.Equal(t, "C", readFile(t, filepath.Join(dir, "libmain.so")))
	assert.Equal(t, "A", readFile(t, filepath.Join(dir, "libmain_orig.so")))
}
