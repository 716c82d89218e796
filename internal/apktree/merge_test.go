package apktree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestMergeMissingSourceIsNoOp(t *testing.T) {
	tmp := t.TempDir()
	dst := filepath.Join(tmp, "base", "lib")
	writeFile(t, filepath.Join(dst, "arm64-v8a", "x.so"), "A")

	err := Merge(filepath.Join(tmp, "split", "lib"), dst)
	require.NoError(t, err)

	assert.Equal(t, "A", readFile(t, filepath.Join(dst, "arm64-v8a", "x.so")))

	entries, err := os.ReadDir(filepath.Join(dst, "arm64-v8a"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMergeSourceWins(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "split", "lib")
	dst := filepath.Join(tmp, "base", "lib")

	writeFile(t, filepath.Join(dst, "arm64-v8a", "x.so"), "A")
	writeFile(t, filepath.Join(src, "arm64-v8a", "x.so"), "B")

	require.NoError(t, Merge(src, dst))

	assert.Equal(t, "B", readFile(t, filepath.Join(dst, "arm64-v8a", "x.so")))
}

func TestMergeCreatesIntermediateDirectories(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "split", "lib")
	dst := filepath.Join(tmp, "base", "lib")

	writeFile(t, filepath.Join(src, "arm64-v8a", "libextra.so"), "extra")
	writeFile(t, filepath.Join(src, "armeabi-v7a", "deep", "nested.so"), "nested")

	require.NoError(t, Merge(src, dst))

	assert.Equal(t, "extra", readFile(t, filepath.Join(dst, "arm64-v8a", "libextra.so")))
	assert.Equal(t, "nested", readFile(t, filepath.Join(dst, "armeabi-v7a", "deep", "nested.so")))
}

func TestMergeLeavesSourceUntouched(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "split", "lib")
	dst := filepath.Join(tmp, "base", "lib")

	writeFile(t, filepath.Join(src, "arm64-v8a", "x.so"), "B")

	require.NoError(t, Merge(src, dst))

	assert.Equal(t, "B", readFile(t, filepath.Join(src, "arm64-v8a", "x.so")))
}
