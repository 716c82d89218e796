package fetch

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadWritesDestination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("artifact bytes"))
	}))
	t.Cleanup(srv.Close)

	dest := filepath.Join(t.TempDir(), "base.apk")
	require.NoError(t, New().Download(srv.URL, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "artifact bytes", string(data))

	_, err = os.Stat(dest + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestDownloadRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	dest := filepath.Join(t.TempDir(), "base.apk")
	err := New().Download(srv.URL, dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "no file should be created on a failed download")
}

func TestDownloadConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	dest := filepath.Join(t.TempDir(), "base.apk")
	err := New().Download(url, dest)
	require.Error(t, err)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}
