// Package fetch downloads remote artifacts (packages, libraries, keystores)
// to local files before the patch pipeline starts working on them.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fulmenhq/apkpatch/pkg/logger"
)

const downloadTimeout = 5 * time.Minute

// HTTPFetcher abstracts HTTP calls for testability
type HTTPFetcher interface {
	Get(url string) (*http.Response, error)
}

// RealHTTPFetcher wraps http.Client for production use
type RealHTTPFetcher struct {
	client *http.Client
}

// NewRealHTTPFetcher creates a production HTTP fetcher
func NewRealHTTPFetcher(client *http.Client) HTTPFetcher {
	return &RealHTTPFetcher{client: client}
}

func (f *RealHTTPFetcher) Get(url string) (*http.Response, error) {
	return f.client.Get(url)
}

// Fetcher downloads artifacts to disk.
type Fetcher struct {
	http HTTPFetcher
}

// New creates a Fetcher with the default HTTP client.
func New() *Fetcher {
	return &Fetcher{http: NewRealHTTPFetcher(&http.Client{Timeout: downloadTimeout})}
}

// NewWithFetcher creates a Fetcher with an injected HTTP implementation.
func NewWithFetcher(h HTTPFetcher) *Fetcher {
	return &Fetcher{http: h}
}

// Download streams url to dest. The body is written to dest+".tmp" and
// renamed into place on success, so dest never holds a partial download.
func (f *Fetcher) Download(url, dest string) error {
	logger.Info("downloading artifact", logger.String("url", url), logger.String("dest", dest))

	resp, err := f.http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download of %s failed with status: %s", url, resp.Status)
	}

	tmpFile := dest + ".tmp"
	out, err := os.Create(tmpFile) // #nosec G304 -- dest is a pipeline-owned work path
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmpFile, dest); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to move file: %w", err)
	}

	logger.Debug("artifact downloaded", logger.String("path", dest))
	return nil
}
