// Package sourcing fetches raw clips for an edit, either from a stock
// footage provider or from an AI clip generation service. Clients are
// vendor-agnostic: base URLs and keys come from configuration.
package sourcing

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/reelsmith/reelsmith/internal/ffmpeg"
)

// APIError represents a non-2xx response from a sourcing provider.
type APIError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s request failed: HTTP %d: %s", e.Service, e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx) and rate limiting (429).
// Other client errors (4xx) are considered permanent.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// LocalClip is a downloaded clip on disk, probed and ready for assembly.
type LocalClip struct {
	Path     string
	Duration float64
	Width    int
	Height   int
}

// Prober reads media metadata from a file on disk.
type Prober interface {
	Probe(ctx context.Context, path string) (*ffmpeg.MediaInfo, error)
}

// writeStream streams r to a new file at path, cleaning up on failure.
func writeStream(path string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create download file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return fmt.Errorf("write download file: %w", err)
	}
	return nil
}
