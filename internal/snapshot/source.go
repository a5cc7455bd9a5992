package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"os"
	"strings"

	"github.com/jmylchreest/pipette/internal/compression"
	"github.com/jmylchreest/pipette/internal/security"
	httputil "github.com/jmylchreest/pipette/internal/util/http"
)

// MaxSnapshotBytes caps the size of a snapshot after decompression.
const MaxSnapshotBytes = 64 * 1024 * 1024

// Source produces a snapshot of a tab as a data URL.
type Source interface {
	Capture(ctx context.Context) (string, error)
}

// ImageSource captures a fixed in-memory bitmap.
type ImageSource struct {
	Image image.Image
}

// Capture encodes the bitmap as a PNG data URL.
func (s ImageSource) Capture(context.Context) (string, error) {
	if s.Image == nil {
		return "", fmt.Errorf("no snapshot image")
	}
	return EncodePNG(s.Image)
}

// FileSource reads a snapshot from the local filesystem.
// Files ending in .gz, .bz2 or .xz are decompressed first.
type FileSource struct {
	Path string
}

// Capture reads the file and returns it as a data URL.
func (s FileSource) Capture(context.Context) (string, error) {
	if s.Path == "" {
		return "", fmt.Errorf("snapshot path cannot be empty")
	}

	info, err := os.Stat(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("snapshot file not found: %s", s.Path)
		}
		return "", fmt.Errorf("failed to stat snapshot file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", s.Path)
	}

	data, err := os.ReadFile(s.Path) // #nosec G304 - User-specified snapshot path, intended to be read
	if err != nil {
		return "", fmt.Errorf("failed to read snapshot file: %w", err)
	}

	data, err = compression.Decompress(s.Path, data, MaxSnapshotBytes)
	if err != nil {
		return "", err
	}

	return toDataURL(data)
}

// URLSource fetches a snapshot over HTTPS.
type URLSource struct {
	URL     string
	Options httputil.FetchOptions
}

// Capture fetches the image and returns it as a data URL.
func (s URLSource) Capture(ctx context.Context) (string, error) {
	if err := security.ValidateHTTPURL(s.URL); err != nil {
		return "", fmt.Errorf("invalid snapshot URL: %w", err)
	}

	data, err := httputil.Fetch(ctx, s.URL, s.Options)
	if err != nil {
		return "", fmt.Errorf("failed to fetch snapshot from URL: %w", err)
	}
	return toDataURL(data)
}

// NewSource returns a URLSource for http(s) locations and a FileSource otherwise.
func NewSource(location string) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return URLSource{URL: location}
	}
	return FileSource{Path: location}
}

// Validate checks that a local snapshot path exists and holds a supported
// image. URLs are accepted as-is and checked when fetched.
func Validate(location string) error {
	if location == "" {
		return fmt.Errorf("snapshot path cannot be empty")
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return nil
	}

	dataURL, err := FileSource{Path: location}.Capture(context.Background())
	if err != nil {
		return err
	}
	_, data, err := ParseDataURL(dataURL)
	if err != nil {
		return err
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("unsupported or invalid snapshot format: %w", err)
	}
	return nil
}

func toDataURL(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("snapshot is empty")
	}
	mediaType := http.DetectContentType(data)
	if !strings.HasPrefix(mediaType, "image/") {
		// Sniffing misses some formats (e.g. webp on older runtimes); the
		// decoder detects the real format from the payload.
		mediaType = "application/octet-stream"
	}
	return EncodeDataURL(mediaType, data), nil
}
