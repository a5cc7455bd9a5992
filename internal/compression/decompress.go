// Package compression decompresses single compressed snapshot files.
package compression

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/pipette/internal/security"
)

// Format is a supported compression format.
type Format string

// Supported formats.
const (
	None  Format = ""
	Gzip  Format = "gzip"
	Bzip2 Format = "bzip2"
	Xz    Format = "xz"
)

// DetectFormat returns the compression format implied by a file name.
func DetectFormat(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".gzip":
		return Gzip
	case ".bz2":
		return Bzip2
	case ".xz":
		return Xz
	default:
		return None
	}
}

// Decompress inflates data according to the format implied by name, refusing
// output larger than maxBytes. Data with no recognised extension is returned
// unchanged.
func Decompress(name string, data []byte, maxBytes int64) ([]byte, error) {
	var (
		r   io.Reader
		err error
	)

	format := DetectFormat(name)
	switch format {
	case None:
		return data, nil
	case Gzip:
		gzr, gzErr := gzip.NewReader(bytes.NewReader(data))
		if gzErr != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", gzErr)
		}
		defer gzr.Close()
		r = gzr
	case Bzip2:
		r = bzip2.NewReader(bytes.NewReader(data))
	case Xz:
		r, err = xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
	}

	out, err := io.ReadAll(security.NewLimitedReader(r, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s (%s): %w", filepath.Base(name), format, err)
	}
	return out, nil
}
