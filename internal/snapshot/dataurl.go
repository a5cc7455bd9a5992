// Package snapshot encodes, decodes and loads tab snapshots.
//
// A snapshot travels between contexts as a base64 data URL, the same form a
// browser's visible-tab capture produces.
package snapshot

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	"image/png"
	"net/url"
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/webp" // Register WebP format
)

// ErrInvalidDataURL is returned for a string that is not a data URL.
var ErrInvalidDataURL = errors.New("invalid data URL")

// MediaTypePNG is the media type of PNG snapshots.
const MediaTypePNG = "image/png"

// EncodeDataURL wraps data in a base64 data URL.
func EncodeDataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURL splits a data URL into its media type and decoded payload.
// Both base64 and percent-encoded payloads are accepted.
func ParseDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURL)
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload separator", ErrInvalidDataURL)
	}

	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if mediaType == "" {
		mediaType = "text/plain"
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrInvalidDataURL, err)
		}
		return mediaType, data, nil
	}

	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidDataURL, err)
	}
	return mediaType, []byte(decoded), nil
}

// Decode decodes a snapshot data URL into a bitmap.
// Supported formats: PNG, JPEG, GIF, WebP, BMP.
func Decode(dataURL string) (image.Image, error) {
	_, data, err := ParseDataURL(dataURL)
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot (format: %s): %w", format, err)
	}
	return img, nil
}

// EncodePNG renders img as a PNG data URL.
func EncodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return EncodeDataURL(MediaTypePNG, buf.Bytes()), nil
}
