// Package colour provides sRGB colour conversions between hex, RGB and HSL
// representations, and pixel sampling from decoded snapshots.
package colour

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidHex is returned when a string is not a six digit hex colour.
var ErrInvalidHex = errors.New("invalid hex colour")

// Hex is a normalised colour in "#RRGGBB" form (uppercase).
type Hex string

// RGB represents a color in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSL represents a colour in HSL space.
// H is in degrees [0,360); S and L are percentages [0,100].
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// ParseHex validates and normalises a hex colour.
// Accepts six hex digits with or without a leading '#', in any case.
func ParseHex(s string) (Hex, error) {
	digits := strings.TrimPrefix(s, "#")
	if len(digits) != 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	for i := 0; i < len(digits); i++ {
		if !isHexDigit(digits[i]) {
			return "", fmt.Errorf("%w: %q", ErrInvalidHex, s)
		}
	}
	return Hex("#" + strings.ToUpper(digits)), nil
}

// MustParseHex is like ParseHex but panics on invalid input.
// Intended for package-level colour constants.
func MustParseHex(s string) Hex {
	h, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return h
}

// HexToRGB parses a hex colour string into its RGB channels.
func HexToRGB(s string) (RGB, error) {
	h, err := ParseHex(s)
	if err != nil {
		return RGB{}, err
	}
	return h.RGB(), nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Valid reports whether h is in normalised "#RRGGBB" form.
func (h Hex) Valid() bool {
	if len(h) != 7 || h[0] != '#' {
		return false
	}
	for i := 1; i < len(h); i++ {
		c := h[i]
		if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// RGB returns the channels of h. Malformed values decode to black.
func (h Hex) RGB() RGB {
	s := strings.TrimPrefix(string(h), "#")
	if len(s) != 6 {
		return RGB{}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// HSL returns h converted to HSL.
func (h Hex) HSL() HSL {
	return RGBToHSL(h.RGB())
}

// String implements fmt.Stringer.
func (h Hex) String() string {
	return string(h)
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a normalised hex string (e.g., "#1A2B3C").
func (rgb RGB) Hex() Hex {
	return RGBToHex(float64(rgb.R), float64(rgb.G), float64(rgb.B))
}

// RGBToHex encodes three channels as "#RRGGBB".
// Each channel is rounded to the nearest integer and clamped to [0,255].
func RGBToHex(r, g, b float64) Hex {
	return Hex(fmt.Sprintf("#%02X%02X%02X", channel(r), channel(g), channel(b)))
}

func channel(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}

// String returns the colour as "hsl(h, s%, l%)" with rounded components.
func (c HSL) String() string {
	return fmt.Sprintf("hsl(%.0f, %.0f%%, %.0f%%)", c.H, c.S, c.L)
}

// Hex converts c to a normalised hex colour.
func (c HSL) Hex() Hex {
	r, g, b := hslToRGB(c)
	return RGBToHex(r, g, b)
}

// Rotate returns c with its hue shifted by deg, wrapped into [0,360).
func (c HSL) Rotate(deg float64) HSL {
	c.H = WrapHue(c.H + deg)
	return c
}

// WrapHue maps any angle in degrees onto [0,360).
func WrapHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// Clamp limits v to [lo,hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
