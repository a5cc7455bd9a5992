// Package harmony generates colour harmony palettes from a single base colour.
//
// Every generator is a pure function of the base colour: the same input
// always yields the same palette. Slot order is significant; slots such as
// "background" or "text" are positional.
package harmony

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmylchreest/pipette/internal/colour"
)

// ErrUnknownScheme is returned for a scheme name that has no generator.
var ErrUnknownScheme = errors.New("unknown harmony scheme")

// Scheme names a harmony rule.
type Scheme string

// Supported schemes.
const (
	Complementary      Scheme = "complementary"
	SplitComplementary Scheme = "split-complementary"
	Analogous          Scheme = "analogous"
	Triadic            Scheme = "triadic"
	Monochromatic      Scheme = "monochromatic"
	Tetradic           Scheme = "tetradic"
)

// Schemes returns all schemes in display order.
func Schemes() []Scheme {
	return []Scheme{Complementary, SplitComplementary, Analogous, Triadic, Monochromatic, Tetradic}
}

// ParseScheme resolves a scheme name, case-insensitively. Spaces and
// underscores are accepted in place of hyphens.
func ParseScheme(name string) (Scheme, error) {
	normalised := strings.ToLower(strings.TrimSpace(name))
	normalised = strings.NewReplacer(" ", "-", "_", "-").Replace(normalised)
	s := Scheme(normalised)
	if _, ok := generators[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
	return s, nil
}

// Title returns the human-readable scheme name.
func (s Scheme) Title() string {
	switch s {
	case SplitComplementary:
		return "Split Complementary"
	case "":
		return ""
	default:
		return strings.ToUpper(string(s[:1])) + string(s[1:])
	}
}

// Palette is a named, ordered set of colours. Treat it as immutable.
type Palette struct {
	Scheme  Scheme
	Colours []colour.Hex
}

// Len returns the number of colours in the palette.
func (p Palette) Len() int {
	return len(p.Colours)
}

// Join returns the colours as a comma separated list, suitable for
// copying every colour of a palette at once.
func (p Palette) Join() string {
	parts := make([]string, len(p.Colours))
	for i, c := range p.Colours {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

// Palettes is an ordered collection of palettes generated from one base.
type Palettes struct {
	Base     colour.Hex
	Palettes []Palette
}

// Generate builds a single palette for scheme from base.
// The base must be a six digit hex colour; it is rejected before any
// generator runs.
func Generate(scheme Scheme, base string) (Palette, error) {
	hex, err := colour.ParseHex(base)
	if err != nil {
		return Palette{}, fmt.Errorf("invalid base colour: %w", err)
	}
	gen, ok := generators[scheme]
	if !ok {
		return Palette{}, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
	return Palette{Scheme: scheme, Colours: gen(hex, hex.HSL())}, nil
}

// GenerateAll builds every scheme's palette from base, in display order.
func GenerateAll(base string) (Palettes, error) {
	hex, err := colour.ParseHex(base)
	if err != nil {
		return Palettes{}, fmt.Errorf("invalid base colour: %w", err)
	}

	hsl := hex.HSL()
	result := Palettes{Base: hex, Palettes: make([]Palette, 0, len(generators))}
	for _, s := range Schemes() {
		result.Palettes = append(result.Palettes, Palette{Scheme: s, Colours: generators[s](hex, hsl)})
	}
	return result, nil
}

// Get returns the palette for scheme, if present.
func (ps Palettes) Get(scheme Scheme) (Palette, bool) {
	for _, p := range ps.Palettes {
		if p.Scheme == scheme {
			return p, true
		}
	}
	return Palette{}, false
}

// ColorJSON represents a color in JSON output format.
type ColorJSON struct {
	Hex colour.Hex `json:"hex"`
	RGB colour.RGB `json:"rgb"`
	HSL colour.HSL `json:"hsl"`
}

// PaletteJSON represents a palette in JSON format.
type PaletteJSON struct {
	Scheme Scheme      `json:"scheme"`
	Title  string      `json:"title"`
	Count  int         `json:"count"`
	Colors []ColorJSON `json:"colors"`
}

// PalettesJSON is the JSON document for a set of palettes.
type PalettesJSON struct {
	Base     colour.Hex    `json:"base"`
	Palettes []PaletteJSON `json:"palettes"`
}

// ToJSON converts the palettes to indented JSON.
func (ps Palettes) ToJSON() ([]byte, error) {
	doc := PalettesJSON{Base: ps.Base, Palettes: make([]PaletteJSON, len(ps.Palettes))}
	for i, p := range ps.Palettes {
		doc.Palettes[i] = p.toJSON()
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (p Palette) toJSON() PaletteJSON {
	colours := make([]ColorJSON, len(p.Colours))
	for i, c := range p.Colours {
		colours[i] = ColorJSON{Hex: c, RGB: c.RGB(), HSL: roundHSL(c.HSL())}
	}
	return PaletteJSON{Scheme: p.Scheme, Title: p.Scheme.Title(), Count: len(p.Colours), Colors: colours}
}

func roundHSL(c colour.HSL) colour.HSL {
	round := func(v float64) float64 {
		return float64(int(v*10+0.5)) / 10
	}
	return colour.HSL{H: round(c.H), S: round(c.S), L: round(c.L)}
}
