package harmony

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/jmylchreest/pipette/internal/colour"
)

// baseSlot is the index each scheme reserves for the unmodified base colour.
var baseSlot = map[Scheme]int{
	Complementary:      0,
	SplitComplementary: 0,
	Analogous:          2,
	Triadic:            1,
	Monochromatic:      0,
	Tetradic:           0,
}

func TestGenerateLengthAndBaseSlot(t *testing.T) {
	bases := []string{"#3366CC", "#000000", "#FFFFFF", "#808080", "#ff0000", "12ab9f", "#FEDCBA", "#0A0B0C"}

	for _, base := range bases {
		for _, scheme := range Schemes() {
			t.Run(base+"/"+string(scheme), func(t *testing.T) {
				p, err := Generate(scheme, base)
				if err != nil {
					t.Fatalf("Generate() error: %v", err)
				}
				if p.Len() != 5 {
					t.Fatalf("Generate() returned %d colours, want 5", p.Len())
				}
				want := colour.MustParseHex(base)
				if got := p.Colours[baseSlot[scheme]]; got != want {
					t.Errorf("base slot = %s, want %s", got, want)
				}
				for i, c := range p.Colours {
					if !c.Valid() {
						t.Errorf("slot %d = %q is not a normalised hex colour", i, c)
					}
				}
			})
		}
	}
}

func TestGenerateTriadic(t *testing.T) {
	p, err := Generate(Triadic, "#3366CC")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	// #3366CC is hsl(220, 60%, 50%).
	want := []colour.Hex{"#E9EAED", "#3366CC", "#CC3366", "#66CC33", "#292C32"}
	if !reflect.DeepEqual(p.Colours, want) {
		t.Fatalf("Triadic(#3366CC) = %v, want %v", p.Colours, want)
	}

	base := colour.MustParseHex("#3366CC").HSL()
	for i, offset := range map[int]float64{2: 120, 3: 240} {
		got := p.Colours[i].HSL()
		if d := colour.HueDistance(got.H, base.H+offset); d > 1 {
			t.Errorf("slot %d hue = %.1f, want %.1f", i, got.H, colour.WrapHue(base.H+offset))
		}
		if math.Abs(got.S-base.S) > 1 || math.Abs(got.L-base.L) > 1 {
			t.Errorf("slot %d = %v, want saturation/lightness of the base %v", i, got, base)
		}
	}
	if got := p.Colours[0]; got != (colour.HSL{H: base.H, S: 10, L: 92}).Hex() {
		t.Errorf("light neutral = %s, want hsl(%.0f, 10%%, 92%%)", got, base.H)
	}
}

func TestGenerateComplementary(t *testing.T) {
	p, err := Generate(Complementary, "#3366cc")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	want := []colour.Hex{"#3366CC", "#9FB5DF", "#CC9933", "#13316C", "#A68C59"}
	if !reflect.DeepEqual(p.Colours, want) {
		t.Errorf("Complementary(#3366CC) = %v, want %v", p.Colours, want)
	}
}

func TestHueOffsetsWrap(t *testing.T) {
	base := colour.HSL{H: 350, S: 80, L: 40}.Hex()

	p, err := Generate(Tetradic, string(base))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	got := p.Colours[1].HSL().H
	if colour.HueDistance(got, 50) > 1.5 {
		t.Errorf("tetradic +60° slot hue = %.1f, want ≈50", got)
	}

	a, err := Generate(Analogous, string(colour.HSL{H: 10, S: 80, L: 40}.Hex()))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if h := a.Colours[1].HSL().H; colour.HueDistance(h, 340) > 1.5 {
		t.Errorf("analogous -30° slot hue = %.1f, want ≈340", h)
	}
}

func TestTetradicLinkColour(t *testing.T) {
	tests := []struct {
		name  string
		base  colour.HSL
		wantL float64
	}{
		{name: "light base gets dark charcoal", base: colour.HSL{H: 200, S: 50, L: 70}, wantL: 22},
		{name: "dark base gets light cream", base: colour.HSL{H: 200, S: 50, L: 30}, wantL: 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Generate(Tetradic, string(tt.base.Hex()))
			if err != nil {
				t.Fatalf("Generate() error: %v", err)
			}
			if got := p.Colours[4].HSL().L; math.Abs(got-tt.wantL) > 1 {
				t.Errorf("link lightness = %.1f, want %.0f", got, tt.wantL)
			}
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	first, err := GenerateAll("#7B2D8E")
	if err != nil {
		t.Fatalf("GenerateAll() error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := GenerateAll("#7b2d8e")
		if err != nil {
			t.Fatalf("GenerateAll() error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatal("GenerateAll() is not deterministic")
		}
	}
}

func TestGenerateAllOrder(t *testing.T) {
	ps, err := GenerateAll("#3366CC")
	if err != nil {
		t.Fatalf("GenerateAll() error: %v", err)
	}
	if ps.Base != "#3366CC" {
		t.Errorf("Base = %s, want #3366CC", ps.Base)
	}
	if len(ps.Palettes) != len(Schemes()) {
		t.Fatalf("got %d palettes, want %d", len(ps.Palettes), len(Schemes()))
	}
	for i, s := range Schemes() {
		if ps.Palettes[i].Scheme != s {
			t.Errorf("palette %d = %s, want %s", i, ps.Palettes[i].Scheme, s)
		}
	}
	if _, ok := ps.Get(Monochromatic); !ok {
		t.Error("Get(Monochromatic) not found")
	}
}

func TestGenerateRejectsInvalidBase(t *testing.T) {
	for _, base := range []string{"", "#12345", "red", "#GGGGGG", "#1234567"} {
		if _, err := Generate(Triadic, base); !errors.Is(err, colour.ErrInvalidHex) {
			t.Errorf("Generate(%q) error = %v, want ErrInvalidHex", base, err)
		}
		if _, err := GenerateAll(base); !errors.Is(err, colour.ErrInvalidHex) {
			t.Errorf("GenerateAll(%q) error = %v, want ErrInvalidHex", base, err)
		}
	}
}

func TestGenerateUnknownScheme(t *testing.T) {
	if _, err := Generate("pentadic", "#3366CC"); !errors.Is(err, ErrUnknownScheme) {
		t.Errorf("Generate(pentadic) error = %v, want ErrUnknownScheme", err)
	}
}

func TestParseScheme(t *testing.T) {
	tests := []struct {
		in      string
		want    Scheme
		wantErr bool
	}{
		{in: "triadic", want: Triadic},
		{in: "Split Complementary", want: SplitComplementary},
		{in: "split_complementary", want: SplitComplementary},
		{in: " MONOCHROMATIC ", want: Monochromatic},
		{in: "rainbow", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseScheme(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseScheme(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseScheme(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSchemeTitle(t *testing.T) {
	if got := SplitComplementary.Title(); got != "Split Complementary" {
		t.Errorf("Title() = %q", got)
	}
	if got := Tetradic.Title(); got != "Tetradic" {
		t.Errorf("Title() = %q", got)
	}
}

func TestPaletteJoin(t *testing.T) {
	p := Palette{Scheme: Triadic, Colours: []colour.Hex{"#000000", "#FFFFFF"}}
	if got := p.Join(); got != "#000000, #FFFFFF" {
		t.Errorf("Join() = %q", got)
	}
}

func TestPalettesToJSON(t *testing.T) {
	ps, err := GenerateAll("#3366CC")
	if err != nil {
		t.Fatalf("GenerateAll() error: %v", err)
	}
	data, err := ps.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error: %v", err)
	}

	var doc PalettesJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.Base != "#3366CC" || len(doc.Palettes) != 6 {
		t.Fatalf("unexpected document: base=%s palettes=%d", doc.Base, len(doc.Palettes))
	}
	tri := doc.Palettes[3]
	if tri.Title != "Triadic" || tri.Count != 5 {
		t.Errorf("triadic entry = %+v", tri)
	}
	if tri.Colors[1].RGB != (colour.RGB{R: 0x33, G: 0x66, B: 0xCC}) {
		t.Errorf("base rgb = %v", tri.Colors[1].RGB)
	}
	if tri.Colors[1].HSL != (colour.HSL{H: 220, S: 60, L: 50}) {
		t.Errorf("base hsl = %v", tri.Colors[1].HSL)
	}
}
