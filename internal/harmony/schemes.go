package harmony

import (
	"math"

	"github.com/jmylchreest/pipette/internal/colour"
)

// generator derives an ordered palette from a validated base colour and
// its HSL form.
type generator func(base colour.Hex, c colour.HSL) []colour.Hex

var generators = map[Scheme]generator{
	Complementary:      complementary,
	SplitComplementary: splitComplementary,
	Analogous:          analogous,
	Triadic:            triadic,
	Monochromatic:      monochromatic,
	Tetradic:           tetradic,
}

// tone encodes an HSL triple, wrapping the hue into [0,360).
func tone(h, s, l float64) colour.Hex {
	return colour.HSL{H: colour.WrapHue(h), S: s, L: l}.Hex()
}

// complementary: base, lighter, complement, darker, muted complement.
func complementary(base colour.Hex, c colour.HSL) []colour.Hex {
	return []colour.Hex{
		base,
		tone(c.H, math.Max(20, c.S-10), math.Min(95, c.L+25)),
		tone(c.H+180, c.S, c.L),
		tone(c.H, math.Min(100, c.S+10), math.Max(15, c.L-25)),
		tone(c.H+180, math.Max(20, c.S-30), c.L),
	}
}

// splitComplementary: base, the two hues either side of the complement,
// light tint, dark shade.
func splitComplementary(base colour.Hex, c colour.HSL) []colour.Hex {
	return []colour.Hex{
		base,
		tone(c.H+150, math.Max(20, c.S-10), c.L),
		tone(c.H+210, math.Max(20, c.S-10), c.L),
		tone(c.H, math.Max(15, c.S-20), 88),
		tone(c.H, math.Min(100, c.S+10), 22),
	}
}

// analogous: light background, -30°, base, +30°, dark text.
func analogous(base colour.Hex, c colour.HSL) []colour.Hex {
	return []colour.Hex{
		tone(c.H, math.Max(15, c.S-20), 90),
		tone(c.H-30, math.Max(20, c.S-15), c.L),
		base,
		tone(c.H+30, math.Max(20, c.S-15), c.L),
		tone(c.H, math.Min(100, c.S+10), 20),
	}
}

// triadic: light neutral background, base, +120°, +240°, dark neutral text.
func triadic(base colour.Hex, c colour.HSL) []colour.Hex {
	return []colour.Hex{
		tone(c.H, 10, 92),
		base,
		tone(c.H+120, c.S, c.L),
		tone(c.H+240, c.S, c.L),
		tone(c.H, 10, 18),
	}
}

// monochromatic: base, tint, highlight, shade, desaturated tone.
func monochromatic(base colour.Hex, c colour.HSL) []colour.Hex {
	return []colour.Hex{
		base,
		tone(c.H, math.Max(10, c.S-10), math.Min(95, c.L+20)),
		tone(c.H, math.Max(10, c.S-20), 88),
		tone(c.H, math.Min(100, c.S+10), math.Max(15, c.L-20)),
		tone(c.H, math.Max(5, c.S-40), c.L),
	}
}

// tetradic: base, +60°, +180°, +240°, then a neutral link colour that
// contrasts with the base lightness.
func tetradic(base colour.Hex, c colour.HSL) []colour.Hex {
	link := tone(c.H, 8, 95)
	if c.L > 50 {
		link = tone(c.H, 8, 22)
	}
	return []colour.Hex{
		base,
		tone(c.H+60, math.Max(20, c.S-10), c.L),
		tone(c.H+180, math.Max(20, c.S-10), c.L),
		tone(c.H+240, math.Max(20, c.S-10), c.L),
		link,
	}
}
