package colour

import (
	"math"
	"testing"
)

func TestRGBToHSL(t *testing.T) {
	tests := []struct {
		name string
		rgb  RGB
		want HSL
	}{
		{name: "red", rgb: RGB{R: 255}, want: HSL{H: 0, S: 100, L: 50}},
		{name: "green", rgb: RGB{G: 255}, want: HSL{H: 120, S: 100, L: 50}},
		{name: "blue", rgb: RGB{B: 255}, want: HSL{H: 240, S: 100, L: 50}},
		{name: "grey has zero hue", rgb: RGB{R: 128, G: 128, B: 128}, want: HSL{H: 0, S: 0, L: 50.196}},
		{name: "black", rgb: RGB{}, want: HSL{}},
		{name: "white", rgb: RGB{R: 255, G: 255, B: 255}, want: HSL{L: 100}},
		{name: "base blue", rgb: RGB{R: 0x33, G: 0x66, B: 0xCC}, want: HSL{H: 220, S: 60, L: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RGBToHSL(tt.rgb)
			if math.Abs(got.H-tt.want.H) > 0.01 || math.Abs(got.S-tt.want.S) > 0.01 || math.Abs(got.L-tt.want.L) > 0.01 {
				t.Errorf("RGBToHSL(%v) = %+v, want %+v", tt.rgb, got, tt.want)
			}
		})
	}
}

func TestHSLToRGB(t *testing.T) {
	tests := []struct {
		name string
		hsl  HSL
		want RGB
	}{
		{name: "red", hsl: HSL{H: 0, S: 100, L: 50}, want: RGB{R: 255}},
		{name: "cyan", hsl: HSL{H: 180, S: 100, L: 50}, want: RGB{G: 255, B: 255}},
		{name: "achromatic", hsl: HSL{H: 200, S: 0, L: 50}, want: RGB{R: 128, G: 128, B: 128}},
		{name: "hue wraps", hsl: HSL{H: 480, S: 100, L: 50}, want: RGB{G: 255}},
		{name: "lightness clamps", hsl: HSL{H: 10, S: 50, L: 140}, want: RGB{R: 255, G: 255, B: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HSLToRGB(tt.hsl); got != tt.want {
				t.Errorf("HSLToRGB(%+v) = %v, want %v", tt.hsl, got, tt.want)
			}
		})
	}
}

func TestHSLRoundTrip(t *testing.T) {
	for r := 0; r < 256; r += 5 {
		for g := 0; g < 256; g += 5 {
			for b := 0; b < 256; b += 5 {
				in := RGB{R: uint8(r), G: uint8(g), B: uint8(b)}
				out := HSLToRGB(RGBToHSL(in))
				if absDiff(in.R, out.R) > 1 || absDiff(in.G, out.G) > 1 || absDiff(in.B, out.B) > 1 {
					t.Fatalf("HSLToRGB(RGBToHSL(%v)) = %v, drift > 1", in, out)
				}
			}
		}
	}
}

func TestHSLRotate(t *testing.T) {
	c := HSL{H: 350, S: 40, L: 60}
	if got := c.Rotate(60).H; got != 50 {
		t.Errorf("Rotate(60) hue = %v, want 50", got)
	}
	if got := c.Rotate(-360 - 30).H; got != 320 {
		t.Errorf("Rotate(-390) hue = %v, want 320", got)
	}
	if c.Rotate(60).S != 40 || c.Rotate(60).L != 60 {
		t.Error("Rotate changed saturation or lightness")
	}
}

func TestLuminance(t *testing.T) {
	if got := Luminance(RGB{}); got != 0 {
		t.Errorf("Luminance(black) = %v, want 0", got)
	}
	if got := Luminance(RGB{R: 255, G: 255, B: 255}); math.Abs(got-1) > 1e-9 {
		t.Errorf("Luminance(white) = %v, want 1", got)
	}
}

func TestHueDistance(t *testing.T) {
	tests := []struct {
		h1, h2, want float64
	}{
		{10, 350, 20},
		{0, 180, 180},
		{90, 60, 30},
		{-30, 30, 60},
	}
	for _, tt := range tests {
		if got := HueDistance(tt.h1, tt.h2); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("HueDistance(%v, %v) = %v, want %v", tt.h1, tt.h2, got, tt.want)
		}
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
