package colour

import (
	"image"
	"image/color"
	"math"
)

// SamplePixel returns the colour of the bitmap pixel under a logical (CSS)
// coordinate. The coordinate is multiplied by the device pixel scale and
// floored. It reports false when the image is nil, the scale is not
// positive, or the scaled point falls outside the image bounds.
func SamplePixel(img image.Image, x, y, scale float64) (Hex, bool) {
	if img == nil || !(scale > 0) {
		return "", false
	}

	px := math.Floor(x * scale)
	py := math.Floor(y * scale)
	bounds := img.Bounds()
	if math.IsNaN(px) || math.IsNaN(py) ||
		px < 0 || py < 0 ||
		px >= float64(bounds.Dx()) || py >= float64(bounds.Dy()) {
		return "", false
	}

	c := color.NRGBAModel.Convert(img.At(bounds.Min.X+int(px), bounds.Min.Y+int(py))).(color.NRGBA)
	return RGB{R: c.R, G: c.G, B: c.B}.Hex(), true
}
