package resources

import (
	"image"
	"image/color"
	"image/draw"
)

// DefaultBlackThreshold is the channel average below which pixels fade out.
const DefaultBlackThreshold = 56

// watermarkStart is where the cleared bottom-right corner begins, as a
// fraction of each dimension.
const watermarkStart = 0.91

// FadeNearBlack returns a copy of img whose near-black pixels are made
// proportionally transparent, so generated ships on a black background
// blend with the scene. When clearWatermark is set the bottom-right corner
// is cleared entirely.
func FadeNearBlack(img image.Image, threshold uint8, clearWatermark bool) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	if threshold > 0 {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := out.NRGBAAt(x, y)
				avg := (float64(c.R) + float64(c.G) + float64(c.B)) / 3
				if avg > float64(threshold) {
					continue
				}
				factor := avg / float64(threshold)
				c.A = uint8(float64(c.A)*factor + 0.5)
				out.SetNRGBA(x, y, c)
			}
		}
	}

	if clearWatermark {
		startX := int(float64(w) * watermarkStart)
		startY := int(float64(h) * watermarkStart)
		for y := startY; y < h; y++ {
			for x := startX; x < w; x++ {
				out.SetNRGBA(x, y, color.NRGBA{})
			}
		}
	}
	return out
}
