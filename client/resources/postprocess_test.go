package resources

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFadeNearBlack(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 110, 110))
	for y := 10; y < 110; y++ {
		for x := 10; x < 110; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	src.SetNRGBA(10, 10, color.NRGBA{A: 255})
	src.SetNRGBA(11, 10, color.NRGBA{R: 28, G: 28, B: 28, A: 255})
	src.SetNRGBA(12, 10, color.NRGBA{R: 56, G: 56, B: 56, A: 255})

	out := FadeNearBlack(src, DefaultBlackThreshold, true)

	assert.Equal(t, image.Rect(0, 0, 100, 100), out.Bounds())
	assert.Equal(t, uint8(0), out.NRGBAAt(0, 0).A)
	assert.Equal(t, uint8(128), out.NRGBAAt(1, 0).A)
	assert.Equal(t, uint8(255), out.NRGBAAt(2, 0).A)
	assert.Equal(t, uint8(255), out.NRGBAAt(50, 50).A)
	assert.Equal(t, color.NRGBA{}, out.NRGBAAt(95, 95))
	assert.Equal(t, uint8(255), out.NRGBAAt(90, 99).A)

	// The source is left untouched.
	assert.Equal(t, uint8(255), src.NRGBAAt(10, 10).A)
}

func TestFadeNearBlack_disabled(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	src.SetNRGBA(9, 9, color.NRGBA{A: 255})
	out := FadeNearBlack(src, 0, false)
	assert.Equal(t, uint8(255), out.NRGBAAt(9, 9).A)
}
