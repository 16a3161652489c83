package shipimage

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/vector"
)

// Size is the side of a generated ship image, in pixels.
const Size = 96

type point struct{ x, y float32 }

// Ship outlines for a nose pointing up in a Size x Size square.
var (
	hull     = []point{{48, 4}, {86, 84}, {48, 68}, {10, 84}}
	wingL    = []point{{30, 48}, {6, 70}, {22, 74}}
	wingR    = []point{{66, 48}, {90, 70}, {74, 74}}
	cockpit  = []point{{48, 22}, {56, 42}, {48, 50}, {40, 42}}
	thruster = []point{{42, 70}, {54, 70}, {52, 82}, {44, 82}}
)

// Palette returns the hull and accent colors derived from seed.
func Palette(seed string) (hullColor, accentColor color.RGBA) {
	h := fnv.New32a()
	h.Write([]byte(seed))
	sum := h.Sum32()
	hue := float64(sum%360) / 360
	hullColor = hsv(hue, 0.65, 0.9)
	accentColor = hsv(math.Mod(hue+0.5, 1), 0.5, 1)
	return hullColor, accentColor
}

// Render draws the ship for seed. The same seed always yields the same image.
func Render(seed string) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, Size, Size))
	hullColor, accentColor := Palette(seed)
	dark := color.RGBA{R: hullColor.R / 2, G: hullColor.G / 2, B: hullColor.B / 2, A: 255}

	fill(dst, wingL, dark)
	fill(dst, wingR, dark)
	fill(dst, hull, hullColor)
	fill(dst, thruster, color.RGBA{R: 255, G: 140, B: 40, A: 255})
	fill(dst, cockpit, accentColor)
	return dst
}

// RenderPNG returns Render(seed) encoded as PNG.
func RenderPNG(seed string) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Render(seed)); err != nil {
		return nil, fmt.Errorf("failed to encode ship image: %v", err)
	}
	return buf.Bytes(), nil
}

func fill(dst draw.Image, polygon []point, c color.Color) {
	r := vector.NewRasterizer(Size, Size)
	r.MoveTo(polygon[0].x, polygon[0].y)
	for _, p := range polygon[1:] {
		r.LineTo(p.x, p.y)
	}
	r.ClosePath()
	r.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

func hsv(h, s, v float64) color.RGBA {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}
