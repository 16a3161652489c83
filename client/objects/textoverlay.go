package objects

import (
	"image/color"
	"strings"

	"github.com/cbodonnell/skirmish/client/fonts"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

// TextOverlayObject dims the screen and centers a title with an optional hint below it.
type TextOverlayObject struct {
	*BaseObject

	title string
	hint  string
}

func NewTextOverlayObject(id string, title, hint string) *TextOverlayObject {
	o := &TextOverlayObject{
		BaseObject: NewBaseObject(id, &NewBaseObjectOpts{ZIndex: 100}),
		title:      strings.ToUpper(title),
		hint:       hint,
	}
	o.SetOwner(o)
	return o
}

func (o *TextOverlayObject) Draw(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	vector.DrawFilledRect(screen, 0, 0, float32(w), float32(h), color.RGBA{0, 0, 0, 0xa0}, false)

	drawCentered(screen, o.title, fonts.TTFLargeFont, float64(w)/2, float64(h)/2)
	if o.hint != "" {
		drawCentered(screen, o.hint, fonts.TTFNormalFont, float64(w)/2, float64(h)/2+48)
	}
}

func drawCentered(screen *ebiten.Image, s string, f font.Face, x, y float64) {
	bounds, _ := font.BoundString(f, s)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x-float64((bounds.Max.X-bounds.Min.X)>>6)/2, y-float64((bounds.Max.Y-bounds.Min.Y)>>6)/2)
	op.ColorScale.ScaleWithColor(color.White)
	text.DrawWithOptions(screen, s, f, op)
}
