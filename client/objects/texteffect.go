package objects

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/cbodonnell/skirmish/client/fonts"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font"
)

// TextEffect is a short lived label in screen space. It fades out and
// removes itself from its parent when its TTL runs out.
type TextEffect struct {
	*BaseObject

	text  string
	x, y  float64
	color color.Color
	rise  float64
	ttl   int
	total int
}

type NewTextEffectOptions struct {
	// Text is the text to display.
	Text string
	// X and Y are the screen position of the center of the text.
	X, Y float64
	// Color defaults to white.
	Color color.Color
	// Rise is how many pixels the text moves up per second.
	Rise float64
	// TTL is the time to live in milliseconds.
	TTL int
	// ZIndex is the z-index of the text effect.
	ZIndex int
}

func NewTextEffect(id string, opts NewTextEffectOptions) *TextEffect {
	clr := opts.Color
	if clr == nil {
		clr = color.White
	}
	o := &TextEffect{
		BaseObject: NewBaseObject(id, &NewBaseObjectOpts{
			ZIndex: opts.ZIndex,
		}),
		text:  strings.ToUpper(opts.Text),
		x:     opts.X,
		y:     opts.Y,
		color: clr,
		rise:  opts.Rise,
		ttl:   opts.TTL,
		total: opts.TTL,
	}
	o.SetOwner(o)
	return o
}

func (o *TextEffect) Update() error {
	o.y -= o.rise / float64(ebiten.TPS())
	if o.total <= 0 {
		return nil
	}
	o.ttl -= 1000 / ebiten.TPS()
	if o.ttl <= 0 {
		if err := o.RemoveFromParent(); err != nil {
			return fmt.Errorf("failed to remove text effect from parent: %w", err)
		}
	}
	return nil
}

func (o *TextEffect) Draw(screen *ebiten.Image) {
	f := fonts.TTFNormalFont
	bounds, _ := font.BoundString(f, o.text)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(o.x-float64((bounds.Max.X-bounds.Min.X)>>6)/2, o.y)
	op.ColorScale.ScaleWithColor(o.color)
	if o.total > 0 {
		op.ColorScale.ScaleAlpha(float32(o.ttl) / float32(o.total))
	}
	text.DrawWithOptions(screen, o.text, f, op)
}
