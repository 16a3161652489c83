package objects

import (
	"github.com/cbodonnell/skirmish/client/extrapolate"
	"github.com/cbodonnell/skirmish/client/hud"
	"github.com/cbodonnell/skirmish/pkg/kinematic"
	"github.com/hajimehoshi/ebiten/v2"
)

// Camera follows a point of the arena. World objects read it while drawing.
type Camera struct {
	hud.Camera
}

func NewCamera(width, height float64) *Camera {
	return &Camera{
		Camera: hud.Camera{Width: width, Height: height, Zoom: 1},
	}
}

func (c *Camera) zoom() float64 {
	if c.Zoom <= 0 {
		return 1
	}
	return c.Zoom
}

// Follow moves the center towards target by factor in [0, 1].
func (c *Camera) Follow(target kinematic.Vector, factor float64) {
	factor = kinematic.Clamp(factor, 0, 1)
	c.Center = c.Center.Add(target.Sub(c.Center).Scale(factor))
}

// Resize keeps the camera in sync with the screen.
func (c *Camera) Resize(width, height int) {
	c.Width, c.Height = float64(width), float64(height)
}

// ToScreen converts a world position to screen pixels.
func (c *Camera) ToScreen(p kinematic.Vector) (float64, float64) {
	s := p.Sub(c.Center).Scale(c.zoom())
	return s.X + c.Width/2, s.Y + c.Height/2
}

// View returns the visible world rectangle.
func (c *Camera) View() extrapolate.View {
	w, h := c.Width/c.zoom(), c.Height/c.zoom()
	return extrapolate.View{
		X:      c.Center.X - w/2,
		Y:      c.Center.Y - h/2,
		Width:  w,
		Height: h,
	}
}

// Apply appends the world to screen transform to op.
func (c *Camera) Apply(op *ebiten.DrawImageOptions) {
	op.GeoM.Translate(-c.Center.X, -c.Center.Y)
	op.GeoM.Scale(c.zoom(), c.zoom())
	op.GeoM.Translate(c.Width/2, c.Height/2)
}
