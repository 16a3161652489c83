package objects

import (
	"image/color"
	"strings"
	"sync"

	"github.com/cbodonnell/skirmish/client/fonts"
	"github.com/cbodonnell/skirmish/client/hud"
	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/messages"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

// Ship is a rendered ship. Apply and Destroy are called by the ship
// reconciler on its own goroutine while draw reads the ship on the game loop.
type Ship struct {
	id    string
	world *World

	lock       sync.RWMutex
	snapshot   messages.ShipSnapshot
	textureKey string
	destroyed  bool
}

func (s *Ship) Apply(snapshot messages.ShipSnapshot, textureKey string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.snapshot = snapshot
	s.textureKey = textureKey
}

func (s *Ship) Size() (float64, float64) {
	return constants.ShipSize, constants.ShipSize
}

func (s *Ship) Destroy() {
	s.lock.Lock()
	s.destroyed = true
	s.lock.Unlock()
	s.world.removeShip(s)
}

func (s *Ship) state() (messages.ShipSnapshot, string, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.snapshot, s.textureKey, !s.destroyed
}

func (s *Ship) draw(screen *ebiten.Image, cam *Camera, textures *Textures, bar hud.Bar, hasBar bool) {
	snapshot, key, alive := s.state()
	if !alive || snapshot.Health <= 0 {
		return
	}

	texture := textures.Get(key)
	w, h := texture.Bounds().Dx(), texture.Bounds().Dy()
	scale := constants.ShipSize / float64(max(w, h))

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-float64(w)/2, -float64(h)/2)
	op.GeoM.Scale(scale, scale)
	op.GeoM.Rotate(snapshot.Physics.Rotation)
	op.GeoM.Translate(snapshot.Physics.Position.X, snapshot.Physics.Position.Y)
	cam.Apply(op)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(texture, op)

	if !hasBar {
		return
	}
	x, y := cam.ToScreen(snapshot.Physics.Position)
	barX := float32(x - bar.Width/2)
	barY := float32(y + bar.OffsetY*cam.zoom())
	vector.DrawFilledRect(screen, barX, barY, float32(bar.Width), hud.BarHeight, color.RGBA{0x20, 0x20, 0x20, 0xc0}, false)
	vector.DrawFilledRect(screen, barX, barY, float32(bar.Fill), hud.BarHeight, bar.Color, false)

	f := fonts.TTFSmallFont
	kills := bar.Kills
	kb, _ := font.BoundString(f, kills)
	text.Draw(screen, kills, f, int(barX)-int((kb.Max.X-kb.Min.X)>>6)-6, int(barY)+hud.BarHeight, color.White)

	if bar.ShowName() {
		name := strings.ToUpper(bar.Name)
		nb, _ := font.BoundString(f, name)
		text.Draw(screen, name, f, int(x)-int((nb.Max.X-nb.Min.X)>>6)/2, int(barY)-6, color.White)
	}
}
