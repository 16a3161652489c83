package objects

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/cbodonnell/skirmish/client/fonts"
	"github.com/cbodonnell/skirmish/client/hud"
	"github.com/cbodonnell/skirmish/client/state"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var indicatorColor = color.RGBA{0xff, 0x5a, 0x4a, 0xe0}

// HUDObject draws the screen space overlay: the scoreboard, the ship
// quota and the indicators pointing at offscreen ships.
type HUDObject struct {
	*BaseObject

	store  *state.Store
	camera *Camera
}

func NewHUDObject(id string, store *state.Store, camera *Camera) *HUDObject {
	o := &HUDObject{
		BaseObject: NewBaseObject(id, &NewBaseObjectOpts{ZIndex: 50}),
		store:      store,
		camera:     camera,
	}
	o.SetOwner(o)
	return o
}

func (o *HUDObject) Draw(screen *ebiten.Image) {
	localID := o.store.ClientID()
	o.drawIndicators(screen, localID)
	o.drawScoreboard(screen, localID)
	o.drawQuota(screen)
}

func (o *HUDObject) drawScoreboard(screen *ebiten.Image, localID string) {
	f := fonts.TTFNormalFont
	x := screen.Bounds().Dx() - 220
	y := 28
	text.Draw(screen, "SCOREBOARD", f, x, y, color.White)
	for i, item := range o.store.RankedScoreboard(state.ScoreboardSize) {
		y += 22
		clr := color.RGBA{0xc8, 0xc8, 0xd2, 0xff}
		if item.ID == localID {
			clr = color.RGBA{0xff, 0xd2, 0x4a, 0xff}
		}
		line := fmt.Sprintf("%d. %-14s %3.0f", i+1, hud.TruncateName(item.Name), item.Score)
		text.Draw(screen, line, f, x, y, clr)
	}
}

func (o *HUDObject) drawQuota(screen *ebiten.Image) {
	quota, ok := o.store.Quota()
	if !ok {
		return
	}
	line := fmt.Sprintf("SHIPS LEFT %d/%d", quota.Remaining, quota.Cap)
	text.Draw(screen, line, fonts.TTFSmallFont, 16, screen.Bounds().Dy()-16, color.White)
}

func (o *HUDObject) drawIndicators(screen *ebiten.Image, localID string) {
	f := fonts.TTFSmallFont
	for _, ind := range hud.Indicators(o.camera.Camera, o.store.Ships(), localID) {
		size := 10 * ind.Scale
		tip := rotate(size, 0, ind.Angle)
		left := rotate(-size/2, size/2, ind.Angle)
		right := rotate(-size/2, -size/2, ind.Angle)

		var path vector.Path
		path.MoveTo(float32(ind.Position.X+tip[0]), float32(ind.Position.Y+tip[1]))
		path.LineTo(float32(ind.Position.X+left[0]), float32(ind.Position.Y+left[1]))
		path.LineTo(float32(ind.Position.X+right[0]), float32(ind.Position.Y+right[1]))
		path.Close()
		fillPath(screen, &path, indicatorColor)

		if ind.Label != "" {
			label := strings.ToUpper(ind.Label)
			lx := int(ind.Position.X - math.Cos(ind.Angle)*(size+8))
			ly := int(ind.Position.Y - math.Sin(ind.Angle)*(size+8))
			text.Draw(screen, label, f, lx-len(label)*3, ly, color.White)
		}
	}
}

func rotate(x, y, angle float64) [2]float64 {
	sin, cos := math.Sincos(angle)
	return [2]float64{x*cos - y*sin, x*sin + y*cos}
}

var whiteImage = func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img
}()

func fillPath(screen *ebiten.Image, path *vector.Path, clr color.RGBA) {
	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	r, g, b, a := float32(clr.R)/0xff, float32(clr.G)/0xff, float32(clr.B)/0xff, float32(clr.A)/0xff
	for i := range vs {
		vs[i].SrcX, vs[i].SrcY = 1, 1
		vs[i].ColorR, vs[i].ColorG, vs[i].ColorB, vs[i].ColorA = r*a, g*a, b*a, a
	}
	screen.DrawTriangles(vs, is, whiteImage, &ebiten.DrawTrianglesOptions{
		AntiAlias: true,
	})
}
