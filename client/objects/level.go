package objects

import (
	"image/color"

	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/kinematic"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// LevelObject draws one solid rectangle of the arena, in world units.
type LevelObject struct {
	*BaseObject

	camera *Camera
	x, y   float64
	w, h   float64
	clr    color.Color
}

type NewLevelObjectOptions struct {
	Camera *Camera
	// X and Y are the top left corner of the rectangle.
	X, Y float64
	// W and H are the size of the rectangle.
	W, H  float64
	Color color.Color
	// ZIndex is the z-index of the level object.
	ZIndex int
}

func NewLevelObject(id string, opts NewLevelObjectOptions) *LevelObject {
	return &LevelObject{
		BaseObject: NewBaseObject(id, &NewBaseObjectOpts{
			ZIndex: opts.ZIndex,
		}),
		camera: opts.Camera,
		x:      opts.X,
		y:      opts.Y,
		w:      opts.W,
		h:      opts.H,
		clr:    opts.Color,
	}
}

func (o *LevelObject) Draw(screen *ebiten.Image) {
	x, y := o.camera.ToScreen(kinematic.Vector{X: o.x, Y: o.y})
	zoom := o.camera.zoom()
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(o.w*zoom), float32(o.h*zoom), o.clr, false)
}

// NewArenaWalls returns the four walls enclosing the arena.
func NewArenaWalls(camera *Camera, zIndex int) []*LevelObject {
	t := constants.ArenaWallThickness
	w, h := constants.ArenaWidth, constants.ArenaHeight
	clr := color.RGBA{0x46, 0x52, 0x6e, 0xff}
	walls := []struct {
		id         string
		x, y, w, h float64
	}{
		{"wall-top", 0, 0, w, t},
		{"wall-bottom", 0, h - t, w, t},
		{"wall-left", 0, 0, t, h},
		{"wall-right", w - t, 0, t, h},
	}
	objects := make([]*LevelObject, 0, len(walls))
	for _, wall := range walls {
		objects = append(objects, NewLevelObject(wall.id, NewLevelObjectOptions{
			Camera: camera,
			X:      wall.x,
			Y:      wall.y,
			W:      wall.w,
			H:      wall.h,
			Color:  clr,
			ZIndex: zIndex,
		}))
	}
	return objects
}
