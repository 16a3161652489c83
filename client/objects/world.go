package objects

import (
	"image/color"
	"math"
	"sort"
	"sync"

	"github.com/cbodonnell/skirmish/client/extrapolate"
	"github.com/cbodonnell/skirmish/client/hud"
	"github.com/cbodonnell/skirmish/client/reconcile"
	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/kinematic"
	"github.com/cbodonnell/skirmish/pkg/messages"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	gridSpacing = 256.0
	// projectileRadius is the drawn radius, in world units.
	projectileRadius = 4.0
)

var (
	gridColor       = color.RGBA{0x1c, 0x24, 0x38, 0xff}
	projectileColor = color.RGBA{0xff, 0xd2, 0x4a, 0xff}
)

// World draws the arena contents: ships created by the ship reconciler
// and the projectiles predicted by the extrapolator.
type World struct {
	*BaseObject

	camera       *Camera
	textures     *Textures
	extrapolator *extrapolate.Extrapolator
	bars         *hud.Tracker
	localID      func() string

	lock  sync.RWMutex
	ships map[string]*Ship
}

var (
	_ GameObject            = &World{}
	_ reconcile.ShipFactory = &World{}
)

type NewWorldOptions struct {
	Camera       *Camera
	Textures     *Textures
	Extrapolator *extrapolate.Extrapolator
	Bars         *hud.Tracker
	// LocalID returns the id of the local ship, drawn above the others.
	LocalID func() string
	ZIndex  int
}

func NewWorld(id string, opts NewWorldOptions) *World {
	if opts.LocalID == nil {
		opts.LocalID = func() string { return "" }
	}
	w := &World{
		BaseObject:   NewBaseObject(id, &NewBaseObjectOpts{ZIndex: opts.ZIndex}),
		camera:       opts.Camera,
		textures:     opts.Textures,
		extrapolator: opts.Extrapolator,
		bars:         opts.Bars,
		localID:      opts.LocalID,
		ships:        make(map[string]*Ship),
	}
	w.SetOwner(w)
	return w
}

// NewShip implements reconcile.ShipFactory.
func (w *World) NewShip(id string, snapshot messages.ShipSnapshot, textureKey string) reconcile.ShipObject {
	s := &Ship{
		id:         id,
		world:      w,
		snapshot:   snapshot,
		textureKey: textureKey,
	}
	w.lock.Lock()
	w.ships[id] = s
	w.lock.Unlock()
	return s
}

// NewProjectile implements reconcile.ProjectileFactory.
func (w *World) NewProjectile(snapshot messages.ProjectileSnapshot) reconcile.ProjectileObject {
	return w.extrapolator.Track(snapshot)
}

func (w *World) removeShip(s *Ship) {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.ships[s.id] == s {
		delete(w.ships, s.id)
	}
}

// ShipCount returns the number of rendered ships.
func (w *World) ShipCount() int {
	w.lock.RLock()
	defer w.lock.RUnlock()
	return len(w.ships)
}

func (w *World) Update() error {
	w.extrapolator.Step(1 / float64(ebiten.TPS()))
	return nil
}

func (w *World) Draw(screen *ebiten.Image) {
	w.drawGrid(screen)
	w.drawProjectiles(screen)
	w.drawShips(screen)
}

func (w *World) drawGrid(screen *ebiten.Image) {
	view := w.camera.View()
	zoom := float32(w.camera.zoom())
	for x := math.Ceil(view.X/gridSpacing) * gridSpacing; x <= view.X+view.Width; x += gridSpacing {
		if x < 0 || x > constants.ArenaWidth {
			continue
		}
		sx, _ := w.camera.ToScreen(kinematic.Vector{X: x})
		vector.StrokeLine(screen, float32(sx), 0, float32(sx), float32(w.camera.Height), zoom, gridColor, false)
	}
	for y := math.Ceil(view.Y/gridSpacing) * gridSpacing; y <= view.Y+view.Height; y += gridSpacing {
		if y < 0 || y > constants.ArenaHeight {
			continue
		}
		_, sy := w.camera.ToScreen(kinematic.Vector{Y: y})
		vector.StrokeLine(screen, 0, float32(sy), float32(w.camera.Width), float32(sy), zoom, gridColor, false)
	}
}

func (w *World) drawProjectiles(screen *ebiten.Image) {
	zoom := w.camera.zoom()
	for _, sprite := range w.extrapolator.Sprites(w.camera.View()) {
		x, y := w.camera.ToScreen(sprite.Position)
		clr := projectileColor
		clr.A = uint8(math.Round(255 * sprite.Alpha))
		// premultiplied alpha
		clr.R = uint8(uint16(clr.R) * uint16(clr.A) / 255)
		clr.G = uint8(uint16(clr.G) * uint16(clr.A) / 255)
		clr.B = uint8(uint16(clr.B) * uint16(clr.A) / 255)
		vector.DrawFilledCircle(screen, float32(x), float32(y), float32(projectileRadius*zoom), clr, true)
	}
}

func (w *World) drawShips(screen *ebiten.Image) {
	localID := w.localID()

	w.lock.RLock()
	ships := make([]*Ship, 0, len(w.ships))
	for _, s := range w.ships {
		ships = append(ships, s)
	}
	w.lock.RUnlock()

	sort.Slice(ships, func(i, j int) bool {
		li, lj := ships[i].id == localID, ships[j].id == localID
		if li != lj {
			return lj
		}
		return ships[i].id < ships[j].id
	})
	for _, s := range ships {
		bar, ok := w.bars.Bar(s.id)
		s.draw(screen, w.camera, w.textures, bar, ok)
	}
}
