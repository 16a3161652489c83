package scenes

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/cbodonnell/skirmish/client/extrapolate"
	"github.com/cbodonnell/skirmish/client/hud"
	"github.com/cbodonnell/skirmish/client/input"
	"github.com/cbodonnell/skirmish/client/network"
	"github.com/cbodonnell/skirmish/client/objects"
	"github.com/cbodonnell/skirmish/client/reconcile"
	"github.com/cbodonnell/skirmish/client/resources"
	"github.com/cbodonnell/skirmish/client/state"
	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/kinematic"
	"github.com/cbodonnell/skirmish/pkg/log"
)

const (
	// CameraFollow is the fraction of the distance to the local ship the camera covers per frame.
	CameraFollow = 0.15
	// KillEffectTTL is how long the kill popup stays, in milliseconds.
	KillEffectTTL = 1200
)

// GameScene renders the arena from the store. Ships are created by the
// ship reconciler, projectiles by the projectile reconciler.
type GameScene struct {
	*BaseScene

	store          *state.Store
	networkManager *network.NetworkManager
	resolver       *resources.Resolver

	camera       *objects.Camera
	textures     *objects.Textures
	extrapolator *extrapolate.Extrapolator
	bars         *hud.Tracker
	world        *objects.World
	ships        *reconcile.Ships
	projectiles  *reconcile.Projectiles

	prompt       string
	started      bool
	disconnected bool
	lastKills int
	effects   int
}

type NewGameSceneOptions struct {
	Store          *state.Store
	NetworkManager *network.NetworkManager
	Resolver       *resources.Resolver
	// Prompt is sent once the session has a client id. Empty starts the default ship.
	Prompt string
	// ScreenWidth and ScreenHeight size the camera until the first layout.
	ScreenWidth, ScreenHeight int
}

var _ Scene = &GameScene{}

func NewGameScene(opts NewGameSceneOptions) (*GameScene, error) {
	if opts.Store == nil || opts.NetworkManager == nil || opts.Resolver == nil {
		return nil, fmt.Errorf("game scene requires a store, a network manager and a resolver")
	}
	camera := objects.NewCamera(float64(opts.ScreenWidth), float64(opts.ScreenHeight))
	camera.Center = kinematic.Vector{X: constants.ArenaWidth / 2, Y: constants.ArenaHeight / 2}

	return &GameScene{
		BaseScene:      NewBaseScene(objects.NewSortedZIndexObject("game-root")),
		store:          opts.Store,
		networkManager: opts.NetworkManager,
		resolver:       opts.Resolver,
		camera:         camera,
		prompt:         opts.Prompt,
	}, nil
}

func (s *GameScene) Init() error {
	s.textures = objects.NewTextures(s.resolver)
	s.extrapolator = extrapolate.New(extrapolate.NewExtrapolatorOptions{
		Lifetime: secondsToDuration(constants.ProjectileTTL),
	})
	s.bars = hud.NewTracker()
	s.world = objects.NewWorld("world", objects.NewWorldOptions{
		Camera:       s.camera,
		Textures:     s.textures,
		Extrapolator: s.extrapolator,
		Bars:         s.bars,
		LocalID:      s.store.ClientID,
		ZIndex:       10,
	})

	root := s.Root
	for _, wall := range objects.NewArenaWalls(s.camera, 0) {
		if err := root.AddChild(wall.GetID(), wall); err != nil {
			return fmt.Errorf("failed to add wall: %v", err)
		}
	}
	if err := root.AddChild(s.world.GetID(), s.world); err != nil {
		return fmt.Errorf("failed to add world: %v", err)
	}
	overlay := objects.NewHUDObject("hud", s.store, s.camera)
	if err := root.AddChild(overlay.GetID(), overlay); err != nil {
		return fmt.Errorf("failed to add hud: %v", err)
	}

	s.ships = reconcile.NewShips(reconcile.NewShipsOptions{
		Store:    s.store,
		Factory:  s.world,
		Resolver: s.resolver,
		HUD:      s.bars,
	})
	s.projectiles = reconcile.NewProjectiles(reconcile.NewProjectilesOptions{
		Store:   s.store,
		Factory: s.world.NewProjectile,
	})
	s.resolver.Prefetch(s.store.LocalShipImageURL())
	s.ships.Sync()
	s.projectiles.Sync()

	if ship, ok := s.store.LocalShip(); ok {
		s.lastKills = ship.Kills
	}
	return s.BaseScene.Init()
}

func (s *GameScene) Destroy() error {
	if s.ships != nil {
		s.ships.Close()
	}
	if s.projectiles != nil {
		s.projectiles.Close()
	}
	if s.bars != nil {
		s.bars.Clear()
	}
	err := s.BaseScene.Destroy()
	if s.textures != nil {
		s.textures.Release()
	}
	return err
}

func (s *GameScene) Update() error {
	if s.disconnected {
		return s.BaseScene.Update()
	}
	if err := s.requestStart(); err != nil {
		return err
	}

	s.store.SetInput(input.Sample())

	if ship, ok := s.store.LocalShip(); ok {
		s.camera.Follow(ship.Physics.Position, CameraFollow)
		if ship.Kills > s.lastKills {
			if err := s.addKillEffect(ship.Kills - s.lastKills); err != nil {
				return err
			}
		}
		s.lastKills = ship.Kills
	}

	return s.BaseScene.Update()
}

// requestStart sends the start message once the server assigned a client id.
func (s *GameScene) requestStart() error {
	if s.started || s.store.ClientID() == "" {
		return nil
	}
	s.started = true

	ctx, cancel := context.WithTimeout(context.Background(), network.DefaultDialTimeout)
	defer cancel()
	if s.prompt == "" {
		log.Info("Starting with the default ship")
		if err := s.networkManager.StartWithDefault(ctx); err != nil {
			return fmt.Errorf("failed to start with default ship: %v", err)
		}
		return nil
	}
	log.Info("Starting with prompt %q", s.prompt)
	if err := s.networkManager.StartWithPrompt(ctx, s.prompt); err != nil {
		return fmt.Errorf("failed to start with prompt: %v", err)
	}
	return nil
}

func (s *GameScene) addKillEffect(kills int) error {
	s.effects++
	label := "+1 kill"
	if kills > 1 {
		label = fmt.Sprintf("+%d kills", kills)
	}
	effect := objects.NewTextEffect(fmt.Sprintf("kill-%d", s.effects), objects.NewTextEffectOptions{
		Text:   label,
		X:      s.camera.Width / 2,
		Y:      s.camera.Height/2 - 80,
		Color:  color.RGBA{0xff, 0xd2, 0x4a, 0xff},
		Rise:   40,
		TTL:    KillEffectTTL,
		ZIndex: 60,
	})
	if err := s.Root.AddChild(effect.GetID(), effect); err != nil {
		return fmt.Errorf("failed to add kill effect: %v", err)
	}
	return nil
}

// ShowConnectionLost stops sending input and draws msg over the last
// known state, which stays on screen.
func (s *GameScene) ShowConnectionLost(msg string) error {
	if s.disconnected {
		return nil
	}
	s.disconnected = true
	overlay := objects.NewTextOverlayObject("overlay-connection-lost", msg, "Press enter to return to the menu")
	if err := s.Root.AddChild(overlay.GetID(), overlay); err != nil {
		return fmt.Errorf("failed to add connection lost overlay: %v", err)
	}
	return nil
}

// Layout keeps the camera in sync with the screen size.
func (s *GameScene) Layout(width, height int) {
	s.camera.Resize(width, height)
}

// LocalKills returns the last known kill count of the local ship.
func (s *GameScene) LocalKills() int {
	return s.lastKills
}

// RenderedShips returns the number of ships currently drawn.
func (s *GameScene) RenderedShips() int {
	if s.world == nil {
		return 0
	}
	return s.world.ShipCount()
}

// RenderedProjectiles returns the number of projectiles currently tracked.
func (s *GameScene) RenderedProjectiles() int {
	if s.projectiles == nil {
		return 0
	}
	return s.projectiles.Len()
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
