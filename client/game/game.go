package game

import (
	"context"
	"fmt"

	"github.com/cbodonnell/skirmish/client/flow"
	"github.com/cbodonnell/skirmish/client/input"
	"github.com/cbodonnell/skirmish/client/resources"
	"github.com/cbodonnell/skirmish/client/scenes"
	"github.com/cbodonnell/skirmish/client/ui"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const (
	DefaultScreenWidth  = 1280
	DefaultScreenHeight = 720
)

// Game implements ebiten.Game interface, which has Update, Draw and Layout methods.
type Game struct {
	// debug is a boolean value indicating whether debug mode is enabled.
	debug bool
	// ctx bounds every session.
	ctx context.Context
	// sessionOptions configures new sessions.
	sessionOptions SessionOptions
	// resolver loads ship images for every session.
	resolver *resources.Resolver
	// session is the current connection, nil outside of play.
	session *Session
	// prompt is remembered between sessions to prefill the menu.
	prompt string
	// quotaRemaining is the last quota seen, -1 before any.
	quotaRemaining int
	// mode is the current game mode.
	mode flow.GameMode
	// scene is the current scene.
	scene scenes.Scene
	// gameScene is set while mode is GameModePlay.
	gameScene *scenes.GameScene

	screenWidth, screenHeight int
}

type NewGameOptions struct {
	Debug    bool
	Session  SessionOptions
	Resolver *resources.Resolver
	// Prompt skips the menu and starts a session right away when set.
	Prompt string
	// AutoStart skips the menu and starts with the default ship when Prompt is empty.
	AutoStart bool
}

func NewGame(ctx context.Context, opts NewGameOptions) (*Game, error) {
	if opts.Resolver == nil {
		return nil, fmt.Errorf("game requires a resolver")
	}
	g := &Game{
		debug:          opts.Debug,
		ctx:            ctx,
		sessionOptions: opts.Session,
		resolver:       opts.Resolver,
		prompt:         opts.Prompt,
		quotaRemaining: -1,
		screenWidth:    DefaultScreenWidth,
		screenHeight:   DefaultScreenHeight,
	}

	if opts.Prompt != "" || opts.AutoStart {
		if err := g.start(opts.Prompt); err != nil {
			log.Error("Failed to start game: %v", err)
			if err := g.loadNetworkError(); err != nil {
				return nil, err
			}
		}
		return g, nil
	}

	if err := g.loadMenu(); err != nil {
		return nil, fmt.Errorf("failed to load menu scene: %v", err)
	}
	return g, nil
}

func (g *Game) SetScene(scene scenes.Scene) error {
	if g.scene != nil {
		if err := g.scene.Destroy(); err != nil {
			return fmt.Errorf("failed to destroy previous scene: %v", err)
		}
	}

	g.scene = scene
	if err := g.scene.Init(); err != nil {
		return fmt.Errorf("failed to initialize scene: %v", err)
	}

	return nil
}

func (g *Game) loadMenu() error {
	// The menu shows the quota the session last saw.
	g.closeSession()
	menu, err := scenes.NewMenuScene(scenes.MenuSceneOptions{
		OnStart:        g.start,
		Prompt:         g.prompt,
		QuotaRemaining: g.quotaRemaining,
	})
	if err != nil {
		return fmt.Errorf("failed to create menu scene: %v", err)
	}
	if err := g.SetScene(menu); err != nil {
		return fmt.Errorf("failed to set menu scene: %v", err)
	}
	g.setMode(flow.GameModeMenu)
	return nil
}

// start connects a new session and loads the game scene. An empty prompt
// starts with the default ship.
func (g *Game) start(prompt string) error {
	if prompt != "" && g.quotaRemaining == 0 {
		return ui.NewActionableError("No generated ships left. Launch the default ship instead.")
	}
	g.prompt = prompt

	session, err := StartSession(g.ctx, g.sessionOptions)
	if err != nil {
		log.Error("Failed to connect: %v", err)
		return ui.NewActionableError("Could not reach the server. Please try again.")
	}
	g.session = session

	if err := g.loadGame(prompt); err != nil {
		g.closeSession()
		return fmt.Errorf("failed to load game scene: %v", err)
	}
	return nil
}

func (g *Game) loadGame(prompt string) error {
	gameScene, err := scenes.NewGameScene(scenes.NewGameSceneOptions{
		Store:          g.session.Store,
		NetworkManager: g.session.NetworkManager,
		Resolver:       g.resolver,
		Prompt:         prompt,
		ScreenWidth:    g.screenWidth,
		ScreenHeight:   g.screenHeight,
	})
	if err != nil {
		return fmt.Errorf("failed to create game scene: %v", err)
	}
	if err := g.SetScene(gameScene); err != nil {
		return fmt.Errorf("failed to set game scene: %v", err)
	}
	g.gameScene = gameScene
	g.setMode(flow.GameModePlay)
	return nil
}

func (g *Game) loadGameOver() error {
	kills := 0
	if g.gameScene != nil {
		kills = g.gameScene.LocalKills()
	}
	gameOver, err := scenes.NewGameOverScene(kills)
	if err != nil {
		return fmt.Errorf("failed to create game over scene: %v", err)
	}
	if err := g.SetScene(gameOver); err != nil {
		return fmt.Errorf("failed to set game over scene: %v", err)
	}
	g.setMode(flow.GameModeOver)
	return nil
}

// loadNetworkError keeps the game scene with its last state on screen when
// there is one, and shows the error scene otherwise.
func (g *Game) loadNetworkError() error {
	if g.gameScene != nil {
		if err := g.gameScene.ShowConnectionLost("Connection Lost"); err != nil {
			return fmt.Errorf("failed to show connection lost: %v", err)
		}
		g.setMode(flow.GameModeNetworkError)
		return nil
	}
	networkError, err := scenes.NewErrorScene("Network Error")
	if err != nil {
		return fmt.Errorf("failed to create network error scene: %v", err)
	}
	if err := g.SetScene(networkError); err != nil {
		return fmt.Errorf("failed to set network error scene: %v", err)
	}
	g.setMode(flow.GameModeNetworkError)
	return nil
}

// setMode switches mode and closes the session when the mode does not keep it.
func (g *Game) setMode(mode flow.GameMode) {
	if !mode.KeepsSession() {
		g.closeSession()
	}
	g.mode = mode
}

// closeSession remembers the quota and disconnects.
func (g *Game) closeSession() {
	g.gameScene = nil
	if g.session == nil {
		return
	}
	if quota, ok := g.session.Store.Quota(); ok {
		g.quotaRemaining = quota.Remaining
	}
	if err := g.session.Close(); err != nil {
		log.Warn("Failed to close session: %v", err)
	}
	g.session = nil
}

func (g *Game) Update() error {
	// Update the network manager
	if err := g.networkManagerUpdate(); err != nil {
		return fmt.Errorf("failed to update network manager: %v", err)
	}

	// Handle input
	if err := g.handleInput(); err != nil {
		return fmt.Errorf("failed to handle input: %v", err)
	}

	// Update the current scene
	if err := g.scene.Update(); err != nil {
		return fmt.Errorf("failed to update scene: %v", err)
	}

	return nil
}

func (g *Game) networkManagerUpdate() error {
	if g.session == nil || g.mode == flow.GameModeNetworkError {
		return nil
	}

	g.session.NetworkManager.ProcessPendingMessages()

	select {
	case err := <-g.session.NetworkManager.WSClientErrChan():
		log.Error("WebSocket client error: %v", err)
		if err := g.loadNetworkError(); err != nil {
			return fmt.Errorf("failed to load network error scene: %v", err)
		}
	default:
	}

	return nil
}

func (g *Game) handleInput() error {
	if input.IsDebugJustPressed() {
		g.debug = !g.debug
	}

	switch {
	case g.mode == flow.GameModePlay:
		if input.IsNegativeJustPressed() {
			if err := g.loadGameOver(); err != nil {
				return fmt.Errorf("failed to load game over scene: %v", err)
			}
		}
	case g.mode.ReturnsToMenu():
		if input.IsPositiveJustPressed() {
			if err := g.loadMenu(); err != nil {
				return fmt.Errorf("failed to load menu scene: %v", err)
			}
		}
	}

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
	if g.debug {
		g.drawDebugOverlay(screen)
	}
}

func (g *Game) drawDebugOverlay(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n   FPS: %0.1f", ebiten.ActualFPS()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n   TPS: %0.1f", ebiten.ActualTPS()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n   Mode: %s", g.mode))

	if g.session == nil || !g.session.NetworkManager.IsConnected() {
		return
	}

	networkManager := g.session.NetworkManager
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n\n   Client: %s", networkManager.ClientID()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n\n\n   Snapshot interval: %s", networkManager.SnapshotInterval()))
	if g.gameScene != nil {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n\n\n\n   Ships: %d  Projectiles: %d", g.gameScene.RenderedShips(), g.gameScene.RenderedProjectiles()))
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		g.screenWidth, g.screenHeight = outsideWidth, outsideHeight
	}
	if g.gameScene != nil {
		g.gameScene.Layout(g.screenWidth, g.screenHeight)
	}
	return g.screenWidth, g.screenHeight
}
