package game

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/messages"
	"github.com/cbodonnell/skirmish/pkg/network"
	"github.com/cbodonnell/skirmish/pkg/queue"
	"github.com/cbodonnell/skirmish/pkg/state"
	"github.com/cbodonnell/skirmish/pkg/workers"
	"github.com/google/uuid"
)

const (
	// DefaultGameLoopInterval runs the simulation at 20 ticks per second
	DefaultGameLoopInterval = 50 * time.Millisecond
	// DefaultScoreboardInterval is how often the scoreboard is broadcast
	DefaultScoreboardInterval = time.Second
)

type GameManager struct {
	clientMessageQueue queue.Queue[*network.ClientMessage]
	serverEventQueue   queue.Queue[interface{}]
	gameState          *types.GameState
	stateManager       state.StateManager
	serverMessageChan  chan<- workers.ServerMessage
	saveScoreChan      chan<- workers.SaveScoreRequest
	gameLoopInterval   time.Duration
	scoreboardEvery    int64
	shipImageBaseURL   string

	ticks int64
	newID func() string
	rand  *rand.Rand
}

// NewGameManagerOptions contains options for creating a new GameManager.
type NewGameManagerOptions struct {
	ClientMessageQueue queue.Queue[*network.ClientMessage]
	ServerEventQueue   queue.Queue[interface{}]
	GameState          *types.GameState
	// StateManager is optional. It receives a copy of the game state with every scoreboard.
	StateManager       state.StateManager
	ServerMessageChan  chan<- workers.ServerMessage
	SaveScoreChan      chan<- workers.SaveScoreRequest
	GameLoopInterval   time.Duration
	ScoreboardInterval time.Duration
	// ShipImageBaseURL is prefixed to the image path of prompted ships.
	ShipImageBaseURL string
}

func NewGameManager(opts NewGameManagerOptions) *GameManager {
	if opts.GameLoopInterval <= 0 {
		opts.GameLoopInterval = DefaultGameLoopInterval
	}
	if opts.ScoreboardInterval <= 0 {
		opts.ScoreboardInterval = DefaultScoreboardInterval
	}
	scoreboardEvery := int64(opts.ScoreboardInterval / opts.GameLoopInterval)
	if scoreboardEvery < 1 {
		scoreboardEvery = 1
	}
	return &GameManager{
		clientMessageQueue: opts.ClientMessageQueue,
		serverEventQueue:   opts.ServerEventQueue,
		gameState:          opts.GameState,
		stateManager:       opts.StateManager,
		serverMessageChan:  opts.ServerMessageChan,
		saveScoreChan:      opts.SaveScoreChan,
		gameLoopInterval:   opts.GameLoopInterval,
		scoreboardEvery:    scoreboardEvery,
		shipImageBaseURL:   strings.TrimSuffix(opts.ShipImageBaseURL, "/"),
		newID:              uuid.NewString,
		rand:               rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start starts the game loop.
func (gm *GameManager) Start(ctx context.Context) error {
	if gm.gameState == nil {
		return fmt.Errorf("game state is nil")
	}

	ticker := time.NewTicker(gm.gameLoopInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			if err := gm.gameTick(ctx, t); err != nil {
				log.Error("Failed to run game tick: %v", err)
			}
		}
	}
}

// gameTick runs one iteration of the game loop.
func (gm *GameManager) gameTick(ctx context.Context, t time.Time) error {
	gm.gameState.Timestamp = t.UnixMilli()
	gm.processServerEvents()
	gm.processClientMessages()
	gm.updateServerObjects(gm.gameLoopInterval.Seconds())
	gm.broadcastGameState()

	gm.ticks++
	if gm.ticks%gm.scoreboardEvery == 0 {
		gm.broadcastScoreboard()
		if gm.stateManager != nil {
			if err := gm.stateManager.Set(ctx, gm.gameState); err != nil {
				return fmt.Errorf("failed to set game state: %v", err)
			}
		}
	}

	return nil
}

// processServerEvents processes all pending connection events in the queue
// and updates the game state accordingly.
func (gm *GameManager) processServerEvents() {
	for _, item := range gm.serverEventQueue.ReadAllMessages() {
		switch event := item.(type) {
		case *types.ConnectPilotEvent:
			pilot := &types.Pilot{
				ClientID:       event.ClientID,
				QuotaRemaining: constants.ShipQuotaCap,
			}
			gm.gameState.Pilots[event.ClientID] = pilot
			log.Debug("Pilot %s joined", event.ClientID)
			gm.sendToClient(event.ClientID, messages.TypeShipQuota, pilot.QuotaMessage())
		case *types.DisconnectPilotEvent:
			if ship, ok := gm.gameState.Ships[event.ClientID]; ok {
				gm.requestSaveScore(ship)
				gm.gameState.RemoveShip(event.ClientID)
			}
			delete(gm.gameState.Pilots, event.ClientID)
			log.Debug("Pilot %s left", event.ClientID)
		default:
			log.Error("Unhandled server event type: %T", event)
		}
	}
}

// processClientMessages processes all pending client messages in the queue
// and updates the game state accordingly.
func (gm *GameManager) processClientMessages() {
	for _, message := range gm.clientMessageQueue.ReadAllMessages() {
		pilot, ok := gm.gameState.Pilots[message.ClientID]
		if !ok {
			log.Warn("Client %s is not in the game state", message.ClientID)
			continue
		}

		switch message.Envelope.Type {
		case messages.TypeInputSnapshot:
			input, err := messages.DecodePayload[messages.InputSnapshot](message.Envelope)
			if err != nil {
				log.Warn("Failed to decode input from %s: %v", message.ClientID, err)
				continue
			}
			ship, ok := gm.gameState.Ships[message.ClientID]
			if !ok {
				log.Trace("Ignoring input from %s without a ship", message.ClientID)
				continue
			}
			ship.ApplyInput(input)
		case messages.TypeStartWithDefault:
			gm.startShip(pilot, "", "")
		case messages.TypeStartWithPrompt:
			start, err := messages.DecodePayload[messages.StartWithPrompt](message.Envelope)
			if err != nil {
				log.Warn("Failed to decode prompt from %s: %v", message.ClientID, err)
				continue
			}
			gm.startPromptedShip(pilot, start.Prompt)
		default:
			log.Error("Unhandled message type: %s", message.Envelope.Type)
		}
	}
}

func (gm *GameManager) startPromptedShip(pilot *types.Pilot, prompt string) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		gm.sendToClient(pilot.ClientID, messages.TypeError, map[string]string{"message": messages.ErrEmptyPrompt.Error()})
		return
	}
	if pilot.QuotaRemaining <= 0 {
		gm.sendToClient(pilot.ClientID, messages.TypeError, map[string]string{"message": "ship quota exhausted"})
		gm.sendToClient(pilot.ClientID, messages.TypeShipQuota, pilot.QuotaMessage())
		return
	}

	pilot.QuotaRemaining--
	gm.sendToClient(pilot.ClientID, messages.TypeShipQuota, pilot.QuotaMessage())
	gm.startShip(pilot, ShipName(prompt), gm.shipImageURL(prompt))
}

// startShip spawns the ship of a pilot, or changes its appearance when it is
// already in the arena. An empty name keeps the current name.
func (gm *GameManager) startShip(pilot *types.Pilot, name, imageURL string) {
	if ship, ok := gm.gameState.Ships[pilot.ClientID]; ok {
		if name != "" {
			ship.Name = name
			ship.ShipImageURL = imageURL
		}
		return
	}

	x, y := gm.spawnPoint()
	ship := types.NewShipState(pilot.ClientID, x, y)
	ship.Name = name
	if ship.Name == "" {
		ship.Name = DefaultShipName(pilot.ClientID)
	}
	ship.ShipImageURL = imageURL
	gm.gameState.AddShip(ship)
	log.Info("Ship %s spawned for %s at (%.0f, %.0f)", ship.Name, pilot.ClientID, x, y)
}

func (gm *GameManager) shipImageURL(prompt string) string {
	return fmt.Sprintf("%s/ships/%s.png", gm.shipImageBaseURL, ShipSlug(prompt))
}

func (gm *GameManager) spawnPoint() (float64, float64) {
	margin := constants.ArenaWallThickness + constants.ShipSize
	x := margin + gm.rand.Float64()*(constants.ArenaWidth-2*margin)
	y := margin + gm.rand.Float64()*(constants.ArenaHeight-2*margin)
	return x, y
}

// updateServerObjects moves projectiles and ships, resolves hits and spawns new projectiles.
func (gm *GameManager) updateServerObjects(deltaTime float64) {
	for _, id := range sortedKeys(gm.gameState.Projectiles) {
		projectile := gm.gameState.Projectiles[id]
		if !projectile.Update(deltaTime) {
			gm.gameState.RemoveProjectile(id)
			continue
		}
		if ship, hit := projectileHit(gm.gameState, projectile); hit {
			gm.gameState.RemoveProjectile(id)
			gm.applyHit(projectile.OwnerID, ship)
		}
	}

	for _, clientID := range sortedKeys(gm.gameState.Ships) {
		ship := gm.gameState.Ships[clientID]
		ship.Update(deltaTime)
		if ship.WantsToFire() {
			position, velocity, rotation := ship.Fire()
			projectile := types.NewProjectileState(gm.newID(), clientID, position, velocity, rotation, gm.gameState.Timestamp)
			gm.gameState.AddProjectile(projectile)
		}
	}
}

func (gm *GameManager) applyHit(shooterID string, ship *types.ShipState) {
	log.Trace("Ship %s hit by %s", ship.ClientID, shooterID)
	if !ship.TakeDamage(constants.ProjectileDamage) {
		return
	}

	if shooter, ok := gm.gameState.Ships[shooterID]; ok {
		shooter.Kills++
		log.Debug("Ship %s destroyed by %s (%d kills)", ship.ClientID, shooterID, shooter.Kills)
	}
	ship.Respawn(gm.spawnPoint())
}

// broadcastGameState sends the game state to connected clients.
func (gm *GameManager) broadcastGameState() {
	gm.sendServerMessage(workers.ServerMessage{
		Type:    messages.TypeGameState,
		Message: gm.gameState.GameStateMessage(),
	})
}

func (gm *GameManager) broadcastScoreboard() {
	gm.sendServerMessage(workers.ServerMessage{
		Type:    messages.TypeScoreboard,
		Message: gm.gameState.ScoreboardMessage(),
	})
}

func (gm *GameManager) sendToClient(clientID string, t messages.Type, message interface{}) {
	gm.sendServerMessage(workers.ServerMessage{
		ClientID: clientID,
		Type:     t,
		Message:  message,
	})
}

// sendServerMessage never blocks the game loop: a message is dropped when the channel is full.
func (gm *GameManager) sendServerMessage(msg workers.ServerMessage) {
	select {
	case gm.serverMessageChan <- msg:
	default:
		log.Warn("Server message channel is full, dropping %s message", msg.Type)
	}
}

func (gm *GameManager) requestSaveScore(ship *types.ShipState) {
	if gm.saveScoreChan == nil {
		return
	}
	select {
	case gm.saveScoreChan <- workers.SaveScoreRequest{Timestamp: gm.gameState.Timestamp, Ship: ship.Copy()}:
	default:
		log.Warn("Save score channel is full, dropping score of %s", ship.ClientID)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
