package types

import (
	"sort"

	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/messages"
	"github.com/solarlune/resolv"
)

const (
	CollisionSpaceTagShip       string = "ship"
	CollisionSpaceTagProjectile string = "projectile"
	CollisionSpaceTagLevel      string = "level"
)

// Pilot is a connected client, with or without a ship in the arena.
type Pilot struct {
	ClientID string
	// QuotaRemaining is the number of prompted ships the pilot may still generate
	QuotaRemaining int
}

type GameState struct {
	// Timestamp is the time at which the game state was generated
	Timestamp int64
	// Pilots maps client IDs to connected clients
	Pilots map[string]*Pilot
	// Ships maps client IDs to the ships in the arena
	Ships map[string]*ShipState
	// Projectiles maps projectile IDs to live projectiles
	Projectiles map[string]*ProjectileState
	// CollisionSpace is a resolv.Space used for collision detection
	CollisionSpace *resolv.Space
}

func NewGameState(collisionSpace *resolv.Space) *GameState {
	return &GameState{
		Timestamp:      0,
		Pilots:         make(map[string]*Pilot),
		Ships:          make(map[string]*ShipState),
		Projectiles:    make(map[string]*ProjectileState),
		CollisionSpace: collisionSpace,
	}
}

// Copy returns a copy of the game state without collision objects
func (g *GameState) Copy() *GameState {
	newGameState := &GameState{
		Timestamp:   g.Timestamp,
		Pilots:      make(map[string]*Pilot, len(g.Pilots)),
		Ships:       make(map[string]*ShipState, len(g.Ships)),
		Projectiles: make(map[string]*ProjectileState, len(g.Projectiles)),
	}
	for id, pilot := range g.Pilots {
		copy := *pilot
		newGameState.Pilots[id] = &copy
	}
	for id, ship := range g.Ships {
		newGameState.Ships[id] = ship.Copy()
	}
	for id, projectile := range g.Projectiles {
		newGameState.Projectiles[id] = projectile.Copy()
	}
	return newGameState
}

func (g *GameState) AddShip(ship *ShipState) {
	if existing, ok := g.Ships[ship.ClientID]; ok {
		g.RemoveShip(existing.ClientID)
	}
	g.Ships[ship.ClientID] = ship
	if g.CollisionSpace != nil {
		g.CollisionSpace.Add(ship.Object)
	}
}

func (g *GameState) RemoveShip(clientID string) {
	ship, ok := g.Ships[clientID]
	if !ok {
		return
	}
	if g.CollisionSpace != nil && ship.Object != nil {
		g.CollisionSpace.Remove(ship.Object)
	}
	delete(g.Ships, clientID)
}

func (g *GameState) AddProjectile(projectile *ProjectileState) {
	g.Projectiles[projectile.ID] = projectile
	if g.CollisionSpace != nil {
		g.CollisionSpace.Add(projectile.Object)
	}
}

func (g *GameState) RemoveProjectile(id string) {
	projectile, ok := g.Projectiles[id]
	if !ok {
		return
	}
	if g.CollisionSpace != nil && projectile.Object != nil {
		g.CollisionSpace.Remove(projectile.Object)
	}
	delete(g.Projectiles, id)
}

// GameStateMessage returns the wire snapshot of every ship and projectile.
// Projectiles are ordered by spawn time.
func (g *GameState) GameStateMessage() *messages.GameState {
	ships := make(map[string]messages.ShipSnapshot, len(g.Ships))
	for id, ship := range g.Ships {
		ships[id] = ship.Snapshot()
	}
	projectiles := make([]messages.ProjectileSnapshot, 0, len(g.Projectiles))
	for _, projectile := range g.Projectiles {
		projectiles = append(projectiles, projectile.Snapshot())
	}
	sort.Slice(projectiles, func(i, j int) bool {
		if projectiles[i].CreatedAt != projectiles[j].CreatedAt {
			return projectiles[i].CreatedAt < projectiles[j].CreatedAt
		}
		return projectiles[i].ID < projectiles[j].ID
	})
	return &messages.GameState{
		Ships:       ships,
		Projectiles: projectiles,
	}
}

// ScoreboardMessage ranks ships by kills, ties broken by client ID.
func (g *GameState) ScoreboardMessage() *messages.Scoreboard {
	items := make([]messages.ScoreboardItem, 0, len(g.Ships))
	for id, ship := range g.Ships {
		items = append(items, messages.ScoreboardItem{
			ID:           id,
			Name:         ship.Name,
			Score:        float64(ship.Kills),
			ShipImageURL: ship.ShipImageURL,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ID < items[j].ID
	})
	return &messages.Scoreboard{
		Items: items,
		Count: len(items),
	}
}

// QuotaMessage returns the ship quota of a pilot.
func (p *Pilot) QuotaMessage() *messages.ShipQuota {
	return &messages.ShipQuota{
		Remaining: p.QuotaRemaining,
		Cap:       constants.ShipQuotaCap,
	}
}

// Overlaps reports whether the bounding box of a, moved by dx, dy, intersects b.
func Overlaps(a *resolv.Object, dx, dy float64, b *resolv.Object) bool {
	ax, ay := a.Position.X+dx, a.Position.Y+dy
	return ax < b.Position.X+b.Size.X && ax+a.Size.X > b.Position.X &&
		ay < b.Position.Y+b.Size.Y && ay+a.Size.Y > b.Position.Y
}
