package game

import (
	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/solarlune/resolv"
)

// NewCollisionSpace creates the arena with a wall on each side.
func NewCollisionSpace() *resolv.Space {
	w, h, t := constants.ArenaWidth, constants.ArenaHeight, constants.ArenaWallThickness
	cell := constants.ArenaCellSize
	space := resolv.NewSpace(int(w), int(h), cell, cell)
	space.Add(
		resolv.NewObject(0, 0, w, t, types.CollisionSpaceTagLevel),
		resolv.NewObject(0, h-t, w, t, types.CollisionSpaceTagLevel),
		resolv.NewObject(0, t, t, h-2*t, types.CollisionSpaceTagLevel),
		resolv.NewObject(w-t, t, t, h-2*t, types.CollisionSpaceTagLevel),
	)
	return space
}

// projectileHit returns the ship hit by a projectile, ignoring its owner.
func projectileHit(gameState *types.GameState, projectile *types.ProjectileState) (*types.ShipState, bool) {
	collision := projectile.Object.Check(0, 0, types.CollisionSpaceTagShip)
	if collision == nil {
		return nil, false
	}
	for _, object := range collision.Objects {
		clientID, ok := object.Data.(string)
		if !ok || clientID == projectile.OwnerID {
			continue
		}
		ship, ok := gameState.Ships[clientID]
		if !ok || !types.Overlaps(projectile.Object, 0, 0, object) {
			continue
		}
		return ship, true
	}
	return nil, false
}
