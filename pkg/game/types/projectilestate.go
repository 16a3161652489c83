package types

import (
	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/kinematic"
	"github.com/cbodonnell/skirmish/pkg/messages"
	"github.com/solarlune/resolv"
)

type ProjectileState struct {
	ID       string
	OwnerID  string
	Position kinematic.Vector
	Velocity kinematic.Vector
	Rotation float64
	// CreatedAt is the spawn time in epoch milliseconds
	CreatedAt int64
	Object    *resolv.Object

	ttl float64
}

func NewProjectileState(id, ownerID string, position, velocity kinematic.Vector, rotation float64, createdAt int64) *ProjectileState {
	half := constants.ProjectileSize / 2
	object := resolv.NewObject(position.X-half, position.Y-half, constants.ProjectileSize, constants.ProjectileSize, CollisionSpaceTagProjectile)
	object.Data = id
	return &ProjectileState{
		ID:        id,
		OwnerID:   ownerID,
		Position:  position,
		Velocity:  velocity,
		Rotation:  rotation,
		CreatedAt: createdAt,
		Object:    object,
		ttl:       constants.ProjectileTTL,
	}
}

// Update moves the projectile and reports whether it is still alive.
// A projectile dies when its time to live runs out or it reaches a wall.
func (p *ProjectileState) Update(deltaTime float64) bool {
	p.ttl -= deltaTime
	if p.ttl <= 0 {
		return false
	}

	d := kinematic.Displacement(p.Velocity, deltaTime)
	if collision := p.Object.Check(d.X, d.Y, CollisionSpaceTagLevel); collision != nil {
		for _, wall := range collision.Objects {
			if Overlaps(p.Object, d.X, d.Y, wall) {
				return false
			}
		}
	}

	p.Position = p.Position.Add(d)
	half := constants.ProjectileSize / 2
	p.Object.Position.X = p.Position.X - half
	p.Object.Position.Y = p.Position.Y - half
	p.Object.Update()
	return true
}

func (p *ProjectileState) TTL() float64 {
	return p.ttl
}

// Snapshot returns the wire representation of the projectile.
func (p *ProjectileState) Snapshot() messages.ProjectileSnapshot {
	return messages.ProjectileSnapshot{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Position:  p.Position,
		Velocity:  p.Velocity,
		Rotation:  p.Rotation,
		CreatedAt: p.CreatedAt,
	}
}

func (p *ProjectileState) Copy() *ProjectileState {
	copy := *p
	copy.Object = nil
	return &copy
}
