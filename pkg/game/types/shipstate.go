package types

import (
	"math"

	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/kinematic"
	"github.com/cbodonnell/skirmish/pkg/messages"
	"github.com/solarlune/resolv"
)

// Input names understood by the server
const (
	KeyForward    = "W"
	KeyBackward   = "S"
	KeyLeft       = "A"
	KeyRight      = "D"
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyFire       = "SPACE"
)

type ShipState struct {
	ClientID     string
	Name         string
	ShipImageURL string
	Position     kinematic.Vector
	Rotation     float64
	Velocity     kinematic.Vector
	Health       float64
	Kills        int
	Input        messages.InputSnapshot
	Object       *resolv.Object

	fireCooldown float64
}

// NewShipState creates a ship centered on x, y with full health.
func NewShipState(clientID string, x, y float64) *ShipState {
	half := constants.ShipHitboxSize / 2
	object := resolv.NewObject(x-half, y-half, constants.ShipHitboxSize, constants.ShipHitboxSize, CollisionSpaceTagShip)
	object.Data = clientID
	return &ShipState{
		ClientID: clientID,
		Position: kinematic.Vector{X: x, Y: y},
		Health:   constants.ShipHealth,
		Input:    messages.NewInputSnapshot(nil, kinematic.Vector{}),
		Object:   object,
	}
}

// Forward returns the unit vector the nose of the ship points to.
// A rotation of zero points up.
func Forward(rotation float64) kinematic.Vector {
	return kinematic.Vector{X: math.Sin(rotation), Y: -math.Cos(rotation)}
}

// ApplyInput records the latest input of the client.
func (s *ShipState) ApplyInput(input messages.InputSnapshot) {
	s.Input = messages.NewInputSnapshot(input.KeysDown, input.Joystick)
}

func (s *ShipState) isDown(keys ...string) bool {
	for _, k := range keys {
		if s.Input.IsDown(k) {
			return true
		}
	}
	return false
}

// Update moves the ship according to its input and the time passed
func (s *ShipState) Update(deltaTime float64) {
	speed := 0.0
	stick := s.Input.Joystick
	if stick.Magnitude() > constants.JoystickDeadZone {
		s.Rotation = math.Atan2(stick.X, -stick.Y)
		speed = math.Min(stick.Magnitude(), 1) * constants.ShipSpeed
	} else {
		if s.isDown(KeyLeft, KeyArrowLeft) {
			s.Rotation -= constants.ShipRotationSpeed * deltaTime
		}
		if s.isDown(KeyRight, KeyArrowRight) {
			s.Rotation += constants.ShipRotationSpeed * deltaTime
		}
		if s.isDown(KeyForward, KeyArrowUp) {
			speed += constants.ShipSpeed
		}
		if s.isDown(KeyBackward, KeyArrowDown) {
			speed -= constants.ShipSpeed * constants.ShipReverseFactor
		}
	}
	s.Rotation = normalizeAngle(s.Rotation)
	s.Velocity = Forward(s.Rotation).Scale(speed)

	d := kinematic.Displacement(s.Velocity, deltaTime)
	dx, dy := d.X, d.Y

	// Check for collisions with the arena walls
	if dx != 0 {
		if collision := s.Object.Check(dx, 0, CollisionSpaceTagLevel); collision != nil {
			if contact := collision.ContactWithObject(collision.Objects[0]).X; math.Abs(contact) < math.Abs(dx) {
				dx = contact
				s.Velocity.X = 0
			}
		}
	}
	if dy != 0 {
		if collision := s.Object.Check(0, dy, CollisionSpaceTagLevel); collision != nil {
			if contact := collision.ContactWithObject(collision.Objects[0]).Y; math.Abs(contact) < math.Abs(dy) {
				dy = contact
				s.Velocity.Y = 0
			}
		}
	}

	s.Position.X += dx
	s.Position.Y += dy
	s.syncObject()

	if s.fireCooldown > 0 {
		s.fireCooldown -= deltaTime
	}
}

// WantsToFire reports whether the fire key is held and the cooldown elapsed.
func (s *ShipState) WantsToFire() bool {
	return s.Input.IsDown(KeyFire) && s.fireCooldown <= 0
}

// Fire resets the cooldown and returns the spawn point, velocity and rotation of a projectile.
func (s *ShipState) Fire() (position, velocity kinematic.Vector, rotation float64) {
	s.fireCooldown = constants.ShipFireCooldown
	forward := Forward(s.Rotation)
	position = s.Position.Add(forward.Scale(constants.ShipSize / 2))
	velocity = forward.Scale(constants.ProjectileSpeed)
	return position, velocity, s.Rotation
}

// TakeDamage removes health and reports whether the ship was destroyed.
func (s *ShipState) TakeDamage(damage float64) bool {
	s.Health = kinematic.Clamp(s.Health-damage, 0, constants.ShipHealth)
	return s.Health <= 0
}

// Respawn restores health and moves the ship to x, y. Kills are kept.
func (s *ShipState) Respawn(x, y float64) {
	s.Health = constants.ShipHealth
	s.Position = kinematic.Vector{X: x, Y: y}
	s.Velocity = kinematic.Vector{}
	s.fireCooldown = 0
	s.syncObject()
}

func (s *ShipState) syncObject() {
	half := constants.ShipHitboxSize / 2
	s.Object.Position.X = s.Position.X - half
	s.Object.Position.Y = s.Position.Y - half
	s.Object.Update()
}

// Snapshot returns the wire representation of the ship.
func (s *ShipState) Snapshot() messages.ShipSnapshot {
	return messages.ShipSnapshot{
		Physics: messages.ShipPhysics{
			Position: s.Position,
			Rotation: s.Rotation,
		},
		Appearance: messages.ShipAppearance{ShipImageURL: s.ShipImageURL},
		Health:     s.Health,
		Kills:      s.Kills,
		Name:       s.Name,
	}
}

// Copy returns a copy of the ship state without the collision object
func (s *ShipState) Copy() *ShipState {
	copy := *s
	copy.Object = nil
	copy.Input = messages.NewInputSnapshot(s.Input.KeysDown, s.Input.Joystick)
	return &copy
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
