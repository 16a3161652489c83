package constants

const (
	// ArenaWidth is the width of the playable area
	ArenaWidth float64 = 4096.0
	// ArenaHeight is the height of the playable area
	ArenaHeight float64 = 4096.0
	// ArenaWallThickness is the thickness of the arena walls
	ArenaWallThickness float64 = 32.0
	// ArenaCellSize is the cell size of the collision space
	ArenaCellSize int = 32

	// ShipSpeed is the forward speed of a ship at full thrust
	ShipSpeed float64 = 420.0
	// ShipReverseFactor scales ShipSpeed when reversing
	ShipReverseFactor float64 = 0.5
	// ShipRotationSpeed is in radians per second
	ShipRotationSpeed float64 = 3.5
	// ShipSize is the largest dimension of a rendered ship
	ShipSize float64 = 96.0
	// ShipHitboxSize is the side of the square ship hitbox
	ShipHitboxSize float64 = 64.0
	// ShipHealth is the health a ship spawns with
	ShipHealth float64 = 100.0
	// ShipFireCooldown is the time between two shots, in seconds
	ShipFireCooldown float64 = 0.25
	// ShipQuotaCap is the number of prompted ships a client may generate
	ShipQuotaCap int = 3
	// ShipNameMaxLength bounds names derived from prompts
	ShipNameMaxLength int = 24
	// JoystickDeadZone is the joystick magnitude under which the stick is ignored
	JoystickDeadZone float64 = 0.1

	// ProjectileSpeed is the speed of a projectile relative to the arena
	ProjectileSpeed float64 = 900.0
	// ProjectileSize is the side of the square projectile hitbox
	ProjectileSize float64 = 8.0
	// ProjectileTTL is how long a projectile lives, in seconds
	ProjectileTTL float64 = 3.0
	// ProjectileDamage is the health removed by a hit
	ProjectileDamage float64 = 10.0
)
