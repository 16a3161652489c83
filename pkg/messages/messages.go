package messages

import (
	"encoding/json"

	"github.com/cbodonnell/skirmish/pkg/kinematic"
)

// Type discriminates the payload of an Envelope.
type Type string

// Server message types
const (
	TypeConnected  Type = "connected"
	TypeInfo       Type = "info"
	TypeShipQuota  Type = "shipQuota"
	TypeGameState  Type = "gameState"
	TypeScoreboard Type = "scoreboard"
	TypeError      Type = "error"
)

// Client message types
const (
	TypeInputSnapshot    Type = "inputSnapshot"
	TypeStartWithDefault Type = "startWithDefault"
	TypeStartWithPrompt  Type = "startWithPrompt"
)

// Envelope represents a generic message for serialization/deserialization
type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message is a decoded and validated server message.
type Message interface {
	MessageType() Type
}

// Connected is sent once by the server after the connection is accepted.
type Connected struct {
	ID string `json:"id"`
}

func (*Connected) MessageType() Type { return TypeConnected }

// Info carries an informational payload of unspecified shape.
type Info struct {
	Payload Value
}

func (*Info) MessageType() Type { return TypeInfo }

// ShipQuota reports how many ship generations remain for the caller.
type ShipQuota struct {
	Remaining int `json:"remaining"`
	Cap       int `json:"cap"`
}

func (*ShipQuota) MessageType() Type { return TypeShipQuota }

// GameState is a whole-world snapshot. It replaces both the ship and the
// projectile slices of the client state.
type GameState struct {
	Ships       map[string]ShipSnapshot `json:"ships"`
	Projectiles []ProjectileSnapshot    `json:"projectiles"`
}

func (*GameState) MessageType() Type { return TypeGameState }

// Scoreboard is the server ranking, in server order.
type Scoreboard struct {
	Items []ScoreboardItem `json:"items"`
	Count int              `json:"count"`
}

func (*Scoreboard) MessageType() Type { return TypeScoreboard }

// Error carries a server error payload of unspecified shape.
type Error struct {
	Payload Value
}

func (*Error) MessageType() Type { return TypeError }

type ShipSnapshot struct {
	Physics    ShipPhysics    `json:"physics"`
	Appearance ShipAppearance `json:"appearance"`
	// Health is a percentage, nominally in [0, 100].
	Health float64 `json:"health"`
	// Kills is never negative.
	Kills int    `json:"kills"`
	Name  string `json:"name"`
}

type ShipPhysics struct {
	Position kinematic.Vector `json:"position"`
	// Rotation is in radians.
	Rotation float64 `json:"rotation"`
}

type ShipAppearance struct {
	ShipImageURL string `json:"shipImageUrl,omitempty"`
}

type ProjectileSnapshot struct {
	ID       string           `json:"id"`
	OwnerID  string           `json:"ownerId"`
	Position kinematic.Vector `json:"position"`
	Velocity kinematic.Vector `json:"velocity"`
	Rotation float64          `json:"rotation"`
	// CreatedAt is the server spawn time in epoch milliseconds.
	CreatedAt int64 `json:"createdAt"`
}

type ScoreboardItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Score        float64 `json:"score"`
	ShipImageURL string  `json:"shipImageUrl,omitempty"`
}
