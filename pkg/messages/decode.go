package messages

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidEnvelope is returned when a frame is not a JSON object with a string type.
	ErrInvalidEnvelope = errors.New("invalid envelope")
	// ErrUnknownType is returned when the envelope type is not a known server message.
	ErrUnknownType = errors.New("unknown message type")
	// ErrInvalidPayload is returned when a payload violates the schema of its type.
	ErrInvalidPayload = errors.New("invalid payload")
)

type payloadDecoder func(payload json.RawMessage) (Message, error)

var decoders = map[Type]payloadDecoder{
	TypeConnected:  decodeConnected,
	TypeInfo:       decodeInfo,
	TypeShipQuota:  decodeShipQuota,
	TypeGameState:  decodeGameState,
	TypeScoreboard: decodeScoreboard,
	TypeError:      decodeError,
}

// Decode parses a raw server frame into a validated Message.
func Decode(raw []byte) (Message, error) {
	env, err := DecodeEnvelope(raw)
	if err != nil {
		return nil, err
	}

	decode, ok := decoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	msg, err := decode(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
	}
	return msg, nil
}

// DecodeEnvelope parses the outer {type, payload} object without looking at the payload.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Envelope{}, fmt.Errorf("%w: empty frame", ErrInvalidEnvelope)
	}
	var env struct {
		Type    *string         `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if env.Type == nil {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrInvalidEnvelope)
	}
	return Envelope{Type: Type(*env.Type), Payload: env.Payload}, nil
}

// DecodePayload unmarshals the payload of env into a T.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if isAbsent(env.Payload) {
		return out, fmt.Errorf("%w: empty payload for type %q", ErrInvalidPayload, env.Type)
	}
	if err := json.Unmarshal(env.Payload, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return out, nil
}

func isAbsent(payload json.RawMessage) bool {
	trimmed := bytes.TrimSpace(payload)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// unmarshalObject decodes a required object payload.
func unmarshalObject(payload json.RawMessage, out interface{}) error {
	if isAbsent(payload) {
		return fmt.Errorf("%w: payload is required", ErrInvalidPayload)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func missing(field string) error {
	return fmt.Errorf("%w: %s is required", ErrInvalidPayload, field)
}

func requireNumber(field string, v *float64) (float64, error) {
	if v == nil {
		return 0, missing(field)
	}
	return *v, nil
}

func requireInt(field string, v *float64) (int, error) {
	n, err := requireNumber(field, v)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidPayload, field)
	}
	if math.Abs(n) > maxSafeInteger {
		return 0, fmt.Errorf("%w: %s is out of range", ErrInvalidPayload, field)
	}
	return int(n), nil
}

// maxSafeInteger is the largest integer a JSON number carries exactly.
const maxSafeInteger = 1<<53 - 1

func requireString(field string, v *string) (string, error) {
	if v == nil {
		return "", missing(field)
	}
	return *v, nil
}

type wireVector struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (w *wireVector) vector(field string) (x, y float64, err error) {
	if w == nil {
		return 0, 0, missing(field)
	}
	if x, err = requireNumber(field+".x", w.X); err != nil {
		return 0, 0, err
	}
	if y, err = requireNumber(field+".y", w.Y); err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func decodeConnected(payload json.RawMessage) (Message, error) {
	var wire struct {
		ID *string `json:"id"`
	}
	if err := unmarshalObject(payload, &wire); err != nil {
		return nil, err
	}
	id, err := requireString("id", wire.ID)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: id must not be empty", ErrInvalidPayload)
	}
	return &Connected{ID: id}, nil
}

func decodeInfo(payload json.RawMessage) (Message, error) {
	return &Info{Payload: NewValue(payload)}, nil
}

func decodeError(payload json.RawMessage) (Message, error) {
	return &Error{Payload: NewValue(payload)}, nil
}

func decodeShipQuota(payload json.RawMessage) (Message, error) {
	var wire struct {
		Remaining *float64 `json:"remaining"`
		Cap       *float64 `json:"cap"`
	}
	if err := unmarshalObject(payload, &wire); err != nil {
		return nil, err
	}
	remaining, err := requireInt("remaining", wire.Remaining)
	if err != nil {
		return nil, err
	}
	if remaining < 0 {
		return nil, fmt.Errorf("%w: remaining must not be negative", ErrInvalidPayload)
	}
	capacity, err := requireInt("cap", wire.Cap)
	if err != nil {
		return nil, err
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: cap must be positive", ErrInvalidPayload)
	}
	return &ShipQuota{Remaining: remaining, Cap: capacity}, nil
}

type wireShip struct {
	Physics *struct {
		Position *wireVector `json:"position"`
		Rotation *float64    `json:"rotation"`
	} `json:"physics"`
	Appearance *struct {
		ShipImageURL *string `json:"shipImageUrl"`
	} `json:"appearance"`
	Health *float64 `json:"health"`
	Kills  *float64 `json:"kills"`
	Name   *string  `json:"name"`
}

func (w *wireShip) snapshot(field string) (ShipSnapshot, error) {
	var snap ShipSnapshot
	if w.Physics == nil {
		return snap, missing(field + ".physics")
	}
	x, y, err := w.Physics.Position.vector(field + ".physics.position")
	if err != nil {
		return snap, err
	}
	snap.Physics.Position.X, snap.Physics.Position.Y = x, y
	if snap.Physics.Rotation, err = requireNumber(field+".physics.rotation", w.Physics.Rotation); err != nil {
		return snap, err
	}
	if w.Appearance != nil && w.Appearance.ShipImageURL != nil {
		snap.Appearance.ShipImageURL = *w.Appearance.ShipImageURL
	}
	if snap.Health, err = requireNumber(field+".health", w.Health); err != nil {
		return snap, err
	}
	kills, err := requireNumber(field+".kills", w.Kills)
	if err != nil {
		return snap, err
	}
	snap.Kills = int(math.Max(0, math.Floor(kills)))
	if w.Name != nil {
		snap.Name = *w.Name
	}
	return snap, nil
}

type wireProjectile struct {
	ID        *string     `json:"id"`
	OwnerID   *string     `json:"ownerId"`
	Position  *wireVector `json:"position"`
	Velocity  *wireVector `json:"velocity"`
	Rotation  *float64    `json:"rotation"`
	CreatedAt *float64    `json:"createdAt"`
}

func (w *wireProjectile) snapshot(field string) (ProjectileSnapshot, error) {
	var snap ProjectileSnapshot
	var err error
	if snap.ID, err = requireString(field+".id", w.ID); err != nil {
		return snap, err
	}
	if snap.OwnerID, err = requireString(field+".ownerId", w.OwnerID); err != nil {
		return snap, err
	}
	if snap.Position.X, snap.Position.Y, err = w.Position.vector(field + ".position"); err != nil {
		return snap, err
	}
	if snap.Velocity.X, snap.Velocity.Y, err = w.Velocity.vector(field + ".velocity"); err != nil {
		return snap, err
	}
	if snap.Rotation, err = requireNumber(field+".rotation", w.Rotation); err != nil {
		return snap, err
	}
	createdAt, err := requireNumber(field+".createdAt", w.CreatedAt)
	if err != nil {
		return snap, err
	}
	snap.CreatedAt = int64(createdAt)
	return snap, nil
}

func decodeGameState(payload json.RawMessage) (Message, error) {
	var wire struct {
		Ships       map[string]*wireShip `json:"ships"`
		Projectiles []*wireProjectile    `json:"projectiles"`
	}
	if err := unmarshalObject(payload, &wire); err != nil {
		return nil, err
	}
	if wire.Ships == nil {
		return nil, missing("ships")
	}

	state := &GameState{
		Ships:       make(map[string]ShipSnapshot, len(wire.Ships)),
		Projectiles: make([]ProjectileSnapshot, 0, len(wire.Projectiles)),
	}
	for id, ship := range wire.Ships {
		field := fmt.Sprintf("ships[%q]", id)
		if ship == nil {
			return nil, missing(field)
		}
		snap, err := ship.snapshot(field)
		if err != nil {
			return nil, err
		}
		state.Ships[id] = snap
	}
	for i, projectile := range wire.Projectiles {
		field := fmt.Sprintf("projectiles[%d]", i)
		if projectile == nil {
			return nil, missing(field)
		}
		snap, err := projectile.snapshot(field)
		if err != nil {
			return nil, err
		}
		state.Projectiles = append(state.Projectiles, snap)
	}
	return state, nil
}

func decodeScoreboard(payload json.RawMessage) (Message, error) {
	var wire struct {
		Items []*struct {
			ID           *string  `json:"id"`
			Name         *string  `json:"name"`
			Score        *float64 `json:"score"`
			ShipImageURL *string  `json:"shipImageUrl"`
		} `json:"items"`
		Count *float64 `json:"count"`
	}
	if err := unmarshalObject(payload, &wire); err != nil {
		return nil, err
	}
	if wire.Items == nil {
		return nil, missing("items")
	}

	board := &Scoreboard{Items: make([]ScoreboardItem, 0, len(wire.Items))}
	for i, item := range wire.Items {
		field := fmt.Sprintf("items[%d]", i)
		if item == nil {
			return nil, missing(field)
		}
		var entry ScoreboardItem
		var err error
		if entry.ID, err = requireString(field+".id", item.ID); err != nil {
			return nil, err
		}
		if entry.Name, err = requireString(field+".name", item.Name); err != nil {
			return nil, err
		}
		if entry.Score, err = requireNumber(field+".score", item.Score); err != nil {
			return nil, err
		}
		if item.ShipImageURL != nil {
			entry.ShipImageURL = *item.ShipImageURL
		}
		board.Items = append(board.Items, entry)
	}
	board.Count = len(board.Items)
	if wire.Count != nil {
		count, err := requireInt("count", wire.Count)
		if err != nil {
			return nil, err
		}
		if count < 0 {
			return nil, fmt.Errorf("%w: count must not be negative", ErrInvalidPayload)
		}
		board.Count = count
	}
	return board, nil
}
