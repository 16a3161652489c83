package messages

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cbodonnell/skirmish/pkg/kinematic"
)

// ErrEmptyPrompt is returned when a startWithPrompt message has no prompt text.
var ErrEmptyPrompt = errors.New("prompt is empty")

// InputSnapshot is the local input state published to the server.
// KeysDown is a set: sorted and without duplicates.
type InputSnapshot struct {
	KeysDown []string         `json:"keysDown"`
	Joystick kinematic.Vector `json:"joystick"`
}

// NewInputSnapshot normalizes keys into a sorted set and clamps the joystick to [-1, 1].
func NewInputSnapshot(keys []string, joystick kinematic.Vector) InputSnapshot {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		set[k] = struct{}{}
	}
	keysDown := make([]string, 0, len(set))
	for k := range set {
		keysDown = append(keysDown, k)
	}
	sort.Strings(keysDown)
	return InputSnapshot{
		KeysDown: keysDown,
		Joystick: joystick.Clamp(-1, 1),
	}
}

// IsDown reports whether key is in the snapshot.
func (s InputSnapshot) IsDown(key string) bool {
	i := sort.SearchStrings(s.KeysDown, key)
	return i < len(s.KeysDown) && s.KeysDown[i] == key
}

// StartWithPrompt asks the server to generate a ship from a text prompt.
type StartWithPrompt struct {
	Prompt string `json:"prompt"`
}

// Encode wraps payload in an envelope of type t. A nil payload is omitted.
func Encode(t Type, payload interface{}) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("trying to encode envelope with empty type")
	}
	env := Envelope{Type: t}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", t, err)
		}
		env.Payload = b
	}
	return json.Marshal(env)
}

// EncodeInputSnapshot serializes an inputSnapshot message.
func EncodeInputSnapshot(s InputSnapshot) ([]byte, error) {
	normalized := NewInputSnapshot(s.KeysDown, s.Joystick)
	return Encode(TypeInputSnapshot, normalized)
}

// DecodeInputSnapshot parses an inputSnapshot message, normalizing it the same way as NewInputSnapshot.
func DecodeInputSnapshot(raw []byte) (InputSnapshot, error) {
	env, err := DecodeEnvelope(raw)
	if err != nil {
		return InputSnapshot{}, err
	}
	if env.Type != TypeInputSnapshot {
		return InputSnapshot{}, fmt.Errorf("%w: expected %s, got %q", ErrUnknownType, TypeInputSnapshot, env.Type)
	}
	s, err := DecodePayload[InputSnapshot](env)
	if err != nil {
		return InputSnapshot{}, err
	}
	return NewInputSnapshot(s.KeysDown, s.Joystick), nil
}

// EncodeStartWithDefault serializes a startWithDefault message. It carries no payload.
func EncodeStartWithDefault() ([]byte, error) {
	return Encode(TypeStartWithDefault, nil)
}

// EncodeStartWithPrompt serializes a startWithPrompt message with a trimmed prompt.
func EncodeStartWithPrompt(prompt string) ([]byte, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	return Encode(TypeStartWithPrompt, StartWithPrompt{Prompt: prompt})
}
