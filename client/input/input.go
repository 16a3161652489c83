package input

import (
	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/cbodonnell/skirmish/pkg/kinematic"
	"github.com/cbodonnell/skirmish/pkg/messages"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// keyBindings maps ebiten keys to the key names sent to the server.
var keyBindings = []struct {
	key  ebiten.Key
	name string
}{
	{ebiten.KeyW, types.KeyForward},
	{ebiten.KeyS, types.KeyBackward},
	{ebiten.KeyA, types.KeyLeft},
	{ebiten.KeyD, types.KeyRight},
	{ebiten.KeyArrowUp, types.KeyArrowUp},
	{ebiten.KeyArrowDown, types.KeyArrowDown},
	{ebiten.KeyArrowLeft, types.KeyArrowLeft},
	{ebiten.KeyArrowRight, types.KeyArrowRight},
	{ebiten.KeySpace, types.KeyFire},
}

// Sample reads the keyboard and the first gamepad into an input snapshot.
func Sample() messages.InputSnapshot {
	keys := make([]string, 0, len(keyBindings))
	for _, b := range keyBindings {
		if ebiten.IsKeyPressed(b.key) {
			keys = append(keys, b.name)
		}
	}

	var stick kinematic.Vector
	for _, g := range ebiten.AppendGamepadIDs(nil) {
		if ebiten.IsStandardGamepadLayoutAvailable(g) {
			stick.X = ebiten.StandardGamepadAxisValue(g, ebiten.StandardGamepadAxisLeftStickHorizontal)
			stick.Y = ebiten.StandardGamepadAxisValue(g, ebiten.StandardGamepadAxisLeftStickVertical)
			if ebiten.IsStandardGamepadButtonPressed(g, ebiten.StandardGamepadButtonRightBottom) {
				keys = append(keys, types.KeyFire)
			}
		} else {
			stick.X = ebiten.GamepadAxisValue(g, 0)
			stick.Y = ebiten.GamepadAxisValue(g, 1)
			if ebiten.IsGamepadButtonPressed(g, ebiten.GamepadButton0) {
				keys = append(keys, types.KeyFire)
			}
		}
		break
	}

	return messages.NewInputSnapshot(keys, stick)
}

// IsPositiveJustPressed returns a boolean value indicating whether the generic positive input is just pressed.
// This is used to handle both keyboard and touch inputs.
func IsPositiveJustPressed() bool {
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		return true
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return true
	}
	touchIDs := inpututil.AppendJustPressedTouchIDs(nil)
	if len(touchIDs) > 0 {
		return true
	}
	gamepadIDs := ebiten.AppendGamepadIDs(nil)
	for _, g := range gamepadIDs {
		if ebiten.IsStandardGamepadLayoutAvailable(g) {
			if inpututil.IsStandardGamepadButtonJustPressed(g, ebiten.StandardGamepadButtonRightBottom) {
				return true
			}
		} else if inpututil.IsGamepadButtonJustPressed(g, ebiten.GamepadButton0) {
			return true
		}
	}
	return false
}

// IsNegativeJustPressed returns a boolean value indicating whether the generic negative input is just pressed.
func IsNegativeJustPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape)
}

// IsDebugJustPressed toggles the debug overlay.
func IsDebugJustPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyF3)
}
