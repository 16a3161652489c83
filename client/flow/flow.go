// Package flow names the top level modes of the client.
package flow

type GameMode int

const (
	GameModeMenu GameMode = iota
	GameModePlay
	GameModeOver
	GameModeNetworkError
)

func (m GameMode) String() string {
	switch m {
	case GameModeMenu:
		return "Menu"
	case GameModePlay:
		return "Play"
	case GameModeOver:
		return "Over"
	case GameModeNetworkError:
		return "Network Error"
	}
	return "Unknown"
}

// ReturnsToMenu reports whether confirming on this mode goes back to the menu.
func (m GameMode) ReturnsToMenu() bool {
	return m == GameModeOver || m == GameModeNetworkError
}

// KeepsSession reports whether the current session stays open in this mode.
// A lost connection keeps the last game state on screen until the player leaves.
func (m GameMode) KeepsSession() bool {
	return m == GameModePlay || m == GameModeNetworkError
}
