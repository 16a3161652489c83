package state

import (
	"context"

	gametypes "github.com/cbodonnell/skirmish/pkg/game/types"
)

// Reader returns detached copies of the last published game state.
type Reader interface {
	Get(ctx context.Context) (*gametypes.GameState, error)
}

// StateManager publishes the game state of the game loop to other goroutines.
// Implementations must be thread-safe.
type StateManager interface {
	Reader
	// Set replaces the published state with a copy of gameState.
	Set(ctx context.Context, gameState *gametypes.GameState) error
}
