package state

import (
	"context"
	"fmt"
	"sync"

	gametypes "github.com/cbodonnell/skirmish/pkg/game/types"
)

// InMemoryStateManager keeps a detached copy of the game state for readers
// outside of the game loop.
type InMemoryStateManager struct {
	lock      sync.RWMutex
	gameState *gametypes.GameState
}

func NewInMemoryStateManager() *InMemoryStateManager {
	return &InMemoryStateManager{
		gameState: gametypes.NewGameState(nil),
	}
}

func (m *InMemoryStateManager) Get(ctx context.Context) (*gametypes.GameState, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.gameState.Copy(), nil
}

func (m *InMemoryStateManager) Set(ctx context.Context, gameState *gametypes.GameState) error {
	if gameState == nil {
		return fmt.Errorf("game state is nil")
	}

	copy := gameState.Copy()
	m.lock.Lock()
	defer m.lock.Unlock()
	m.gameState = copy
	return nil
}
