package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGameMode(t *testing.T) {
	tests := []struct {
		mode          GameMode
		name          string
		returnsToMenu bool
		keepsSession  bool
	}{
		{mode: GameModeMenu, name: "Menu"},
		{mode: GameModePlay, name: "Play", keepsSession: true},
		{mode: GameModeOver, name: "Over", returnsToMenu: true},
		{mode: GameModeNetworkError, name: "Network Error", returnsToMenu: true, keepsSession: true},
		{mode: GameMode(42), name: "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.mode.String())
			assert.Equal(t, tt.returnsToMenu, tt.mode.ReturnsToMenu())
			assert.Equal(t, tt.keepsSession, tt.mode.KeepsSession())
		})
	}
}
