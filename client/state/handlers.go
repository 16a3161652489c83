package state

import (
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/messages"
)

// RegisterHandlers routes every server message that carries state into s.
// info and error payloads are only logged.
func RegisterHandlers(r *messages.Router, s *Store) {
	logger := log.With("handlers")

	messages.On(r, func(m *messages.Connected) {
		if _, err := s.SetClientID(m.ID); err != nil {
			logger.Warn("Failed to set client id: %v", err)
		}
	})
	messages.On(r, func(m *messages.ShipQuota) {
		s.SetQuota(*m)
	})
	messages.On(r, func(m *messages.GameState) {
		s.ApplyGameState(m.Ships, m.Projectiles)
	})
	messages.On(r, func(m *messages.Scoreboard) {
		s.SetScoreboard(m.Items)
	})
	messages.On(r, func(m *messages.Info) {
		logger.Info("Server info: %s", m.Payload.Text())
	})
	messages.On(r, func(m *messages.Error) {
		logger.Warn("Server error: %s", m.Payload.Text())
	})
}
