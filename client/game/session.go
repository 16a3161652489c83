package game

import (
	"context"
	"fmt"

	"github.com/cbodonnell/skirmish/client/network"
	"github.com/cbodonnell/skirmish/client/state"
)

// Session is one connection to the server with its own store.
// The server assigns a new client id per connection, so a store never
// outlives its session.
type Session struct {
	Store          *state.Store
	NetworkManager *network.NetworkManager
}

type SessionOptions struct {
	ServerURL   string
	PublishRate int
	// ShipImageURL is prefetched and drawn for the local ship until the
	// server sends its appearance.
	ShipImageURL string
}

// StartSession connects a new session to the server.
func StartSession(ctx context.Context, opts SessionOptions) (*Session, error) {
	store := state.New()
	if opts.ShipImageURL != "" {
		store.SetLocalShipImageURL(opts.ShipImageURL)
	}
	networkManager, err := network.NewNetworkManager(network.NewNetworkManagerOptions{
		ServerURL:   opts.ServerURL,
		Store:       store,
		PublishRate: opts.PublishRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create network manager: %v", err)
	}
	if err := networkManager.Start(ctx); err != nil {
		networkManager.Close()
		return nil, fmt.Errorf("failed to start network manager: %w", err)
	}
	return &Session{
		Store:          store,
		NetworkManager: networkManager,
	}, nil
}

// Close disconnects the session. The store keeps its last contents.
func (s *Session) Close() error {
	return s.NetworkManager.Close()
}
