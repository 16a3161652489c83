package workers

import (
	"context"

	gametypes "github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/network"
	"github.com/cbodonnell/skirmish/pkg/queue"
)

type ConnectionEventWorker struct {
	clientEventChan  <-chan network.ClientEvent
	serverEventQueue queue.Queue[interface{}]
}

type NewConnectionEventWorkerOptions struct {
	ClientEventChan  <-chan network.ClientEvent
	ServerEventQueue queue.Queue[interface{}]
}

// NewConnectionEventWorker creates a new ConnectionEventWorker.
// The worker processes client events like connect and disconnect
// and writes server events to a queue for the game loop to process.
func NewConnectionEventWorker(opts NewConnectionEventWorkerOptions) *ConnectionEventWorker {
	return &ConnectionEventWorker{
		clientEventChan:  opts.ClientEventChan,
		serverEventQueue: opts.ServerEventQueue,
	}
}

func (w *ConnectionEventWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-w.clientEventChan:
			w.handleClientEvent(event)
		}
	}
}

func (w *ConnectionEventWorker) handleClientEvent(event network.ClientEvent) {
	var serverEvent interface{}
	switch event.Type {
	case network.ClientEventTypeConnect:
		serverEvent = &gametypes.ConnectPilotEvent{ClientID: event.ClientID}
	case network.ClientEventTypeDisconnect:
		serverEvent = &gametypes.DisconnectPilotEvent{ClientID: event.ClientID}
	default:
		log.Error("Unknown client event type: %v", event.Type)
		return
	}

	if err := w.serverEventQueue.Enqueue(serverEvent); err != nil {
		log.Error("Failed to enqueue %s event for client %s: %v", event.Type, event.ClientID, err)
	}
}
