package workers

import (
	"context"
	"fmt"

	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/messages"
)

// ServerMessage is a message produced by the game loop for delivery to clients.
type ServerMessage struct {
	// ClientID is the recipient. An empty ClientID broadcasts to every client.
	ClientID string
	Type     messages.Type
	Message  interface{}
}

// Sender delivers serialized messages to connected clients.
type Sender interface {
	SendToAll(ctx context.Context, b []byte)
	SendToClient(ctx context.Context, clientID string, b []byte) error
}

type ServerMessageWorker struct {
	sender            Sender
	serverMessageChan <-chan ServerMessage
}

type NewServerMessageWorkerOptions struct {
	Sender            Sender
	ServerMessageChan <-chan ServerMessage
}

// NewServerMessageWorker creates a new ServerMessageWorker.
// The worker serializes messages from the game loop and writes them
// to the clients so the game loop never waits on the network.
func NewServerMessageWorker(opts NewServerMessageWorkerOptions) *ServerMessageWorker {
	return &ServerMessageWorker{
		sender:            opts.Sender,
		serverMessageChan: opts.ServerMessageChan,
	}
}

func (w *ServerMessageWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-w.serverMessageChan:
			if err := w.handleServerMessage(ctx, msg); err != nil {
				log.Error("Failed to handle %s server message: %v", msg.Type, err)
			}
		}
	}
}

func (w *ServerMessageWorker) handleServerMessage(ctx context.Context, msg ServerMessage) error {
	switch msg.Type {
	case messages.TypeGameState, messages.TypeScoreboard, messages.TypeShipQuota, messages.TypeInfo, messages.TypeError:
	default:
		return fmt.Errorf("unknown server message type %q", msg.Type)
	}

	b, err := messages.Encode(msg.Type, msg.Message)
	if err != nil {
		return fmt.Errorf("failed to encode message: %v", err)
	}

	if msg.ClientID == "" {
		w.sender.SendToAll(ctx, b)
		return nil
	}
	return w.sender.SendToClient(ctx, msg.ClientID, b)
}
