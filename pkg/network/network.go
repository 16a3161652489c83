package network

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/messages"
	"github.com/cbodonnell/skirmish/pkg/queue"
	"nhooyr.io/websocket"
)

// ClientMessage is a message received from a connected client.
type ClientMessage struct {
	ClientID string
	Envelope messages.Envelope
}

type NetworkManager struct {
	ClientManager *ClientManager
	MessageQueue  queue.Queue[*ClientMessage]
	WSServer      *WSServer
}

type NewNetworkManagerOptions struct {
	ClientManager *ClientManager
	MessageQueue  queue.Queue[*ClientMessage]
	WSPort        int
	WSServerTLS   *TLSConfig
}

func NewNetworkManager(opts NewNetworkManagerOptions) *NetworkManager {
	return &NetworkManager{
		ClientManager: opts.ClientManager,
		MessageQueue:  opts.MessageQueue,
		WSServer: NewWSServer(NewWSServerOptions{
			Port: opts.WSPort,
			TLS:  opts.WSServerTLS,
		}),
	}
}

func (n *NetworkManager) Start(ctx context.Context) {
	go n.WSServer.Start(ctx, n.handleConnect, n.handleDisconnect, n.handleMessage)
}

// Handler serves the websocket endpoint without listening, for embedding in another server.
func (n *NetworkManager) Handler(ctx context.Context) http.Handler {
	return n.WSServer.Handler(ctx, n.handleConnect, n.handleDisconnect, n.handleMessage)
}

// handleConnect assigns a client ID and sends it to the client before
// the game learns about the connection.
func (n *NetworkManager) handleConnect(ctx context.Context, conn *websocket.Conn) (string, error) {
	clientID, err := n.ClientManager.ConnectClient(conn, func(clientID string) error {
		b, err := messages.Encode(messages.TypeConnected, &messages.Connected{ID: clientID})
		if err != nil {
			return fmt.Errorf("failed to encode connected message: %v", err)
		}
		return WriteMessageToWS(ctx, conn, b)
	})
	if err != nil {
		return "", err
	}
	log.Info("Client %s connected", clientID)
	return clientID, nil
}

func (n *NetworkManager) handleDisconnect(clientID string) {
	n.ClientManager.DisconnectClient(clientID)
	log.Info("Client %s disconnected", clientID)
}

func (n *NetworkManager) handleMessage(ctx context.Context, clientID string, raw []byte) {
	env, err := messages.DecodeEnvelope(raw)
	if err != nil {
		log.Warn("Dropping message from %s: %v", clientID, err)
		return
	}

	switch env.Type {
	case messages.TypeInputSnapshot, messages.TypeStartWithDefault, messages.TypeStartWithPrompt:
		if err := n.MessageQueue.Enqueue(&ClientMessage{ClientID: clientID, Envelope: env}); err != nil {
			log.Error("Failed to enqueue message from %s: %v", clientID, err)
		}
	default:
		log.Warn("Dropping message of type %q from %s", env.Type, clientID)
	}
}

// SendToAll writes b to every connected client.
func (n *NetworkManager) SendToAll(ctx context.Context, b []byte) {
	for _, client := range n.ClientManager.GetClients() {
		if err := WriteMessageToWS(ctx, client.Conn, b); err != nil {
			log.Error("Failed to send message to client %s: %v", client.ID, err)
		}
	}
}

// SendToClient writes b to a single client.
func (n *NetworkManager) SendToClient(ctx context.Context, clientID string, b []byte) error {
	client, err := n.ClientManager.GetClient(clientID)
	if err != nil {
		return fmt.Errorf("failed to get client %s: %v", clientID, err)
	}
	if err := WriteMessageToWS(ctx, client.Conn, b); err != nil {
		return fmt.Errorf("failed to send message to client %s: %v", clientID, err)
	}
	return nil
}
