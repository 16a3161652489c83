package network

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
)

const (
	// ClientEventChannelSize represents the size of the client event channel
	ClientEventChannelSize = 1024
)

// Client represents a connected client
type Client struct {
	ID          string
	Conn        *websocket.Conn
	ConnectedAt time.Time
}

// ClientEvent represents an event that happened to a client
type ClientEvent struct {
	ClientID string
	Type     ClientEventType
}

// ClientEventType represents the type of a client event
type ClientEventType int

const (
	ClientEventTypeConnect ClientEventType = iota
	ClientEventTypeDisconnect
)

func (t ClientEventType) String() string {
	switch t {
	case ClientEventTypeConnect:
		return "connect"
	case ClientEventTypeDisconnect:
		return "disconnect"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// ClientManager manages connected clients
type ClientManager struct {
	clients         map[string]*Client
	clientsLock     sync.RWMutex
	clientEventChan chan ClientEvent
	newID           func() string
}

// NewClientManager creates a new ClientManager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients:         make(map[string]*Client),
		clientEventChan: make(chan ClientEvent, ClientEventChannelSize),
		newID:           uuid.NewString,
	}
}

// GetClientEventChan returns a one-way channel for receiving client events
func (cm *ClientManager) GetClientEventChan() <-chan ClientEvent {
	return cm.clientEventChan
}

// GetClients returns a slice with a copy of all connected clients.
func (cm *ClientManager) GetClients() []*Client {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	clients := make([]*Client, 0, len(cm.clients))
	for _, client := range cm.clients {
		copy := *client
		clients = append(clients, &copy)
	}
	return clients
}

// GetClient returns a copy of the client with the given id
func (cm *ClientManager) GetClient(clientID string) (*Client, error) {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	client, ok := cm.clients[clientID]
	if !ok {
		return nil, fmt.Errorf("client %s not found", clientID)
	}
	copy := *client
	return &copy, nil
}

// ConnectClient registers conn under a new ID and returns it.
// welcome, when set, runs before the client is visible to GetClients and
// before the connect event is emitted; an error aborts the connection.
func (cm *ClientManager) ConnectClient(conn *websocket.Conn, welcome func(clientID string) error) (string, error) {
	clientID := cm.newID()
	if welcome != nil {
		if err := welcome(clientID); err != nil {
			return "", fmt.Errorf("failed to welcome client %s: %w", clientID, err)
		}
	}

	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	if _, ok := cm.clients[clientID]; ok {
		return "", fmt.Errorf("client id %s already in use", clientID)
	}
	cm.clients[clientID] = &Client{
		ID:          clientID,
		Conn:        conn,
		ConnectedAt: time.Now(),
	}

	cm.clientEventChan <- ClientEvent{
		ClientID: clientID,
		Type:     ClientEventTypeConnect,
	}

	return clientID, nil
}

// GetClientIDByConn returns the ID of a client by its connection.
// Returns "" if the client is not found
func (cm *ClientManager) GetClientIDByConn(conn *websocket.Conn) string {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	for _, client := range cm.clients {
		if client.Conn == conn {
			return client.ID
		}
	}
	return ""
}

// DisconnectClient removes a client from the manager
func (cm *ClientManager) DisconnectClient(clientID string) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	if _, ok := cm.clients[clientID]; !ok {
		return
	}
	delete(cm.clients, clientID)

	cm.clientEventChan <- ClientEvent{
		ClientID: clientID,
		Type:     ClientEventTypeDisconnect,
	}
}

func (cm *ClientManager) Exists(clientID string) bool {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	_, ok := cm.clients[clientID]
	return ok
}

func (cm *ClientManager) Count() int {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	return len(cm.clients)
}
