package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/queue"
	"github.com/gorilla/websocket"
)

const (
	// DefaultMaxMessageBytes bounds a single inbound frame.
	DefaultMaxMessageBytes = 1 << 20
	// DefaultWriteTimeout bounds a single outbound write.
	DefaultWriteTimeout = 5 * time.Second
)

// WSClient represents a WebSocket client.
// Inbound frames are enqueued untouched; decoding happens on the game loop.
type WSClient struct {
	serverURL    string
	messageQueue queue.Queue[[]byte]
	dialer       *websocket.Dialer

	conn      *websocket.Conn
	connLock  sync.RWMutex
	writeLock sync.Mutex
	open      atomic.Bool
	closing   atomic.Bool

	logger *log.Logger
}

// NewWSClient creates a new WebSocket client.
func NewWSClient(serverURL string, messageQueue queue.Queue[[]byte]) *WSClient {
	return &WSClient{
		serverURL:    serverURL,
		messageQueue: messageQueue,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		logger: log.With("websocket"),
	}
}

// Connect establishes a connection to the WebSocket server.
func (c *WSClient) Connect(ctx context.Context) error {
	c.logger.Info("Connecting to WebSocket server at %s", c.serverURL)
	conn, _, err := c.dialer.DialContext(ctx, c.serverURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %v", err)
	}
	conn.SetReadLimit(DefaultMaxMessageBytes)

	c.connLock.Lock()
	c.conn = conn
	c.connLock.Unlock()
	c.closing.Store(false)
	c.open.Store(true)
	return nil
}

func (c *WSClient) currentConn() *websocket.Conn {
	c.connLock.RLock()
	defer c.connLock.RUnlock()
	return c.conn
}

// HandleMessages reads frames until the connection closes or ctx is done.
// It returns nil when ctx is done, ErrConnectionClosedByServer when the
// server closes the connection and ErrConnectionClosedByClient after Close.
func (c *WSClient) HandleMessages(ctx context.Context) error {
	conn := c.currentConn()
	if conn == nil {
		return ErrNotConnected
	}
	defer c.open.Store(false)
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		// Unblocks ReadMessage.
		conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if c.closing.Load() {
				return &ErrConnectionClosedByClient{}
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				c.logger.Info("Connection closed by server: %v", closeErr)
				return &ErrConnectionClosedByServer{Code: closeErr.Code, Reason: closeErr.Text}
			}
			c.logger.Error("Error reading WebSocket message from %s: %v", conn.RemoteAddr().String(), err)
			return fmt.Errorf("failed to read message: %v", err)
		}

		if err := c.messageQueue.Enqueue(message); err != nil {
			c.logger.Warn("Dropping inbound message: %v", err)
		}
	}
}

// IsOpen reports whether the connection can be written to.
func (c *WSClient) IsOpen() bool {
	return c.open.Load()
}

// Send writes one text frame. Concurrent calls are serialized.
func (c *WSClient) Send(ctx context.Context, b []byte) error {
	conn := c.currentConn()
	if conn == nil || !c.open.Load() {
		return ErrNotConnected
	}

	deadline := time.Now().Add(DefaultWriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set write deadline: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}
	return nil
}

// Close sends a close frame and closes the WebSocket connection.
func (c *WSClient) Close() error {
	conn := c.currentConn()
	if conn == nil || !c.open.Load() {
		c.logger.Debug("WebSocket connection is already closed")
		return nil
	}
	c.closing.Store(true)
	c.open.Store(false)

	c.writeLock.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closing")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		c.logger.Debug("Failed to send close frame: %v", err)
	}
	c.writeLock.Unlock()
	return conn.Close()
}
