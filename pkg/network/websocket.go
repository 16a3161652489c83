package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/gorilla/mux"
	"nhooyr.io/websocket"
)

const (
	// DefaultWSPath is the path the websocket endpoint is served on
	DefaultWSPath = "/ws"
	// DefaultReadLimit bounds the size of a single client frame
	DefaultReadLimit int64 = 64 << 10
	// WriteTimeout bounds a single write to a client
	WriteTimeout = 5 * time.Second
)

// WSServer represents a WebSocket server.
type WSServer struct {
	port      int
	path      string
	readLimit int64
	tls       *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewWSServerOptions struct {
	Port      int
	Path      string
	ReadLimit int64
	TLS       *TLSConfig
}

// NewWSServer creates a new WebSocket server.
func NewWSServer(opts NewWSServerOptions) *WSServer {
	if opts.Path == "" {
		opts.Path = DefaultWSPath
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = DefaultReadLimit
	}
	return &WSServer{
		port:      opts.Port,
		path:      opts.Path,
		readLimit: opts.ReadLimit,
		tls:       opts.TLS,
	}
}

// ConnectHandler registers a new connection and returns its client ID.
type ConnectHandler func(ctx context.Context, conn *websocket.Conn) (string, error)

type DisconnectHandler func(clientID string)

type MessageHandler func(ctx context.Context, clientID string, raw []byte)

// Handler returns the routes of the server. Connections are closed when ctx is done.
func (s *WSServer) Handler(ctx context.Context, connectHandler ConnectHandler, disconnectHandler DisconnectHandler, messageHandler MessageHandler) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc(s.path, func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			log.Error("Failed to accept WebSocket connection: %v", err)
			return
		}
		log.Debug("New WebSocket connection from %s", r.RemoteAddr)
		s.handleWSConnection(ctx, r, conn, connectHandler, disconnectHandler, messageHandler)
	})
	return router
}

// Start starts the WebSocket server.
func (s *WSServer) Start(ctx context.Context, connectHandler ConnectHandler, disconnectHandler DisconnectHandler, messageHandler MessageHandler) {
	addr := fmt.Sprintf(":%d", s.port)
	server := &http.Server{
		Addr:    addr,
		Handler: s.Handler(ctx, connectHandler, disconnectHandler, messageHandler),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	var listenAndServe func() error
	if s.tls != nil {
		log.Info("WebSocket server listening on %s%s with TLS", addr, s.path)
		listenAndServe = func() error {
			return server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("WebSocket server listening on %s%s", addr, s.path)
		listenAndServe = server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("WebSocket server closed")
			return
		}
		log.Error("WebSocket server error: %v", err)
	}
}

// handleWSConnection handles a WebSocket connection until it is closed.
func (s *WSServer) handleWSConnection(serverCtx context.Context, r *http.Request, conn *websocket.Conn, connectHandler ConnectHandler, disconnectHandler DisconnectHandler, messageHandler MessageHandler) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(serverCtx, func() {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		cancel()
	})
	defer stop()

	conn.SetReadLimit(s.readLimit)

	clientID, err := connectHandler(ctx, conn)
	if err != nil {
		log.Error("Failed to connect client from %s: %v", r.RemoteAddr, err)
		conn.Close(websocket.StatusInternalError, "failed to connect")
		return
	}
	defer func() {
		disconnectHandler(clientID)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		messageType, b, err := conn.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status == -1 && ctx.Err() == nil {
				log.Warn("Error reading WebSocket message from %s: %v", clientID, err)
			}
			log.Trace("Connection closed for %s", clientID)
			return
		}
		if messageType != websocket.MessageText {
			log.Warn("Ignoring binary message from %s", clientID)
			continue
		}
		messageHandler(ctx, clientID, b)
	}
}

// WriteMessageToWS writes a serialized message to a WebSocket connection
func WriteMessageToWS(ctx context.Context, conn *websocket.Conn, b []byte) error {
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, b); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}
	return nil
}
