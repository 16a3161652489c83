package network

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/skirmish/client/state"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/messages"
	"github.com/cbodonnell/skirmish/pkg/queue"
)

const (
	DefaultServerURL   = "ws://localhost:8080/ws"
	DefaultDialTimeout = 10 * time.Second
)

// NetworkManager owns the connection to the game server.
// Frames read by the transport are queued and only decoded and applied to
// the store by ProcessPendingMessages, from the game loop.
type NetworkManager struct {
	store              *state.Store
	router             *messages.Router
	serverMessageQueue queue.Queue[[]byte]
	wsClient           *WSClient
	wsClientErrChan    chan error
	publisher          *Publisher
	cancelClientCtx    context.CancelFunc
	clientWaitGroup    *sync.WaitGroup
	lifecycleLock      sync.Mutex

	intervalLock    sync.Mutex
	lastSnapshot    time.Time
	recentIntervals []int64
	unsubscribe     func()

	logger *log.Logger
}

type NewNetworkManagerOptions struct {
	ServerURL string
	Store     *state.Store
	// MessageQueue buffers inbound frames. Defaults to an in-memory queue.
	MessageQueue queue.Queue[[]byte]
	// PublishRate is in input snapshots per second.
	PublishRate int
}

// NewNetworkManager creates a new network manager.
func NewNetworkManager(opts NewNetworkManagerOptions) (*NetworkManager, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("network manager requires a store")
	}
	if opts.ServerURL == "" {
		opts.ServerURL = DefaultServerURL
	}
	if opts.MessageQueue == nil {
		opts.MessageQueue = queue.NewInMemoryQueue[[]byte](queue.DefaultQueueBufferSize)
	}

	router := messages.NewRouter()
	state.RegisterHandlers(router, opts.Store)

	wsClient := NewWSClient(opts.ServerURL, opts.MessageQueue)
	m := &NetworkManager{
		store:              opts.Store,
		router:             router,
		serverMessageQueue: opts.MessageQueue,
		wsClient:           wsClient,
		wsClientErrChan:    make(chan error, 1),
		publisher: NewPublisher(NewPublisherOptions{
			Sender: wsClient,
			Source: opts.Store,
			Rate:   opts.PublishRate,
		}),
		clientWaitGroup: &sync.WaitGroup{},
		logger:          log.With("network"),
	}
	m.unsubscribe = opts.Store.Subscribe(func(changed state.Slice) {
		if changed.Any(state.SliceShips) {
			m.recordSnapshot(time.Now())
		}
	})
	return m, nil
}

// Start connects to the server and starts reading frames and publishing input.
func (m *NetworkManager) Start(ctx context.Context) error {
	m.lifecycleLock.Lock()
	defer m.lifecycleLock.Unlock()
	if m.cancelClientCtx != nil {
		return fmt.Errorf("network manager already started")
	}

	dialCtx, dialCancel := context.WithTimeout(ctx, DefaultDialTimeout)
	defer dialCancel()
	if err := m.wsClient.Connect(dialCtx); err != nil {
		return err
	}

	clientCtx, cancel := context.WithCancel(context.Background())
	m.cancelClientCtx = cancel

	m.clientWaitGroup.Add(1)
	go func() {
		defer m.clientWaitGroup.Done()
		err := m.wsClient.HandleMessages(clientCtx)
		// Stops the publisher; the store keeps its last contents.
		cancel()
		if err != nil {
			select {
			case m.wsClientErrChan <- err:
			default:
				m.logger.Debug("Dropping WebSocket client error: %v", err)
			}
		}
	}()

	m.clientWaitGroup.Add(1)
	go func() {
		defer m.clientWaitGroup.Done()
		m.publisher.Run(clientCtx)
	}()

	m.logger.Info("Connected to server")
	return nil
}

// ProcessPendingMessages decodes and applies every queued frame in arrival
// order. It returns the number of frames that reached a handler.
func (m *NetworkManager) ProcessPendingMessages() int {
	handled := 0
	for _, raw := range m.serverMessageQueue.ReadAllMessages() {
		if m.router.Route(raw) {
			handled++
		}
	}
	return handled
}

// StartWithDefault asks the server to spawn a ship with the default appearance.
func (m *NetworkManager) StartWithDefault(ctx context.Context) error {
	b, err := messages.EncodeStartWithDefault()
	if err != nil {
		return err
	}
	return m.wsClient.Send(ctx, b)
}

// StartWithPrompt asks the server to spawn a ship generated from prompt.
func (m *NetworkManager) StartWithPrompt(ctx context.Context, prompt string) error {
	b, err := messages.EncodeStartWithPrompt(prompt)
	if err != nil {
		return err
	}
	return m.wsClient.Send(ctx, b)
}

// Stop stops the network manager and its client and clears the server message queue.
// The store is left untouched.
func (m *NetworkManager) Stop() error {
	m.lifecycleLock.Lock()
	defer m.lifecycleLock.Unlock()
	if m.cancelClientCtx == nil {
		m.logger.Warn("Network manager already stopped")
		return nil
	}

	if err := m.wsClient.Close(); err != nil {
		m.logger.Debug("Failed to close WebSocket client: %v", err)
	}
	m.cancelClientCtx()

	m.logger.Debug("Waiting for client to stop")
	m.clientWaitGroup.Wait()
	m.serverMessageQueue.ClearQueue()
	m.cancelClientCtx = nil

	m.logger.Info("Network manager stopped")
	return nil
}

// Close stops the manager and detaches it from the store.
func (m *NetworkManager) Close() error {
	err := m.Stop()
	m.unsubscribe()
	return err
}

func (m *NetworkManager) recordSnapshot(at time.Time) {
	m.intervalLock.Lock()
	defer m.intervalLock.Unlock()
	if !m.lastSnapshot.IsZero() {
		m.recentIntervals = append(m.recentIntervals, at.Sub(m.lastSnapshot).Milliseconds())
		for len(m.recentIntervals) > maxRecentIntervals {
			m.recentIntervals = m.recentIntervals[1:]
		}
	}
	m.lastSnapshot = at
}

// SnapshotInterval returns the average time between game state updates,
// ignoring stalls. It is zero until two updates were received.
func (m *NetworkManager) SnapshotInterval() time.Duration {
	m.intervalLock.Lock()
	defer m.intervalLock.Unlock()
	avg := averageInterval(m.recentIntervals)
	return time.Duration(avg * float64(time.Millisecond))
}

func (m *NetworkManager) IsConnected() bool {
	return m.wsClient.IsOpen()
}

func (m *NetworkManager) ClientID() string {
	return m.store.ClientID()
}

func (m *NetworkManager) ServerMessageQueue() queue.Queue[[]byte] {
	return m.serverMessageQueue
}

// WSClientErrChan receives the error that ended the connection.
func (m *NetworkManager) WSClientErrChan() <-chan error {
	return m.wsClientErrChan
}

func (m *NetworkManager) Publisher() *Publisher {
	return m.publisher
}
