package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cbodonnell/skirmish/client/state"
	"github.com/cbodonnell/skirmish/pkg/kinematic"
	"github.com/cbodonnell/skirmish/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

const (
	testConnected = `{"type":"connected","payload":{"id":"abc123"}}`
	testGameState = `{"type":"gameState","payload":{"ships":{"abc123":{"physics":{"position":{"x":10,"y":20},"rotation":0},"appearance":{"shipImageUrl":"http://x/y.png"},"health":80,"kills":2,"name":"Ace"}},"projectiles":[]}}`
)

// newTestServer sends frames on connect, forwards every inbound frame to
// received and closes the connection once release is closed.
func newTestServer(t *testing.T, frames []string, received chan<- []byte, release <-chan struct{}) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		ctx := r.Context()
		for _, f := range frames {
			if err := conn.Write(ctx, websocket.MessageText, []byte(f)); err != nil {
				return
			}
		}
		go func() {
			for {
				_, b, err := conn.Read(ctx)
				if err != nil {
					return
				}
				select {
				case received <- b:
				default:
				}
			}
		}()
		select {
		case <-release:
			conn.Close(websocket.StatusNormalClosure, "round over")
		case <-ctx.Done():
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestNewNetworkManager_requiresStore(t *testing.T) {
	_, err := NewNetworkManager(NewNetworkManagerOptions{})
	assert.Error(t, err)
}

func TestNetworkManager_session(t *testing.T) {
	received := make(chan []byte, 256)
	release := make(chan struct{})
	url := newTestServer(t, []string{testConnected, testGameState}, received, release)

	store := state.New()
	m, err := NewNetworkManager(NewNetworkManagerOptions{ServerURL: url, Store: store, PublishRate: 100})
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))
	assert.True(t, m.IsConnected())
	assert.Error(t, m.Start(context.Background()))

	// Nothing reaches the store until the game loop drains the queue.
	require.Eventually(t, func() bool {
		return m.ServerMessageQueue().Size() == 2
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "", store.ClientID())

	assert.Equal(t, 2, m.ProcessPendingMessages())
	assert.Equal(t, "abc123", m.ClientID())
	ship, ok := store.LocalShip()
	require.True(t, ok)
	assert.Equal(t, kinematic.Vector{X: 10, Y: 20}, ship.Physics.Position)

	store.SetInput(messages.NewInputSnapshot([]string{"W", "SPACE"}, kinematic.Vector{}))
	require.NoError(t, m.StartWithPrompt(context.Background(), "  red falcon "))

	var sawInput, sawPrompt bool
	deadline := time.After(5 * time.Second)
	for !sawInput || !sawPrompt {
		select {
		case b := <-received:
			env, err := messages.DecodeEnvelope(b)
			require.NoError(t, err)
			switch env.Type {
			case messages.TypeInputSnapshot:
				in, err := messages.DecodeInputSnapshot(b)
				require.NoError(t, err)
				if in.IsDown("W") && in.IsDown("SPACE") {
					sawInput = true
				}
			case messages.TypeStartWithPrompt:
				p, err := messages.DecodePayload[messages.StartWithPrompt](env)
				require.NoError(t, err)
				assert.Equal(t, "red falcon", p.Prompt)
				sawPrompt = true
			}
		case <-deadline:
			t.Fatalf("timed out: input=%v prompt=%v", sawInput, sawPrompt)
		}
	}

	close(release)
	select {
	case err := <-m.WSClientErrChan():
		var closed *ErrConnectionClosedByServer
		require.ErrorAs(t, err, &closed)
		assert.Equal(t, int(websocket.StatusNormalClosure), closed.Code)
		assert.Equal(t, "round over", closed.Reason)
	case <-time.After(5 * time.Second):
		t.Fatal("connection close was not reported")
	}

	// The last state stays visible after the connection ends.
	assert.False(t, m.IsConnected())
	assert.Equal(t, "abc123", store.ClientID())
	_, ok = store.LocalShip()
	assert.True(t, ok)
	assert.ErrorIs(t, m.StartWithDefault(context.Background()), ErrNotConnected)

	require.NoError(t, m.Stop())
	require.NoError(t, m.Stop())
}

func TestNetworkManager_Stop(t *testing.T) {
	received := make(chan []byte, 256)
	release := make(chan struct{})
	defer close(release)
	url := newTestServer(t, nil, received, release)

	m, err := NewNetworkManager(NewNetworkManagerOptions{ServerURL: url, Store: state.New()})
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Stop())
	assert.False(t, m.IsConnected())

	select {
	case err := <-m.WSClientErrChan():
		var closed *ErrConnectionClosedByClient
		assert.ErrorAs(t, err, &closed)
	default:
	}
}

func TestNetworkManager_Start_unreachable(t *testing.T) {
	m, err := NewNetworkManager(NewNetworkManagerOptions{ServerURL: "ws://127.0.0.1:1/ws", Store: state.New()})
	require.NoError(t, err)
	defer m.Close()

	assert.Error(t, m.Start(context.Background()))
	assert.False(t, m.IsConnected())
	require.NoError(t, m.Stop())
}

func TestNetworkManager_SnapshotInterval(t *testing.T) {
	m, err := NewNetworkManager(NewNetworkManagerOptions{Store: state.New()})
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, time.Duration(0), m.SnapshotInterval())
	start := time.Unix(1700000000, 0)
	for _, offset := range []int{0, 50, 100, 150, 1150, 1200} {
		m.recordSnapshot(start.Add(time.Duration(offset) * time.Millisecond))
	}
	assert.Equal(t, 50*time.Millisecond, m.SnapshotInterval())
}
