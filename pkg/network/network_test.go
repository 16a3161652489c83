package network

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cbodonnell/skirmish/pkg/messages"
	"github.com/cbodonnell/skirmish/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

func newTestNetworkManager(t *testing.T) (*NetworkManager, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	n := NewNetworkManager(NewNetworkManagerOptions{
		ClientManager: NewClientManager(),
		MessageQueue:  queue.NewInMemoryQueue[*ClientMessage](16),
	})
	srv := httptest.NewServer(n.Handler(ctx))
	t.Cleanup(srv.Close)
	return n, "ws" + strings.TrimPrefix(srv.URL, "http") + DefaultWSPath
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) messages.Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, b, err := conn.Read(ctx)
	require.NoError(t, err)
	msg, err := messages.Decode(b)
	require.NoError(t, err)
	return msg
}

func nextEvent(t *testing.T, cm *ClientManager) ClientEvent {
	t.Helper()
	select {
	case event := <-cm.GetClientEventChan():
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for client event")
		return ClientEvent{}
	}
}

func TestNetworkManager_connect(t *testing.T) {
	n, url := newTestNetworkManager(t)
	conn := dial(t, url)

	connected, ok := readMessage(t, conn).(*messages.Connected)
	require.True(t, ok)
	assert.NotEmpty(t, connected.ID)

	event := nextEvent(t, n.ClientManager)
	assert.Equal(t, ClientEventTypeConnect, event.Type)
	assert.Equal(t, connected.ID, event.ClientID)
	assert.True(t, n.ClientManager.Exists(connected.ID))

	conn.Close(websocket.StatusNormalClosure, "bye")
	event = nextEvent(t, n.ClientManager)
	assert.Equal(t, ClientEventTypeDisconnect, event.Type)
	assert.Equal(t, connected.ID, event.ClientID)
	assert.False(t, n.ClientManager.Exists(connected.ID))
}

func TestNetworkManager_handleMessage(t *testing.T) {
	n, url := newTestNetworkManager(t)
	conn := dial(t, url)
	connected := readMessage(t, conn).(*messages.Connected)

	ctx := context.Background()
	input, err := messages.EncodeInputSnapshot(messages.InputSnapshot{KeysDown: []string{"W"}})
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"scoreboard","payload":{"items":[]}}`)))
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`not json`)))
	require.NoError(t, conn.Write(ctx, websocket.MessageText, input))

	require.Eventually(t, func() bool { return n.MessageQueue.Size() == 1 }, 5*time.Second, 10*time.Millisecond)
	pending := n.MessageQueue.ReadAllMessages()
	require.Len(t, pending, 1)
	assert.Equal(t, connected.ID, pending[0].ClientID)
	assert.Equal(t, messages.TypeInputSnapshot, pending[0].Envelope.Type)
}

func TestNetworkManager_SendToAll(t *testing.T) {
	n, url := newTestNetworkManager(t)
	first := dial(t, url)
	second := dial(t, url)
	readMessage(t, first)
	readMessage(t, second)
	nextEvent(t, n.ClientManager)
	nextEvent(t, n.ClientManager)

	b, err := messages.Encode(messages.TypeShipQuota, &messages.ShipQuota{Remaining: 3, Cap: 3})
	require.NoError(t, err)
	n.SendToAll(context.Background(), b)

	for _, conn := range []*websocket.Conn{first, second} {
		quota, ok := readMessage(t, conn).(*messages.ShipQuota)
		require.True(t, ok)
		assert.Equal(t, 3, quota.Remaining)
	}

	assert.Error(t, n.SendToClient(context.Background(), "missing", b))
}

func TestClientManager(t *testing.T) {
	cm := NewClientManager()
	ids := []string{"a", "b"}
	cm.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	id, err := cm.ConnectClient(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "a", id)
	assert.Equal(t, ClientEvent{ClientID: "a", Type: ClientEventTypeConnect}, nextEvent(t, cm))

	_, err = cm.ConnectClient(nil, func(clientID string) error {
		assert.Equal(t, "b", clientID)
		assert.False(t, cm.Exists(clientID))
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, cm.Count())

	client, err := cm.GetClient("a")
	require.NoError(t, err)
	client.ID = "changed"
	assert.True(t, cm.Exists("a"))

	cm.DisconnectClient("a")
	cm.DisconnectClient("a")
	assert.Equal(t, ClientEvent{ClientID: "a", Type: ClientEventTypeDisconnect}, nextEvent(t, cm))
	assert.Empty(t, cm.GetClientEventChan())
	assert.Equal(t, 0, cm.Count())
}
