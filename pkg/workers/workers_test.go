package workers

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gametypes "github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/cbodonnell/skirmish/pkg/messages"
	"github.com/cbodonnell/skirmish/pkg/network"
	"github.com/cbodonnell/skirmish/pkg/queue"
	"github.com/cbodonnell/skirmish/pkg/repositories"
	"github.com/cbodonnell/skirmish/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	clientID string
	body     string
}

type fakeSender struct {
	lock sync.Mutex
	sent []sent
}

func (s *fakeSender) SendToAll(_ context.Context, b []byte) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.sent = append(s.sent, sent{body: string(b)})
}

func (s *fakeSender) SendToClient(_ context.Context, clientID string, b []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.sent = append(s.sent, sent{clientID: clientID, body: string(b)})
	return nil
}

func TestServerMessageWorker_handleServerMessage(t *testing.T) {
	tests := []struct {
		name    string
		msg     ServerMessage
		want    sent
		wantErr bool
	}{
		{
			name: "broadcast",
			msg:  ServerMessage{Type: messages.TypeScoreboard, Message: &messages.Scoreboard{Items: []messages.ScoreboardItem{}, Count: 0}},
			want: sent{body: `{"type":"scoreboard","payload":{"items":[],"count":0}}`},
		},
		{
			name: "single client",
			msg:  ServerMessage{ClientID: "a", Type: messages.TypeShipQuota, Message: &messages.ShipQuota{Remaining: 2, Cap: 3}},
			want: sent{clientID: "a", body: `{"type":"shipQuota","payload":{"remaining":2,"cap":3}}`},
		},
		{
			name:    "client message type",
			msg:     ServerMessage{Type: messages.TypeInputSnapshot},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			w := NewServerMessageWorker(NewServerMessageWorkerOptions{Sender: sender})
			err := w.handleServerMessage(context.Background(), tt.msg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, sender.sent)
				return
			}
			require.NoError(t, err)
			require.Len(t, sender.sent, 1)
			assert.Equal(t, tt.want.clientID, sender.sent[0].clientID)
			assert.JSONEq(t, tt.want.body, sender.sent[0].body)
		})
	}
}

func TestConnectionEventWorker(t *testing.T) {
	events := make(chan network.ClientEvent, 2)
	serverEvents := queue.NewInMemoryQueue[interface{}](4)
	w := NewConnectionEventWorker(NewConnectionEventWorkerOptions{
		ClientEventChan:  events,
		ServerEventQueue: serverEvents,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	events <- network.ClientEvent{ClientID: "a", Type: network.ClientEventTypeConnect}
	events <- network.ClientEvent{ClientID: "a", Type: network.ClientEventTypeDisconnect}
	require.Eventually(t, func() bool { return serverEvents.Size() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, []interface{}{
		&gametypes.ConnectPilotEvent{ClientID: "a"},
		&gametypes.DisconnectPilotEvent{ClientID: "a"},
	}, serverEvents.ReadAllMessages())
}

func TestSaveScoresWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repository, err := repositories.NewSQLiteRepository(ctx, filepath.Join(t.TempDir(), "scores.db"))
	require.NoError(t, err)
	defer repository.Close(ctx)

	stateManager := state.NewInMemoryStateManager()
	gameState := gametypes.NewGameState(nil)
	ship := gametypes.NewShipState("b", 0, 0)
	ship.Name = "Bee"
	ship.Kills = 4
	gameState.AddShip(ship)
	require.NoError(t, stateManager.Set(ctx, gameState))

	saveScoreChan := make(chan SaveScoreRequest, 1)
	w := NewSaveScoresWorker(NewSaveScoresWorkerOptions{
		Repository:    repository,
		SaveScoreChan: saveScoreChan,
		StateManager:  stateManager,
		Interval:      20 * time.Millisecond,
	})
	go w.Start(ctx)

	leaving := gametypes.NewShipState("a", 0, 0)
	leaving.Name = "Ace"
	leaving.Kills = 2
	saveScoreChan <- SaveScoreRequest{Timestamp: 5, Ship: leaving}

	require.Eventually(t, func() bool {
		scores, err := repository.ListTopScores(ctx, 0)
		return err == nil && len(scores) == 2
	}, 2*time.Second, 10*time.Millisecond)

	scores, err := repository.ListTopScores(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "b", scores[0].ClientID)
	assert.Equal(t, 4, scores[0].Kills)
	assert.Equal(t, "Ace", scores[1].Name)
}
