package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	gametypes "github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/cbodonnell/skirmish/pkg/messages"
	"github.com/cbodonnell/skirmish/pkg/repositories"
	"github.com/cbodonnell/skirmish/pkg/repositories/models"
	"github.com/cbodonnell/skirmish/pkg/shipimage"
	"github.com/cbodonnell/skirmish/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()

	repository, err := repositories.NewSQLiteRepository(ctx, filepath.Join(t.TempDir(), "scores.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(ctx) })
	require.NoError(t, repository.SaveScores(ctx, []models.Score{
		{ClientID: "a", Name: "Ace", Kills: 2, UpdatedAt: 1},
		{ClientID: "b", Name: "Bee", Kills: 5, UpdatedAt: 1},
	}))

	stateManager := state.NewInMemoryStateManager()
	gameState := gametypes.NewGameState(nil)
	ship := gametypes.NewShipState("c", 0, 0)
	ship.Name = "Cee"
	ship.Kills = 1
	gameState.AddShip(ship)
	require.NoError(t, stateManager.Set(ctx, gameState))

	return NewHandler(repository, stateManager)
}

func TestHandler(t *testing.T) {
	handler := newTestHandler(t)

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantType   string
		checkBody  func(t *testing.T, body []byte)
	}{
		{
			name:       "health",
			method:     http.MethodGet,
			target:     "/healthz",
			wantStatus: http.StatusOK,
			wantType:   "application/json",
		},
		{
			name:       "top scores",
			method:     http.MethodGet,
			target:     "/scores?limit=1",
			wantStatus: http.StatusOK,
			wantType:   "application/json",
			checkBody: func(t *testing.T, body []byte) {
				var scores []models.Score
				require.NoError(t, json.Unmarshal(body, &scores))
				require.Len(t, scores, 1)
				assert.Equal(t, "b", scores[0].ClientID)
			},
		},
		{
			name:       "bad limit",
			method:     http.MethodGet,
			target:     "/scores?limit=x",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "score",
			method:     http.MethodGet,
			target:     "/scores/a",
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, body []byte) {
				assert.JSONEq(t, `{"client_id":"a","name":"Ace","kills":2,"updated_at":1}`, string(body))
			},
		},
		{
			name:       "missing score",
			method:     http.MethodGet,
			target:     "/scores/z",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "live scoreboard",
			method:     http.MethodGet,
			target:     "/scoreboard",
			wantStatus: http.StatusOK,
			checkBody: func(t *testing.T, body []byte) {
				var scoreboard messages.Scoreboard
				require.NoError(t, json.Unmarshal(body, &scoreboard))
				assert.Equal(t, messages.Scoreboard{
					Items: []messages.ScoreboardItem{{ID: "c", Name: "Cee", Score: 1}},
					Count: 1,
				}, scoreboard)
			},
		},
		{
			name:       "ship image",
			method:     http.MethodGet,
			target:     "/ships/red-baron.png",
			wantStatus: http.StatusOK,
			wantType:   "image/png",
			checkBody: func(t *testing.T, body []byte) {
				img, err := png.Decode(bytes.NewReader(body))
				require.NoError(t, err)
				assert.Equal(t, shipimage.Size, img.Bounds().Dx())
			},
		},
		{
			name:       "ship image without extension",
			method:     http.MethodGet,
			target:     "/ships/red-baron",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "ship image with bad slug",
			method:     http.MethodGet,
			target:     "/ships/Red_Baron.png",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "preflight",
			method:     http.MethodOptions,
			target:     "/scores",
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "method not allowed",
			method:     http.MethodPost,
			target:     "/scores",
			wantStatus: http.StatusMethodNotAllowed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			}
			if tt.checkBody != nil {
				tt.checkBody(t, rec.Body.Bytes())
			}
		})
	}
}
