package workers

import (
	"context"
	"time"

	gametypes "github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/repositories"
	"github.com/cbodonnell/skirmish/pkg/repositories/models"
	"github.com/cbodonnell/skirmish/pkg/state"
)

type SaveScoresWorker struct {
	repository    repositories.Repository
	saveScoreChan <-chan SaveScoreRequest
	stateManager  state.StateManager
	interval      time.Duration
}

type NewSaveScoresWorkerOptions struct {
	Repository    repositories.Repository
	SaveScoreChan <-chan SaveScoreRequest
	StateManager  state.StateManager
	Interval      time.Duration
}

// SaveScoreRequest asks for the score of a single ship to be saved,
// typically when its pilot disconnects.
type SaveScoreRequest struct {
	Timestamp int64
	Ship      *gametypes.ShipState
}

// NewSaveScoresWorker creates a new SaveScoresWorker.
// The worker processes save requests from the game loop and
// periodically saves the scores of every ship to the repository.
func NewSaveScoresWorker(opts NewSaveScoresWorkerOptions) *SaveScoresWorker {
	return &SaveScoresWorker{
		repository:    opts.Repository,
		saveScoreChan: opts.SaveScoreChan,
		stateManager:  opts.StateManager,
		interval:      opts.Interval,
	}
}

func (w *SaveScoresWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case saveRequest := <-w.saveScoreChan:
			w.saveScores(ctx, []models.Score{ScoreFromShip(saveRequest.Timestamp, saveRequest.Ship)})
		case t := <-ticker.C:
			gameState, err := w.stateManager.Get(ctx)
			if err != nil {
				log.Error("Failed to get current game state: %v", err)
				continue
			}
			scores := make([]models.Score, 0, len(gameState.Ships))
			for _, ship := range gameState.Ships {
				scores = append(scores, ScoreFromShip(t.UnixMilli(), ship))
			}
			w.saveScores(ctx, scores)
		}
	}
}

func (w *SaveScoresWorker) saveScores(ctx context.Context, scores []models.Score) {
	if len(scores) == 0 {
		return
	}
	if err := w.repository.SaveScores(ctx, scores); err != nil {
		log.Error("Failed to save %d scores: %v", len(scores), err)
		return
	}
	log.Trace("Saved %d scores", len(scores))
}

func ScoreFromShip(timestamp int64, ship *gametypes.ShipState) models.Score {
	return models.Score{
		ClientID:     ship.ClientID,
		Name:         ship.Name,
		ShipImageURL: ship.ShipImageURL,
		Kills:        ship.Kills,
		UpdatedAt:    timestamp,
	}
}
