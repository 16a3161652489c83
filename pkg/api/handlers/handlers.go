package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/repositories"
	"github.com/cbodonnell/skirmish/pkg/shipimage"
	"github.com/cbodonnell/skirmish/pkg/state"
	"github.com/cbodonnell/skirmish/pkg/version"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func HandleListTopScores(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = n
		}

		scores, err := repository.ListTopScores(r.Context(), limit)
		if err != nil {
			log.Error("failed to list top scores: %v", err)
			http.Error(w, "Failed to list scores", http.StatusInternalServerError)
			return
		}
		writeJSON(w, scores)
	}
}

func HandleGetScore(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		score, err := repository.GetScore(r.Context(), r.PathValue("clientID"))
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Score not found", http.StatusNotFound)
				return
			}
			log.Error("failed to get score: %v", err)
			http.Error(w, "Failed to get score", http.StatusInternalServerError)
			return
		}
		writeJSON(w, score)
	}
}

// HandleScoreboard serves the live ranking, in the same shape as the scoreboard message.
func HandleScoreboard(states state.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameState, err := states.Get(r.Context())
		if err != nil {
			log.Error("failed to get game state: %v", err)
			http.Error(w, "Failed to get game state", http.StatusInternalServerError)
			return
		}
		writeJSON(w, gameState.ScoreboardMessage())
	}
}

// HandleShipImage serves /ships/{file} where file is a slug followed by .png.
func HandleShipImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, ok := strings.CutSuffix(r.PathValue("file"), ".png")
		if !ok || !slugRegex.MatchString(slug) {
			http.Error(w, "Ship not found", http.StatusNotFound)
			return
		}

		b, err := shipimage.RenderPNG(slug)
		if err != nil {
			log.Error("failed to render ship %s: %v", slug, err)
			http.Error(w, "Failed to render ship", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Write(b)
	}
}

func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{
			"status":  "ok",
			"version": version.Get(),
		})
	}
}
