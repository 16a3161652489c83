package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/skirmish/pkg/api/handlers"
	"github.com/cbodonnell/skirmish/pkg/api/middleware"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/repositories"
	"github.com/cbodonnell/skirmish/pkg/state"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port         int
	TLS          *TLSConfig
	Repository   repositories.Repository
	StateManager state.StateManager
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: NewHandler(opts.Repository, opts.StateManager),
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// NewHandler returns the routes of the API.
func NewHandler(repository repositories.Repository, states state.Reader) http.Handler {
	get := middleware.NewCORSMiddleware(http.MethodGet)

	mux := http.NewServeMux()
	mux.Handle("/healthz", get(handlers.HandleHealth()))
	mux.Handle("/ships/{file}", get(handlers.HandleShipImage()))
	mux.Handle("/scoreboard", get(handlers.HandleScoreboard(states)))
	mux.Handle("/scores", get(handlers.HandleListTopScores(repository)))
	mux.Handle("/scores/{clientID}", get(handlers.HandleGetScore(repository)))
	return middleware.NewLoggingMiddleware()(mux)
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
