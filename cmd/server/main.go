package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/skirmish/pkg/api"
	"github.com/cbodonnell/skirmish/pkg/game"
	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/network"
	"github.com/cbodonnell/skirmish/pkg/queue"
	"github.com/cbodonnell/skirmish/pkg/repositories"
	"github.com/cbodonnell/skirmish/pkg/state"
	"github.com/cbodonnell/skirmish/pkg/version"
	"github.com/cbodonnell/skirmish/pkg/workers"
)

func main() {
	wsPort := flag.Int("ws-port", 8080, "WebSocket port to listen on")
	apiPort := flag.Int("api-port", 8081, "API port to listen on")
	publicURL := flag.String("public-url", "", "Public base URL of the API, used for ship image URLs (default http://localhost:<api-port>)")
	certFile := flag.String("tls-cert", "", "TLS certificate file")
	keyFile := flag.String("tls-key", "", "TLS key file")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting skirmish server version %s", version.Get())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connStr := os.Getenv("SKIRMISH_DATABASE_URL")
	if connStr == "" {
		connStr = "sqlite://skirmish.db"
	}
	repository, err := newRepository(ctx, connStr)
	if err != nil {
		panic(fmt.Sprintf("Failed to create repository: %v", err))
	}
	defer repository.Close(context.Background())

	var wsTLS *network.TLSConfig
	var apiTLS *api.TLSConfig
	if *certFile != "" && *keyFile != "" {
		wsTLS = &network.TLSConfig{CertFile: *certFile, KeyFile: *keyFile}
		apiTLS = &api.TLSConfig{CertFile: *certFile, KeyFile: *keyFile}
	}

	clientManager := network.NewClientManager()
	clientMessageQueue := queue.NewInMemoryQueue[*network.ClientMessage](10000)
	networkManager := network.NewNetworkManager(network.NewNetworkManagerOptions{
		ClientManager: clientManager,
		MessageQueue:  clientMessageQueue,
		WSPort:        *wsPort,
		WSServerTLS:   wsTLS,
	})
	networkManager.Start(ctx)

	serverEventQueue := queue.NewInMemoryQueue[interface{}](1000)
	connectionEventWorker := workers.NewConnectionEventWorker(workers.NewConnectionEventWorkerOptions{
		ClientEventChan:  clientManager.GetClientEventChan(),
		ServerEventQueue: serverEventQueue,
	})
	go connectionEventWorker.Start(ctx)

	serverMessageChannelSize := 1000
	serverMessageChan := make(chan workers.ServerMessage, serverMessageChannelSize)
	serverMessageWorker := workers.NewServerMessageWorker(workers.NewServerMessageWorkerOptions{
		Sender:            networkManager,
		ServerMessageChan: serverMessageChan,
	})
	go serverMessageWorker.Start(ctx)

	stateManager := state.NewInMemoryStateManager()
	saveScoreChannelSize := 100
	saveScoreChan := make(chan workers.SaveScoreRequest, saveScoreChannelSize)
	saveScoresWorker := workers.NewSaveScoresWorker(workers.NewSaveScoresWorkerOptions{
		Repository:    repository,
		SaveScoreChan: saveScoreChan,
		StateManager:  stateManager,
		Interval:      10 * time.Second,
	})
	go saveScoresWorker.Start(ctx)

	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:         *apiPort,
		TLS:          apiTLS,
		Repository:   repository,
		StateManager: stateManager,
	})
	go apiServer.Start()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Stop(shutdownCtx); err != nil {
			log.Error("Failed to stop API server: %v", err)
		}
	}()

	shipImageBaseURL := *publicURL
	if shipImageBaseURL == "" {
		scheme := "http"
		if apiTLS != nil {
			scheme = "https"
		}
		shipImageBaseURL = fmt.Sprintf("%s://localhost:%d", scheme, *apiPort)
	}

	gameManager := game.NewGameManager(game.NewGameManagerOptions{
		ClientMessageQueue: clientMessageQueue,
		ServerEventQueue:   serverEventQueue,
		GameState:          types.NewGameState(game.NewCollisionSpace()),
		StateManager:       stateManager,
		ServerMessageChan:  serverMessageChan,
		SaveScoreChan:      saveScoreChan,
		GameLoopInterval:   game.DefaultGameLoopInterval,
		ScoreboardInterval: game.DefaultScoreboardInterval,
		ShipImageBaseURL:   shipImageBaseURL,
	})

	log.Info("Starting game manager")
	if err := gameManager.Start(ctx); err != nil {
		panic(fmt.Sprintf("Failed to start game manager: %v", err))
	}
	log.Info("Shutting down")
}

// newRepository picks the repository from the scheme of connStr:
// sqlite://<path> or postgresql://...
func newRepository(ctx context.Context, connStr string) (repositories.Repository, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %v", err)
	}

	switch u.Scheme {
	case "sqlite":
		path := u.Host + u.Path
		if path == "" {
			return nil, fmt.Errorf("sqlite connection string has no path")
		}
		return repositories.NewSQLiteRepository(ctx, path)
	case "postgres", "postgresql":
		return repositories.NewPostgresRepository(ctx, u.String())
	default:
		return nil, fmt.Errorf("unknown database type %s", u.Scheme)
	}
}
