package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cbodonnell/skirmish/client/config"
	"github.com/cbodonnell/skirmish/client/game"
	"github.com/cbodonnell/skirmish/client/resources"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/version"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	cfg.BindFlags(flag.CommandLine)
	debug := flag.Bool("debug", false, "Show the debug overlay")
	autoStart := flag.Bool("auto-start", false, "Skip the menu and launch the default ship")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid config: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, cfg.Level())
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", cfg.Level())

	log.Info("Starting skirmish client version %s", version.Get())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverURL, err := cfg.ResolveServerURL()
	if err != nil {
		panic(fmt.Sprintf("Failed to resolve server URL: %v", err))
	}

	var blobStore resources.BlobStore
	if cfg.CachePath != "" {
		sqliteStore, err := resources.NewSQLiteBlobStore(ctx, cfg.CachePath)
		if err != nil {
			panic(fmt.Sprintf("Failed to open image cache: %v", err))
		}
		defer sqliteStore.Close()
		blobStore = sqliteStore
		log.Info("Caching ship images in %s", cfg.CachePath)
	}

	resolver, err := resources.NewResolver(cfg.ResolverOptions(resources.NewHTTPFetcher(cfg.FetcherOptions()), blobStore))
	if err != nil {
		panic(fmt.Sprintf("Failed to create resolver: %v", err))
	}

	g, err := game.NewGame(ctx, game.NewGameOptions{
		Debug: *debug,
		Session: game.SessionOptions{
			ServerURL:    serverURL,
			PublishRate:  cfg.PublishRate,
			ShipImageURL: cfg.ShipImageURL,
		},
		Resolver:  resolver,
		Prompt:    cfg.Prompt,
		AutoStart: *autoStart,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create game: %v", err))
	}

	ebiten.SetWindowSize(game.DefaultScreenWidth, game.DefaultScreenHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("Skirmish")
	if err := ebiten.RunGame(g); err != nil {
		panic(fmt.Sprintf("Failed to run game: %v", err))
	}
}
