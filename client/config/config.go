package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cbodonnell/skirmish/client/network"
	"github.com/cbodonnell/skirmish/client/resources"
	"github.com/cbodonnell/skirmish/pkg/log"
)

type Environment string

const (
	EnvironmentDev  Environment = "dev"
	EnvironmentProd Environment = "prod"
)

// ErrNoServerURL is returned in prod when no endpoint override is set.
var ErrNoServerURL = errors.New("server url is required in prod")

// Config is the client configuration, resolved once at startup.
type Config struct {
	Environment  Environment   `env:"SKIRMISH_ENV" envDefault:"dev"`
	ServerURL    string        `env:"SKIRMISH_SERVER_URL"`
	LogLevel     string        `env:"SKIRMISH_LOG_LEVEL" envDefault:"info"`
	PublishRate  int           `env:"SKIRMISH_PUBLISH_HZ" envDefault:"30"`
	CachePath    string        `env:"SKIRMISH_CACHE_PATH"`
	FetchTimeout time.Duration `env:"SKIRMISH_FETCH_TIMEOUT" envDefault:"10s"`
	Prompt       string        `env:"SKIRMISH_PROMPT"`
	ShipImageURL string        `env:"SKIRMISH_SHIP_IMAGE_URL"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse env: %w", err)
	}
	return cfg, nil
}

// BindFlags registers command line flags that override the environment.
// Call it after Load so the env values become the flag defaults.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level")
	fs.StringVar(&c.ServerURL, "server", c.ServerURL, "WebSocket server URL")
	fs.StringVar(&c.Prompt, "prompt", c.Prompt, "Generate the ship from this prompt instead of the default ship")
	fs.StringVar(&c.ShipImageURL, "ship-image", c.ShipImageURL, "Image URL of the local ship")
}

// Validate checks the values that have no usable fallback.
func (c Config) Validate() error {
	switch c.Environment {
	case EnvironmentDev, EnvironmentProd:
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	if _, err := log.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.PublishRate <= 0 {
		return fmt.Errorf("publish rate must be positive, got %d", c.PublishRate)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	_, err := c.ResolveServerURL()
	return err
}

// ResolveServerURL returns the override when set, the local server in dev
// and ErrNoServerURL in prod.
func (c Config) ResolveServerURL() (string, error) {
	if c.ServerURL != "" {
		return c.ServerURL, nil
	}
	if c.Environment == EnvironmentProd {
		return "", ErrNoServerURL
	}
	return network.DefaultServerURL, nil
}

// Level returns the parsed log level, defaulting to info.
func (c Config) Level() log.LogLevel {
	level, err := log.ParseLogLevel(c.LogLevel)
	if err != nil {
		return log.LogLevelInfo
	}
	return level
}

// ResolverOptions returns the resolver settings for fetcher and an optional store.
// FetchTimeout bounds both the HTTP request and the whole load.
func (c Config) ResolverOptions(fetcher resources.Fetcher, store resources.BlobStore) resources.NewResolverOptions {
	return resources.NewResolverOptions{
		Fetcher: fetcher,
		Store:   store,
		Timeout: c.FetchTimeout,
	}
}

// FetcherOptions returns the resource fetcher settings.
func (c Config) FetcherOptions() resources.NewHTTPFetcherOptions {
	return resources.NewHTTPFetcherOptions{
		Timeout:  c.FetchTimeout,
		MaxBytes: resources.DefaultMaxImageBytes,
	}
}
