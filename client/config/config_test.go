package config

import (
	"flag"
	"testing"
	"time"

	"github.com/cbodonnell/skirmish/client/network"
	"github.com/cbodonnell/skirmish/client/resources"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvironmentDev, cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30, cfg.PublishRate)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Empty(t, cfg.CachePath)
	require.NoError(t, cfg.Validate())

	url, err := cfg.ResolveServerURL()
	require.NoError(t, err)
	assert.Equal(t, network.DefaultServerURL, url)
}

func TestLoad_env(t *testing.T) {
	t.Setenv("SKIRMISH_ENV", "prod")
	t.Setenv("SKIRMISH_SERVER_URL", "wss://play.example.com/ws")
	t.Setenv("SKIRMISH_LOG_LEVEL", "debug")
	t.Setenv("SKIRMISH_PUBLISH_HZ", "20")
	t.Setenv("SKIRMISH_CACHE_PATH", "/tmp/skirmish.db")
	t.Setenv("SKIRMISH_FETCH_TIMEOUT", "2s")
	t.Setenv("SKIRMISH_PROMPT", "red falcon")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, EnvironmentProd, cfg.Environment)
	assert.Equal(t, log.LogLevelDebug, cfg.Level())
	assert.Equal(t, 20, cfg.PublishRate)
	assert.Equal(t, "/tmp/skirmish.db", cfg.CachePath)
	assert.Equal(t, 2*time.Second, cfg.FetcherOptions().Timeout)
	assert.Equal(t, "red falcon", cfg.Prompt)

	t.Setenv("SKIRMISH_FETCH_TIMEOUT", "30s")
	cfg, err = Load()
	require.NoError(t, err)
	fetcher := resources.NewHTTPFetcher(cfg.FetcherOptions())
	opts := cfg.ResolverOptions(fetcher, nil)
	assert.Equal(t, 30*time.Second, opts.Timeout)
	assert.Equal(t, 30*time.Second, cfg.FetcherOptions().Timeout)
	assert.Nil(t, opts.Store)

	url, err := cfg.ResolveServerURL()
	require.NoError(t, err)
	assert.Equal(t, "wss://play.example.com/ws", url)
}

func TestLoad_parseError(t *testing.T) {
	t.Setenv("SKIRMISH_PUBLISH_HZ", "fast")
	_, err := Load()
	assert.ErrorContains(t, err, "failed to parse env")
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{Environment: EnvironmentDev, LogLevel: "info", PublishRate: 30, FetchTimeout: time.Second}
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "prod without server", mutate: func(c *Config) { c.Environment = EnvironmentProd }, wantErr: ErrNoServerURL},
		{name: "unknown environment", mutate: func(c *Config) { c.Environment = "staging" }},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }},
		{name: "zero publish rate", mutate: func(c *Config) { c.PublishRate = 0 }},
		{name: "zero fetch timeout", mutate: func(c *Config) { c.FetchTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			switch {
			case tt.name == "valid":
				assert.NoError(t, err)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.Error(t, err)
			}
		})
	}
}

func TestConfig_BindFlags(t *testing.T) {
	t.Setenv("SKIRMISH_SERVER_URL", "ws://env:8080/ws")
	t.Setenv("SKIRMISH_PROMPT", "from env")
	cfg, err := Load()
	require.NoError(t, err)

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	cfg.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-server", "ws://flag:9000/ws", "-log-level", "trace", "-ship-image", "http://x/y.png"}))

	assert.Equal(t, "ws://flag:9000/ws", cfg.ServerURL)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.Equal(t, "from env", cfg.Prompt)
	assert.Equal(t, "http://x/y.png", cfg.ShipImageURL)
}
