package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TICKET_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "localhost:6379", cfg.Redis.GetRedisAddr())
	assert.Equal(t, 30*time.Minute, cfg.Redis.SessionTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.Game.ComputerDelay)
	assert.Equal(t, 2*time.Hour, cfg.Ticket.TTL)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "otel-collector:4317", cfg.Telemetry.Endpoint)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log-level: debug
http-addr: ":9090"
store: redis
redis:
  host: cache
  port: "6380"
  session-ttl: 10m
game:
  computer-delay: 250ms
ticket:
  secret: from-file
  ttl: 1h
telemetry:
  enabled: true
  endpoint: collector:4317
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "cache:6380", cfg.Redis.GetRedisAddr())
	assert.Equal(t, 10*time.Minute, cfg.Redis.SessionTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.Game.ComputerDelay)
	assert.Equal(t, "from-file", cfg.Ticket.Secret)
	assert.Equal(t, time.Hour, cfg.Ticket.TTL)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "collector:4317", cfg.Telemetry.Endpoint)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "ticket:\n  secret: from-file\nstore: memory\n")
	t.Setenv("TICKET_SECRET", "from-env")
	t.Setenv("STORE", "redis")
	t.Setenv("GAME_COMPUTER_DELAY", "1s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Ticket.Secret)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, time.Second, cfg.Game.ComputerDelay)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing secret", body: "store: memory\n"},
		{name: "unknown store", body: "store: sqlite\nticket:\n  secret: x\n"},
		{name: "bad log level", body: "log-level: loud\nticket:\n  secret: x\n"},
		{name: "negative delay", body: "game:\n  computer-delay: -1s\nticket:\n  secret: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	})
}
