package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	require.Equal(t, "promotion", cfg.AppName)
	require.Equal(t, "game", cfg.Game.Queue)
	require.Equal(t, 3*time.Second, cfg.Game.QueryTimeout)
	require.Equal(t, 2, cfg.Game.RetryCount)
	require.Equal(t, 5, cfg.Game.GrantMaxRetry, "grant retries are configured apart from query retries")
	require.Equal(t, "http://localhost:8080", cfg.Game.CallbackURL)
	require.Equal(t, 30*time.Second, cfg.Kafka.MessageTimeout)
	require.Equal(t, int64(1), cfg.SnowflakeNode)
	require.Equal(t, 30, cfg.RateLimit.RewardRequestPerMinute)
	require.InDelta(t, 0.1, cfg.Simulator.FailureRate, 1e-9)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GAME_URL", "http://game.internal:9000")
	t.Setenv("GAME_QUERY_TIMEOUT", "1500ms")
	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("GAME_GRANT_MAX_RETRY", "3")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	require.Equal(t, "http://game.internal:9000", cfg.Game.URL)
	require.Equal(t, 1500*time.Millisecond, cfg.Game.QueryTimeout)
	require.Equal(t, "sqlite", cfg.Database.Type)
	require.Equal(t, 3, cfg.Game.GrantMaxRetry)
}
