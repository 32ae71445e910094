package tuner

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thalesfsp/tuner/internal/logger"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]

		return v, ok
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Zero(t, config.Seed)
	assert.NotNil(t, config.Logger)
	assert.NotNil(t, config.Out)
	assert.NotNil(t, config.Err)
	assert.NotNil(t, config.Now)
	assert.Nil(t, config.Metrics)
	assert.Nil(t, config.ProgressChan)
}

func TestConfigFromLookup(t *testing.T) {
	config, err := configFromLookup(lookupFrom(map[string]string{
		SeedEnv:            "1234",
		logger.VerboseEnv: "1",
	}))
	require.NoError(t, err)

	assert.Equal(t, int64(1234), config.Seed)
	assert.True(t, config.Logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestConfigFromLookupQuiet(t *testing.T) {
	config, err := configFromLookup(lookupFrom(nil))
	require.NoError(t, err)

	assert.Zero(t, config.Seed)
	assert.False(t, config.Logger.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, config.Logger.Enabled(context.Background(), slog.LevelWarn))
}

func TestConfigFromLookupBadSeed(t *testing.T) {
	_, err := configFromLookup(lookupFrom(map[string]string{SeedEnv: "abc"}))
	assert.ErrorContains(t, err, SeedEnv)
}

func TestWithDefaultsFillsZeroFields(t *testing.T) {
	config := Config{}.withDefaults()

	assert.NotZero(t, config.Seed)
	assert.NotNil(t, config.Logger)
	assert.NotNil(t, config.Out)
	assert.NotNil(t, config.Err)
	assert.NotNil(t, config.Now)
}
