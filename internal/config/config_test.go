package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv removes key for the duration of the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func noDotenv(t *testing.T) {
	t.Helper()
	t.Setenv("DOTENV_PATH", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadReadsVersionFromEnv(t *testing.T) {
	noDotenv(t)
	t.Setenv("API_VERSION", "1.2.3")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFailsWhenVersionMissing(t *testing.T) {
	noDotenv(t)
	unsetEnv(t, "API_VERSION")

	_, err := Load(nil)
	require.ErrorIs(t, err, ErrMissingVersion)
}

func TestLoadAcceptsEmptyVersion(t *testing.T) {
	noDotenv(t)
	t.Setenv("API_VERSION", "")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Version)
}

func TestLoadFlagOverridesEnv(t *testing.T) {
	noDotenv(t)
	t.Setenv("API_VERSION", "1.0.0")
	t.Setenv("APP_PORT", "9000")

	cfg, err := Load([]string{"--api.version=2.0.0", "--port", "9191"})
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", cfg.Version)
	assert.Equal(t, "9191", cfg.Port)
}

func TestLoadFlagAloneSatisfiesVersion(t *testing.T) {
	noDotenv(t)
	unsetEnv(t, "API_VERSION")

	cfg, err := Load([]string{"--api.version", "3.1.4"})
	require.NoError(t, err)
	assert.Equal(t, "3.1.4", cfg.Version)
}

func TestLoadRejectsUnknownFlag(t *testing.T) {
	noDotenv(t)
	t.Setenv("API_VERSION", "1.0.0")

	_, err := Load([]string{"--nope"})
	require.Error(t, err)
}

func TestLoadReportsHelpRequest(t *testing.T) {
	noDotenv(t)
	unsetEnv(t, "API_VERSION")

	_, err := Load([]string{"--help"})
	require.ErrorIs(t, err, pflag.ErrHelp)
}

func TestLoadReadsDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("API_VERSION=4.5.6\nAPP_ENV=staging\n"), 0o600))
	t.Setenv("DOTENV_PATH", path)
	unsetEnv(t, "API_VERSION")
	unsetEnv(t, "APP_ENV")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "4.5.6", cfg.Version)
	assert.Equal(t, "staging", cfg.Env)
}

func TestLoadEnvWinsOverDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("API_VERSION=from-file\n"), 0o600))
	t.Setenv("DOTENV_PATH", path)
	t.Setenv("API_VERSION", "from-env")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Version)
}

func TestLoadRateLimitConfigClampsValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadCacheConfigParsesMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head ,")

	cfg := LoadCacheConfig()
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
}

func TestLoadEventsConfigFallsBackToAMQPURL(t *testing.T) {
	unsetEnv(t, "RABBITMQ_URL")
	t.Setenv("AMQP_URL", "amqp://u:p@broker:5672/")

	cfg := LoadEventsConfig()
	assert.Equal(t, "amqp://u:p@broker:5672/", cfg.URL)
	assert.Equal(t, "api.requests", cfg.Queue)
}

func TestLoadRateLimitConfigIsOptIn(t *testing.T) {
	unsetEnv(t, "RATE_LIMIT_ENABLED")
	assert.False(t, LoadRateLimitConfig().Enabled)

	t.Setenv("RATE_LIMIT_ENABLED", "true")
	assert.True(t, LoadRateLimitConfig().Enabled)
}

func TestLoadEventsConfigDefaults(t *testing.T) {
	unsetEnv(t, "EVENTS_BUFFER")
	unsetEnv(t, "EVENTS_PUBLISH_TIMEOUT")

	cfg := LoadEventsConfig()
	assert.Equal(t, 1024, cfg.Buffer)
	assert.Equal(t, 5*time.Second, cfg.PublishTimeout)
}
