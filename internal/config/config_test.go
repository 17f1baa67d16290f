package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lizachat/liza/internal/config"
)

// validConfig returns a default config completed with the required secrets.
func validConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Identity.IssuerURL = "https://accounts.example.com"
	cfg.Stream.APIKey = "key"
	cfg.Stream.APISecret = "secret"
	return cfg
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("IDENTITY_ISSUER_URL", "https://accounts.example.com")
	t.Setenv("STREAM_API_KEY", "key")
	t.Setenv("STREAM_API_SECRET", "secret")
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, "liza", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "https://chat.stream-io-api.com", cfg.Stream.BaseURL)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestValidate_Success(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_MissingIdentityIssuer(t *testing.T) {
	cfg := validConfig()
	cfg.Identity.IssuerURL = ""

	err := cfg.Validate()

	require.ErrorIs(t, err, config.ErrConfigInvalid)
	assert.Contains(t, err.Error(), "identity.issuer_url")
}

func TestValidate_MissingStreamCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Stream.APIKey = ""
	cfg.Stream.APISecret = ""

	err := cfg.Validate()

	require.ErrorIs(t, err, config.ErrConfigInvalid)
	assert.Contains(t, err.Error(), "stream.api_key")
	assert.Contains(t, err.Error(), "stream.api_secret")
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0

	require.ErrorIs(t, cfg.Validate(), config.ErrConfigInvalid)
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = "verbose"

	require.ErrorIs(t, cfg.Validate(), config.ErrInvalidLogLevel)
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Format = "xml"

	require.ErrorIs(t, cfg.Validate(), config.ErrInvalidLogFormat)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MONGODB_TIMEOUT", "5s")
	t.Setenv("RATELIMIT_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.LoadFromPath("")

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.MongoDB.Timeout)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_InvalidEnvDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_READ_TIMEOUT", "not-a-duration")

	_, err := config.LoadFromPath("")

	require.Error(t, err)
}

func TestLoadFromPath_YAMLFile(t *testing.T) {
	// Arrange
	setRequiredEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
app:
  name: liza-staging
server:
  port: 8181
log:
  level: warn
  format: text
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	// Act
	cfg, err := config.LoadFromPath(path)

	// Assert: file values land, defaults fill the rest.
	require.NoError(t, err)
	assert.Equal(t, "liza-staging", cfg.App.Name)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, config.DefaultReadTimeout, cfg.Server.ReadTimeout)
}

func TestLoadFromPath_MissingExplicitFile(t *testing.T) {
	setRequiredEnv(t)

	_, err := config.LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))

	require.ErrorIs(t, err, config.ErrConfigNotFound)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "7070")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8181\n"), 0o600))

	cfg, err := config.LoadFromPath(path)

	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}
