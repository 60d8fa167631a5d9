package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Server.FrontendURL)
	assert.Equal(t, "http://localhost:3001", cfg.Pricing.APIURL)
	assert.Equal(t, Duration(time.Hour), cfg.Pricing.CheckInterval)
	assert.Equal(t, Duration(time.Second), cfg.Pricing.MinDelay)
	assert.Equal(t, Duration(time.Hour), cfg.Pricing.CacheTTL)
	assert.Equal(t, "data/travelmate.db", cfg.Database.SQLitePath)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "8080"
pricing:
  check_interval: 30m
  min_delay: 2s
database:
  sqlite_path: /tmp/test.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, Duration(30*time.Minute), cfg.Pricing.CheckInterval)
	assert.Equal(t, Duration(2*time.Second), cfg.Pricing.MinDelay)
	assert.Equal(t, "/tmp/test.db", cfg.Database.SQLitePath)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"8080\"\n"), 0o644))

	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateWarnsOnMissingCredentials(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	warnings := cfg.Validate()
	assert.NotEmpty(t, warnings)
}
