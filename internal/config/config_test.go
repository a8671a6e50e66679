package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 300, cfg.Recalculation.Interval)
	assert.False(t, cfg.Quotes.Enabled())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	yml := `
server:
  port: 9090
database:
  dsn: "file::memory:"
quotes:
  base_url: "http://quotes.local"
  rate_limit: 1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600))
	t.Setenv("PAIRS_LOGGER_LEVEL", "debug")

	// Act
	cfg, err := LoadConfig(dir)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.Quotes.Enabled())
	assert.Equal(t, 1.0, cfg.Quotes.RateLimit)
	assert.Equal(t, 2, cfg.Quotes.RateLimitBurst)
}
