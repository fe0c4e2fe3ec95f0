package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault_LoadsCleanly(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err, "shipped config must not require any environment")
	assert.Empty(t, cfg.Validate())
	assert.Empty(t, cfg.TMDB.APIKey)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
}

func TestWriteDefault_PicksUpAPIKey(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "from-env")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.TMDB.APIKey)
}

func TestConfig_WriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 9000
	cfg.TMDB.APIKey = "k"

	path := filepath.Join(t.TempDir(), "out.toml")
	require.NoError(t, cfg.Write(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, got.Server.Port)
	assert.Equal(t, "k", got.TMDB.APIKey)
	assert.Equal(t, cfg.TMDB.CacheTTL, got.TMDB.CacheTTL)
}
