package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/dono/internal/apperrors"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv(YoutubeAPIKeyEnv, "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.YoutubeAPIKey)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 0, cfg.FetchRetries)
	assert.Equal(t, "localhost:50006", cfg.Addr())
	assert.Equal(t, "bolt", cfg.StoreDriver)
	assert.Equal(t, filepath.Join(dir, "history.db"), cfg.DatabaseFile)
	assert.NoError(t, cfg.RequireAPIKey())
}

func TestLoadSQLiteDriver(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("FETCH_RETRIES", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "history.sqlite"), cfg.DatabaseFile)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2, cfg.FetchRetries)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("STORE_DRIVER", "mysql")

	_, err := Load()
	assert.ErrorContains(t, err, "STORE_DRIVER")
}

func TestRequireAPIKey(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv(YoutubeAPIKeyEnv, "")

	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.RequireAPIKey()
	var cfgErr *apperrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, YoutubeAPIKeyEnv, cfgErr.Key)
}

func TestWriteTimeoutCoversFetchPolicy(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		retries int
		want    time.Duration
	}{
		{"defaults", 10 * time.Second, 0, 15 * time.Second},
		{"retries exceed the floor", 10 * time.Second, 3, 40*time.Second + 9*time.Second + 5*time.Second},
		{"single slow fetch", 30 * time.Second, 0, 35 * time.Second},
		{"no fetch timeout", 0, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{FetchTimeout: tt.timeout, FetchRetries: tt.retries}
			got := cfg.WriteTimeout()
			assert.Equal(t, tt.want, got)
			if tt.timeout > 0 {
				assert.Greater(t, got, tt.timeout*time.Duration(tt.retries+1))
			}
		})
	}
}
