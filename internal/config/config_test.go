package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alghazaly/partsync/internal/adapters/driven/storage/memory"
	"github.com/alghazaly/partsync/internal/core/domain"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, domain.DefaultSyncConfig(), cfg.SyncSettings())
	assert.Equal(t, BackendSQLite, cfg.Storage.Cache)
	assert.Equal(t, "127.0.0.1:8765", cfg.Control.Addr)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set("api.base_url", "https://shop.example.com/api"))
	require.NoError(t, store.Set("api.requests_per_second", 2.5))
	require.NoError(t, store.Set("sync.interval", "5m"))
	require.NoError(t, store.Set("sync.max_retries", int64(7)))
	require.NoError(t, store.Set("sync.delta", true))
	require.NoError(t, store.Set("storage.cache", "redis"))
	require.NoError(t, store.Set("redis.db", int64(3)))

	cfg, err := Load(store, "")
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com/api", cfg.API.BaseURL)
	assert.InDelta(t, 2.5, cfg.API.RequestsPerSecond, 0.0001)
	assert.Equal(t, 20, cfg.API.Burst)
	assert.Equal(t, 5*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, 7, cfg.Sync.MaxRetries)
	assert.True(t, cfg.Sync.Delta)
	assert.Equal(t, BackendRedis, cfg.Storage.Cache)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 3*time.Second, cfg.Sync.SuccessReset)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set("sync.interval", "5m"))
	require.NoError(t, store.Set("storage.queue", "sqlite"))

	t.Setenv("PARTSYNC_SYNC_INTERVAL", "30s")
	t.Setenv("PARTSYNC_STORAGE_QUEUE", "memory")
	t.Setenv("PARTSYNC_API_BURST", "4")
	t.Setenv("PARTSYNC_SYNC_DELTA", "true")

	cfg, err := Load(store, "")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Sync.Interval)
	assert.Equal(t, BackendMemory, cfg.Storage.Queue)
	assert.Equal(t, 4, cfg.API.Burst)
	assert.True(t, cfg.Sync.Delta)
}

func TestLoad_DotEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "PARTSYNC_CONTROL_ADDR=127.0.0.1:9999\nPARTSYNC_REDIS_PREFIX=fromfile\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("PARTSYNC_CONTROL_ADDR") })

	// A variable already in the environment wins over the .env file.
	t.Setenv("PARTSYNC_REDIS_PREFIX", "fromenv")

	cfg, err := Load(nil, envFile)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Control.Addr)
	assert.Equal(t, "fromenv", cfg.Redis.Prefix)
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	t.Setenv("PARTSYNC_SYNC_INTERVAL", "often")

	_, err := Load(nil, "")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"memory cache", func(c *Config) { c.Storage.Cache = BackendMemory }, false},
		{"unknown cache", func(c *Config) { c.Storage.Cache = "mongo" }, true},
		{"redis queue", func(c *Config) { c.Storage.Queue = BackendRedis }, true},
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, true},
		{"negative interval", func(c *Config) { c.Sync.Interval = -time.Second }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSyncSettings_FillsZeroFields(t *testing.T) {
	cfg := Default()
	cfg.Sync = SyncConfig{Interval: time.Minute}

	got := cfg.SyncSettings()
	assert.Equal(t, time.Minute, got.Interval)
	assert.Equal(t, domain.DefaultSyncConfig().MaxRetries, got.MaxRetries)
	assert.Equal(t, domain.DefaultSyncConfig().CallTimeout, got.CallTimeout)
}
