package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "partsync")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(dir, FileName), store.Path())
}

func TestNewConfigStore_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName), []byte("sync = [broken"), 0600))

	_, err := NewConfigStore(tmpDir)
	assert.Error(t, err)
}

func TestConfigStore_ReadsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[api]
base_url = "https://shop.example.com/api"
requests_per_second = 2.5
burst = 5

[sync]
interval = "5m"
success_reset = 3
delta = true
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, FileName), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com/api", store.GetString("api.base_url"))
	assert.InDelta(t, 2.5, store.GetFloat("api.requests_per_second"), 0.0001)
	assert.InDelta(t, 5.0, store.GetFloat("api.burst"), 0.0001)
	assert.Equal(t, 5, store.GetInt("api.burst"))
	assert.Equal(t, 5*time.Minute, store.GetDuration("sync.interval"))
	assert.Equal(t, 3*time.Second, store.GetDuration("sync.success_reset"))
	assert.True(t, store.GetBool("sync.delta"))
	assert.Equal(t, []string{
		"api.base_url", "api.burst", "api.requests_per_second",
		"sync.delta", "sync.interval", "sync.success_reset",
	}, store.Keys())
}

func TestConfigStore_TypedGetters_WrongTypeOrMissing(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("name", "partsync"))
	require.NoError(t, store.Set("count", 42))
	require.NoError(t, store.Set("bad_duration", "soon"))

	assert.Equal(t, "", store.GetString("count"))
	assert.Equal(t, 0, store.GetInt("name"))
	assert.Zero(t, store.GetFloat("name"))
	assert.False(t, store.GetBool("name"))
	assert.Zero(t, store.GetDuration("bad_duration"))
	assert.Zero(t, store.GetDuration("missing"))

	val, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_SetWritesNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("sync.interval", 10*time.Minute))
	require.NoError(t, store.Set("storage.cache", "redis"))
	require.NoError(t, store.Set("redis.db", 2))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[sync]")
	assert.Contains(t, string(raw), "[storage]")
	assert.NotContains(t, string(raw), "sync.interval")

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, reopened.GetDuration("sync.interval"))
	assert.Equal(t, "redis", reopened.GetString("storage.cache"))
	assert.Equal(t, 2, reopened.GetInt("redis.db"))
}

func TestConfigStore_LoadPicksUpExternalEdits(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("sync.interval", "5m"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("[sync]\ninterval = \"1m\"\n"), 0600))
	require.NoError(t, store.Load())

	assert.Equal(t, time.Minute, store.GetDuration("sync.interval"))
}

func TestNestMap(t *testing.T) {
	got := nestMap(map[string]any{
		"a":     1,
		"a.b":   2,
		"c.d.e": "x",
		"c.f":   true,
	})

	assert.Equal(t, map[string]any{
		"a": 1,
		"c": map[string]any{
			"d": map[string]any{"e": "x"},
			"f": true,
		},
	}, got)
}

func TestFlattenMap(t *testing.T) {
	got := flattenMap(map[string]any{
		"sync": map[string]any{"interval": "5m"},
		"top":  int64(1),
	}, "")

	assert.Equal(t, map[string]any{"sync.interval": "5m", "top": int64(1)}, got)
}
