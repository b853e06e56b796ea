// Package config assembles the agent configuration from built-in defaults,
// the TOML config file, an optional .env file and PARTSYNC_* environment
// variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
)

// EnvPrefix prefixes every environment override, e.g. PARTSYNC_SYNC_INTERVAL.
const EnvPrefix = "partsync"

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all agent configuration.
type Config struct {
	API     APIConfig
	Sync    SyncConfig
	Network NetworkConfig
	Storage StorageConfig
	Redis   RedisConfig
	Control ControlConfig
}

// APIConfig holds remote API settings.
type APIConfig struct {
	BaseURL           string  `envconfig:"base_url"`
	RequestsPerSecond float64 `envconfig:"requests_per_second"`
	Burst             int     `envconfig:"burst"`
}

// SyncConfig holds sync driver settings.
type SyncConfig struct {
	Interval     time.Duration `envconfig:"interval"`
	SuccessReset time.Duration `envconfig:"success_reset"`
	ErrorReset   time.Duration `envconfig:"error_reset"`
	MaxRetries   int           `envconfig:"max_retries"`
	QueueCap     int           `envconfig:"queue_capacity"`
	CallTimeout  time.Duration `envconfig:"call_timeout"`
	Delta        bool          `envconfig:"delta"`
	HistoryKeep  int           `envconfig:"history_keep"`
}

// NetworkConfig holds connectivity monitor settings.
type NetworkConfig struct {
	ProbeInterval time.Duration `envconfig:"probe_interval"`
}

// StorageConfig selects where state is kept.
type StorageConfig struct {
	DataDir string `envconfig:"data_dir"`
	Cache   string `envconfig:"cache"`
	Queue   string `envconfig:"queue"`
}

// RedisConfig holds settings for the redis cache backend.
type RedisConfig struct {
	Addr     string `envconfig:"addr"`
	Password string `envconfig:"password"`
	DB       int    `envconfig:"db"`
	Prefix   string `envconfig:"prefix"`
}

// ControlConfig holds settings for the local control API.
type ControlConfig struct {
	Addr string `envconfig:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	sync := domain.DefaultSyncConfig()
	return &Config{
		API: APIConfig{
			BaseURL:           "http://localhost:8001/api",
			RequestsPerSecond: 10,
			Burst:             20,
		},
		Sync: SyncConfig{
			Interval:     sync.Interval,
			SuccessReset: sync.SuccessResetDelay,
			ErrorReset:   sync.ErrorResetDelay,
			MaxRetries:   sync.MaxRetries,
			QueueCap:     sync.QueueCapacity,
			CallTimeout:  sync.CallTimeout,
			Delta:        sync.Delta,
			HistoryKeep:  sync.HistoryKeep,
		},
		Network: NetworkConfig{ProbeInterval: 10 * time.Second},
		Storage: StorageConfig{Cache: BackendSQLite, Queue: BackendSQLite},
		Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "partsync:cache"},
		Control: ControlConfig{Addr: "127.0.0.1:8765"},
	}
}

// Load builds the configuration. store may be nil; envFile may be empty
// or point to a file that does not exist.
func Load(store driven.ConfigStore, envFile string) (*Config, error) {
	cfg := Default()
	if store != nil {
		cfg.ApplyStore(store)
	}

	if envFile != "" {
		// godotenv never overrides variables already set in the environment.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyStore overlays the values present in the config file.
func (c *Config) ApplyStore(store driven.ConfigStore) {
	str := func(key string, dst *string) {
		if _, ok := store.Get(key); ok {
			*dst = store.GetString(key)
		}
	}
	num := func(key string, dst *int) {
		if _, ok := store.Get(key); ok {
			*dst = store.GetInt(key)
		}
	}
	flt := func(key string, dst *float64) {
		if _, ok := store.Get(key); ok {
			*dst = store.GetFloat(key)
		}
	}
	dur := func(key string, dst *time.Duration) {
		if _, ok := store.Get(key); ok {
			*dst = store.GetDuration(key)
		}
	}
	flag := func(key string, dst *bool) {
		if _, ok := store.Get(key); ok {
			*dst = store.GetBool(key)
		}
	}

	str("api.base_url", &c.API.BaseURL)
	flt("api.requests_per_second", &c.API.RequestsPerSecond)
	num("api.burst", &c.API.Burst)

	dur("sync.interval", &c.Sync.Interval)
	dur("sync.success_reset", &c.Sync.SuccessReset)
	dur("sync.error_reset", &c.Sync.ErrorReset)
	num("sync.max_retries", &c.Sync.MaxRetries)
	num("sync.queue_capacity", &c.Sync.QueueCap)
	dur("sync.call_timeout", &c.Sync.CallTimeout)
	flag("sync.delta", &c.Sync.Delta)
	num("sync.history_keep", &c.Sync.HistoryKeep)

	dur("network.probe_interval", &c.Network.ProbeInterval)

	str("storage.data_dir", &c.Storage.DataDir)
	str("storage.cache", &c.Storage.Cache)
	str("storage.queue", &c.Storage.Queue)

	str("redis.addr", &c.Redis.Addr)
	str("redis.password", &c.Redis.Password)
	num("redis.db", &c.Redis.DB)
	str("redis.prefix", &c.Redis.Prefix)

	str("control.addr", &c.Control.Addr)
}

// Validate rejects settings the agent cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Cache {
	case BackendSQLite, BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("storage.cache %q: %w", c.Storage.Cache, domain.ErrInvalidInput)
	}
	switch c.Storage.Queue {
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("storage.queue %q: %w", c.Storage.Queue, domain.ErrInvalidInput)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is empty: %w", domain.ErrInvalidInput)
	}
	if c.Sync.Interval < 0 || c.Network.ProbeInterval < 0 {
		return fmt.Errorf("intervals must not be negative: %w", domain.ErrInvalidInput)
	}
	return nil
}

// SyncSettings converts the sync section for the driver. Zero fields take defaults.
func (c *Config) SyncSettings() domain.SyncConfig {
	return domain.SyncConfig{
		Interval:          c.Sync.Interval,
		SuccessResetDelay: c.Sync.SuccessReset,
		ErrorResetDelay:   c.Sync.ErrorReset,
		MaxRetries:        c.Sync.MaxRetries,
		QueueCapacity:     c.Sync.QueueCap,
		CallTimeout:       c.Sync.CallTimeout,
		Delta:             c.Sync.Delta,
		HistoryKeep:       c.Sync.HistoryKeep,
	}.WithDefaults()
}
