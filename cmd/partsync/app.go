package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/alghazaly/partsync/internal/adapters/driven/config/file"
	"github.com/alghazaly/partsync/internal/adapters/driven/remote"
	"github.com/alghazaly/partsync/internal/adapters/driven/storage/memory"
	"github.com/alghazaly/partsync/internal/adapters/driven/storage/redis"
	"github.com/alghazaly/partsync/internal/adapters/driven/storage/sqlite"
	"github.com/alghazaly/partsync/internal/adapters/driving/cli"
	"github.com/alghazaly/partsync/internal/adapters/driving/controlapi"
	"github.com/alghazaly/partsync/internal/adapters/driving/mcp"
	"github.com/alghazaly/partsync/internal/config"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
	"github.com/alghazaly/partsync/internal/core/services"
	"github.com/alghazaly/partsync/internal/logger"
)

// stores groups the driven storage ports selected by configuration.
type stores struct {
	queue         driven.QueueStore
	cache         driven.CacheStore
	state         driven.SyncStateStore
	actors        driven.ActorStore
	notifications driven.NotificationStore
	history       driven.HistoryStore
	closers       []io.Closer
}

// openStores builds the storage backends. SQLite holds state, actors,
// notifications and history unless both cache and queue run in memory.
func openStores(cfg *config.Config) (*stores, error) {
	s := &stores{}

	var db *sqlite.Store
	if cfg.Storage.Cache != config.BackendMemory || cfg.Storage.Queue != config.BackendMemory {
		var err error
		db, err = sqlite.NewStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		s.closers = append(s.closers, db)
	}

	if db != nil {
		s.state = db.SyncStateStore()
		s.actors = db.ActorStore()
		s.notifications = db.NotificationStore()
		s.history = db.HistoryStore()
	} else {
		s.state = memory.NewSyncStateStore()
		s.actors = memory.NewActorStore()
		s.notifications = memory.NewNotificationStore()
		s.history = memory.NewHistoryStore()
	}

	switch cfg.Storage.Queue {
	case config.BackendSQLite:
		s.queue = db.QueueStore()
	default:
		s.queue = memory.NewQueueStore()
	}

	switch cfg.Storage.Cache {
	case config.BackendSQLite:
		s.cache = db.CacheStore()
	case config.BackendRedis:
		rc, err := redis.NewCacheStore(redis.Config{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.Prefix,
		})
		if err != nil {
			s.Close()
			return nil, err
		}
		s.cache = rc
		s.closers = append(s.closers, rc)
	default:
		s.cache = memory.NewCacheStore()
	}

	return s, nil
}

// Close releases every backend, newest first.
func (s *stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// app is the composition root shared by every command.
type app struct {
	cfg           *config.Config
	envFile       string
	configStore   *file.ConfigStore
	stores        *stores
	client        *remote.Client
	queue         *services.QueueService
	driver        *services.SyncDriver
	network       *services.NetworkHandler
	monitor       *services.NetworkMonitor
	notifications *services.NotificationService
	actors        *services.ActorService
	catalog       *services.CatalogService
	history       *services.HistoryService
	log           *logger.Logger

	// interval is the sync interval in effect; only the config watcher updates it.
	interval time.Duration
}

// newApp loads configuration from ~/.partsync and wires the services.
func newApp(envFile string) (*app, error) {
	dir, err := file.DefaultDir()
	if err != nil {
		return nil, fmt.Errorf("resolving config directory: %w", err)
	}
	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	return newAppWithConfig(configStore, envFile)
}

func newAppWithConfig(configStore *file.ConfigStore, envFile string) (*app, error) {
	cfg, err := config.Load(configStore, envFile)
	if err != nil {
		return nil, err
	}

	st, err := openStores(cfg)
	if err != nil {
		return nil, err
	}

	syncCfg := cfg.SyncSettings()
	client := remote.NewClient(remote.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: syncCfg.CallTimeout,
		RateLimit: remote.RateLimitConfig{
			RequestsPerSecond: cfg.API.RequestsPerSecond,
			BurstSize:         cfg.API.Burst,
		},
	}, st.actors)

	queue := services.NewQueueService(st.queue, syncCfg)
	notifications := services.NewNotificationService(st.notifications)
	driver := services.NewSyncDriver(syncCfg, services.SyncDriverDeps{
		Queue:      queue,
		Dispatcher: services.NewActionDispatcher(client, client, client, client),
		Fetcher:    client,
		Cache:      st.cache,
		State:      st.state,
		Actors:     st.actors,
		History:    st.history,
		Notifier:   notifications,
	})
	network := services.NewNetworkHandler(driver)

	return &app{
		cfg:           cfg,
		envFile:       envFile,
		configStore:   configStore,
		stores:        st,
		client:        client,
		queue:         queue,
		driver:        driver,
		network:       network,
		monitor:       services.NewNetworkMonitor(client, network, cfg.Network.ProbeInterval),
		notifications: notifications,
		actors:        services.NewActorService(st.actors),
		catalog:       services.NewCatalogService(st.cache),
		history:       services.NewHistoryService(st.history),
		log:           logger.With("agent"),
		interval:      syncCfg.Interval,
	}, nil
}

// Close releases the storage backends.
func (a *app) Close() error {
	return a.stores.Close()
}

// services exposes the wired ports to the CLI.
func (a *app) services() cli.Services {
	return cli.Services{
		Queue:         a.queue,
		Driver:        a.driver,
		Network:       a.network,
		Connectivity:  a.monitor,
		Notifications: a.notifications,
		Actors:        a.actors,
		Catalog:       a.catalog,
		History:       a.history,
		Config:        a.configStore,
		Agent:         a.runAgent,
	}
}

// runAgent runs the long-lived agent until ctx is cancelled or a server fails.
// Servers are built before anything starts, so a bad option leaves nothing running.
func (a *app) runAgent(ctx context.Context, opts cli.AgentOptions) error {
	var control *controlapi.Server
	if !opts.DisableControl {
		addr := opts.ControlAddr
		if addr == "" {
			addr = a.cfg.Control.Addr
		}
		server, err := controlapi.NewServer(addr, &controlapi.Ports{
			Queue:         a.queue,
			Sync:          a.driver,
			Network:       a.network,
			Connectivity:  a.monitor,
			Notifications: a.notifications,
			Catalog:       a.catalog,
			History:       a.history,
		})
		if err != nil {
			return fmt.Errorf("control API: %w", err)
		}
		control = server
	}

	var assistant *mcp.Server
	if opts.MCPAddr != "" {
		server, err := mcp.NewServer(&mcp.Ports{Queue: a.queue, Sync: a.driver, Catalog: a.catalog})
		if err != nil {
			return fmt.Errorf("mcp: %w", err)
		}
		assistant = server
	}

	if n, err := a.queue.Recover(ctx); err != nil {
		return fmt.Errorf("recovering queue: %w", err)
	} else if n > 0 {
		a.log.Info("returned %d interrupted actions to pending", n)
	}

	if err := a.driver.Start(ctx); err != nil {
		return fmt.Errorf("starting sync driver: %w", err)
	}
	defer a.driver.Stop() //nolint:errcheck

	a.monitor.Start(ctx)
	defer a.monitor.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(runCtx); err != nil {
				errs <- fmt.Errorf("%s: %w", name, err)
				cancel()
			}
		}()
	}

	run("config watcher", file.NewWatcher(a.configStore, a.reloadConfig).Run)
	if control != nil {
		run("control API", control.Run)
	}
	if assistant != nil {
		run("mcp", func(ctx context.Context) error { return assistant.RunHTTP(ctx, opts.MCPAddr) })
	}

	<-runCtx.Done()
	wg.Wait()
	close(errs)
	return <-errs
}

// reloadConfig applies an edited config file. Only the sync interval
// changes while running; other settings apply on restart.
func (a *app) reloadConfig(store *file.ConfigStore) {
	cfg, err := config.Load(store, a.envFile)
	if err != nil {
		a.log.Warn("ignoring config change: %v", err)
		return
	}
	interval := cfg.SyncSettings().Interval
	if interval == a.interval {
		return
	}
	a.log.Info("sync interval changed to %s", interval)
	a.driver.SetInterval(interval)
	a.interval = interval
}
