package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
	"github.com/alghazaly/partsync/internal/core/ports/driving"
	"github.com/alghazaly/partsync/internal/logger"
)

// Ensure NetworkHandler implements the interface.
var _ driving.NetworkHandler = (*NetworkHandler)(nil)

// NetworkHandler turns connectivity changes into drains and sync cycles.
type NetworkHandler struct {
	driver *SyncDriver
	log    *logger.Logger
}

// NewNetworkHandler creates a handler bound to the driver.
func NewNetworkHandler(driver *SyncDriver) *NetworkHandler {
	return &NetworkHandler{
		driver: driver,
		log:    logger.With("network"),
	}
}

// HandleConnectivityChange records the new connectivity.
func (h *NetworkHandler) HandleConnectivityChange(ctx context.Context, online bool) {
	wasOnline := h.driver.setOnline(ctx, online)

	if !online {
		h.driver.wasOffline.Store(true)
		if wasOnline {
			h.log.Info("connection lost, queueing mutations")
		}
		return
	}

	if wasOnline {
		return
	}
	h.log.Info("connection restored")

	// The periodic cycle may have consumed the marker first.
	if h.driver.wasOffline.Swap(false) {
		if _, err := h.driver.DrainQueue(ctx); err != nil {
			h.log.Warn("drain after reconnect: %v", err)
		}
	}

	if err := h.driver.SyncNow(ctx); err != nil && !errors.Is(err, domain.ErrSyncInProgress) {
		h.log.Warn("sync after reconnect: %v", err)
	}
}

// probeTimeout bounds a single connectivity probe.
const probeTimeout = 5 * time.Second

// NetworkMonitor polls a connectivity probe and reports transitions.
type NetworkMonitor struct {
	probe    driven.ConnectivityProbe
	handler  driving.NetworkHandler
	interval time.Duration
	log      *logger.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	known   bool
	online  bool
}

// NewNetworkMonitor creates a monitor. A non-positive interval defaults to 10s.
func NewNetworkMonitor(
	probe driven.ConnectivityProbe,
	handler driving.NetworkHandler,
	interval time.Duration,
) *NetworkMonitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &NetworkMonitor{
		probe:    probe,
		handler:  handler,
		interval: interval,
		log:      logger.With("monitor"),
	}
}

// Start begins polling in the background.
func (m *NetworkMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	stopCh := m.stopCh
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			case <-ticker.C:
				m.Check(ctx)
			}
		}
	}()
}

// Stop ends polling and waits for the poller to exit.
func (m *NetworkMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	m.wg.Wait()
}

// Check probes once and forwards a change to the handler.
// The first observation is always forwarded.
func (m *NetworkMonitor) Check(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	online := m.probe.Probe(probeCtx)
	cancel()

	m.mu.Lock()
	changed := !m.known || m.online != online
	m.known = true
	m.online = online
	m.mu.Unlock()

	if changed {
		m.log.Debug("connectivity: online=%t", online)
		m.handler.HandleConnectivityChange(ctx, online)
	}
	return online
}
