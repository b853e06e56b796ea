package driving

import (
	"context"
	"time"

	"github.com/alghazaly/partsync/internal/core/domain"
)

// SyncDriver reconciles the local cache with the remote and drains the queue.
type SyncDriver interface {
	// Start runs one full-sync cycle and arms the periodic ticker.
	// It does not block. Starting a running driver is a no-op.
	Start(ctx context.Context) error

	// Stop cancels the ticker and waits for in-flight work.
	Stop() error

	// SyncNow runs a full-sync cycle outside the ticker.
	// Returns domain.ErrSyncInProgress if a cycle is already running
	// and domain.ErrOffline when the device is offline.
	SyncNow(ctx context.Context) error

	// DrainQueue replays queued actions once.
	DrainQueue(ctx context.Context) (*domain.DrainReport, error)

	// State returns the driver lifecycle state.
	State() domain.DriverState

	// SyncState returns a snapshot of the sync status.
	SyncState() domain.SyncState

	// SetInterval changes the ticker interval, effective immediately when running.
	SetInterval(d time.Duration)
}

// NetworkHandler bridges connectivity changes into the driver.
type NetworkHandler interface {
	// HandleConnectivityChange records the new connectivity.
	// Coming back online drains the queue then runs a full-sync cycle.
	HandleConnectivityChange(ctx context.Context, online bool)
}
