package domain

import "time"

// SyncStatus is the outcome of the most recent full-sync attempt.
type SyncStatus string

const (
	// SyncIdle means nothing to report.
	SyncIdle SyncStatus = "idle"
	// SyncSyncing means a full-sync cycle is in flight.
	SyncSyncing SyncStatus = "syncing"
	// SyncSuccess means the last cycle completed.
	SyncSuccess SyncStatus = "success"
	// SyncError means the last cycle failed.
	SyncError SyncStatus = "error"
)

// SyncState is the process-wide status shown to the user.
type SyncState struct {
	// Status is the current sync status.
	Status SyncStatus `json:"status" yaml:"status"`

	// LastError is the message of the last failed cycle.
	LastError string `json:"last_error,omitempty" yaml:"last_error,omitempty"`

	// LastSyncAt is when the last cycle succeeded.
	LastSyncAt time.Time `json:"last_sync_at" yaml:"last_sync_at"`

	// Online is the last known connectivity.
	Online bool `json:"online" yaml:"online"`
}

// DriverState is the lifecycle state of the sync driver.
type DriverState string

const (
	// DriverStopped is the initial state.
	DriverStopped DriverState = "stopped"
	// DriverRunning is idle between ticks.
	DriverRunning DriverState = "running"
	// DriverSyncing has a full-sync cycle in flight.
	DriverSyncing DriverState = "syncing"
	// DriverDraining is replaying offline actions.
	DriverDraining DriverState = "draining"
)

// SyncConfig holds the sync driver and queue configuration.
type SyncConfig struct {
	// Interval between periodic full-sync cycles.
	Interval time.Duration

	// SuccessResetDelay is how long a success state stays visible.
	SuccessResetDelay time.Duration

	// ErrorResetDelay is how long an error state stays visible.
	ErrorResetDelay time.Duration

	// MaxRetries is the retry budget given to new actions.
	MaxRetries int

	// QueueCapacity is the maximum number of queued actions.
	QueueCapacity int

	// CallTimeout bounds every remote call.
	CallTimeout time.Duration

	// Delta enables incremental fetches for collections that support them.
	Delta bool

	// HistoryKeep is how many history runs are retained per kind.
	HistoryKeep int
}

// DefaultSyncConfig returns sensible defaults for the sync driver.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		Interval:          60 * time.Second,
		SuccessResetDelay: 3 * time.Second,
		ErrorResetDelay:   5 * time.Second,
		MaxRetries:        3,
		QueueCapacity:     100,
		CallTimeout:       30 * time.Second,
		Delta:             false,
		HistoryKeep:       100,
	}
}

// WithDefaults fills zero fields from DefaultSyncConfig.
func (c SyncConfig) WithDefaults() SyncConfig {
	def := DefaultSyncConfig()
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if c.SuccessResetDelay <= 0 {
		c.SuccessResetDelay = def.SuccessResetDelay
	}
	if c.ErrorResetDelay <= 0 {
		c.ErrorResetDelay = def.ErrorResetDelay
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = def.QueueCapacity
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = def.CallTimeout
	}
	if c.HistoryKeep <= 0 {
		c.HistoryKeep = def.HistoryKeep
	}
	return c
}
