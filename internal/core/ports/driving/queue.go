package driving

import (
	"context"

	"github.com/alghazaly/partsync/internal/core/domain"
)

// QueueService manages the offline action queue.
type QueueService interface {
	// Enqueue appends a new pending action.
	// Returns domain.ErrInvalidInput for an unknown kind and domain.ErrQueueFull at capacity.
	Enqueue(ctx context.Context, req domain.EnqueueRequest) (*domain.OfflineAction, error)

	// Dequeue removes an action. Absent IDs are ignored.
	Dequeue(ctx context.Context, id string) error

	// UpdateStatus merges a patch into an action. Absent IDs are ignored.
	UpdateStatus(ctx context.Context, id string, patch domain.ActionPatch) error

	// Claim moves a pending action to processing and returns its stored state.
	// Returns false when the action was removed or is no longer pending.
	Claim(ctx context.Context, id string) (*domain.OfflineAction, bool, error)

	// Get returns a single action.
	Get(ctx context.Context, id string) (*domain.OfflineAction, error)

	// List returns the queue in insertion order.
	List(ctx context.Context) ([]domain.OfflineAction, error)

	// SetProcessing sets or clears the global drain flag.
	// Returns false when setting a flag that is already set.
	SetProcessing(on bool) bool

	// IsProcessing reports whether a drain holds the flag.
	IsProcessing() bool

	// AcquireDrainLease takes or renews the drain lease shared by every
	// process using the same store. Returns false while another holds it.
	AcquireDrainLease(ctx context.Context) (bool, error)

	// ReleaseDrainLease gives up the drain lease.
	ReleaseDrainLease(ctx context.Context) error

	// RetryFailed resets failed actions to pending with a fresh retry budget.
	// An empty id retries every failed action. Returns how many were reset.
	RetryFailed(ctx context.Context, id string) (int, error)

	// Stats summarises the queue.
	Stats(ctx context.Context) (*domain.QueueStats, error)

	// Recover returns actions stranded in processing to pending.
	Recover(ctx context.Context) (int, error)
}
