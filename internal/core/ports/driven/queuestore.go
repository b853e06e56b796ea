package driven

import (
	"context"
	"time"

	"github.com/alghazaly/partsync/internal/core/domain"
)

// QueueStore persists the offline action queue in insertion order.
type QueueStore interface {
	// Append stores a new action at the tail of the queue.
	// The store assigns Sequence.
	Append(ctx context.Context, action *domain.OfflineAction) error

	// Get retrieves an action by ID.
	// Returns domain.ErrNotFound if the action does not exist.
	Get(ctx context.Context, id string) (*domain.OfflineAction, error)

	// List returns all actions ordered by Sequence ascending.
	List(ctx context.Context) ([]domain.OfflineAction, error)

	// Update merges a patch into the action.
	// Returns false and no error if the action does not exist.
	Update(ctx context.Context, id string, patch domain.ActionPatch) (bool, error)

	// Claim moves a pending action to processing and returns the stored row.
	// Returns false and no error if the action is absent or not pending.
	Claim(ctx context.Context, id string) (*domain.OfflineAction, bool, error)

	// Remove deletes an action.
	// Returns false and no error if the action does not exist.
	Remove(ctx context.Context, id string) (bool, error)

	// Count returns the number of queued actions.
	Count(ctx context.Context) (int, error)

	// AcquireLease takes the drain lease for owner until ttl elapses.
	// The current owner may call it again to extend the lease.
	// Returns false and no error while another owner holds an unexpired lease.
	AcquireLease(ctx context.Context, owner string, ttl time.Duration) (bool, error)

	// ReleaseLease gives up the drain lease if owner holds it.
	ReleaseLease(ctx context.Context, owner string) error
}
