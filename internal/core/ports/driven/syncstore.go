package driven

import (
	"context"

	"github.com/alghazaly/partsync/internal/core/domain"
)

// SyncStateStore persists the sync state across restarts.
type SyncStateStore interface {
	// Save stores or updates sync state.
	Save(ctx context.Context, state domain.SyncState) error

	// Get retrieves the stored sync state.
	// Returns domain.ErrNotFound when nothing was saved yet.
	Get(ctx context.Context) (*domain.SyncState, error)
}

// ActorStore persists the authenticated actor.
type ActorStore interface {
	// Save stores the actor, replacing any previous one.
	Save(ctx context.Context, actor domain.Actor) error

	// Get returns the stored actor.
	// Returns nil and no error when nobody is logged in.
	Get(ctx context.Context) (*domain.Actor, error)

	// Clear removes the stored actor.
	Clear(ctx context.Context) error
}
