package memory

import (
	"context"
	"sync"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
)

// Ensure the stores implement their interfaces.
var (
	_ driven.SyncStateStore = (*SyncStateStore)(nil)
	_ driven.ActorStore     = (*ActorStore)(nil)
)

// SyncStateStore is an in-memory implementation of driven.SyncStateStore.
type SyncStateStore struct {
	mu    sync.RWMutex
	state *domain.SyncState
}

// NewSyncStateStore creates a new in-memory sync state store.
func NewSyncStateStore() *SyncStateStore {
	return &SyncStateStore{}
}

// Save stores the sync state.
func (s *SyncStateStore) Save(_ context.Context, state domain.SyncState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = &state
	return nil
}

// Get retrieves the sync state.
func (s *SyncStateStore) Get(_ context.Context) (*domain.SyncState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, domain.ErrNotFound
	}
	state := *s.state
	return &state, nil
}

// ActorStore is an in-memory implementation of driven.ActorStore.
type ActorStore struct {
	mu    sync.RWMutex
	actor *domain.Actor
}

// NewActorStore creates a new in-memory actor store.
func NewActorStore() *ActorStore {
	return &ActorStore{}
}

// Save stores the actor.
func (s *ActorStore) Save(_ context.Context, actor domain.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actor = &actor
	return nil
}

// Get returns the actor, or nil when logged out.
func (s *ActorStore) Get(_ context.Context) (*domain.Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.actor == nil {
		return nil, nil
	}
	actor := *s.actor
	return &actor, nil
}

// Clear removes the actor.
func (s *ActorStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actor = nil
	return nil
}
