package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
)

// Ensure QueueStore implements the interface.
var _ driven.QueueStore = (*QueueStore)(nil)

// QueueStore is an in-memory implementation of driven.QueueStore.
type QueueStore struct {
	mu      sync.RWMutex
	actions []domain.OfflineAction
	seq     int64

	leaseOwner   string
	leaseExpires time.Time
}

// NewQueueStore creates a new in-memory queue store.
func NewQueueStore() *QueueStore {
	return &QueueStore{}
}

// Append adds an action at the tail and assigns its sequence.
func (s *QueueStore) Append(_ context.Context, action *domain.OfflineAction) error {
	if action == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.actions {
		if s.actions[i].ID == action.ID {
			return domain.ErrInvalidInput
		}
	}
	s.seq++
	action.Sequence = s.seq
	s.actions = append(s.actions, *action)
	return nil
}

// Get retrieves an action by ID.
func (s *QueueStore) Get(_ context.Context, id string) (*domain.OfflineAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		action := s.actions[i]
		return &action, nil
	}
	return nil, domain.ErrNotFound
}

// List returns a copy of the queue in insertion order.
func (s *QueueStore) List(_ context.Context) ([]domain.OfflineAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.OfflineAction, len(s.actions))
	copy(result, s.actions)
	return result, nil
}

// Update applies a patch in place.
func (s *QueueStore) Update(_ context.Context, id string, patch domain.ActionPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	patch.Apply(&s.actions[i])
	return true, nil
}

// Claim moves a pending action to processing.
func (s *QueueStore) Claim(_ context.Context, id string) (*domain.OfflineAction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 || s.actions[i].Status != domain.ActionPending {
		return nil, false, nil
	}
	s.actions[i].Status = domain.ActionProcessing
	action := s.actions[i]
	return &action, true, nil
}

// Remove deletes an action.
func (s *QueueStore) Remove(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return false, nil
	}
	s.actions = append(s.actions[:i], s.actions[i+1:]...)
	return true, nil
}

// Count returns the number of queued actions.
func (s *QueueStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.actions), nil
}

// AcquireLease takes or extends the drain lease.
func (s *QueueStore) AcquireLease(_ context.Context, owner string, ttl time.Duration) (bool, error) {
	if owner == "" {
		return false, domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if s.leaseOwner != "" && s.leaseOwner != owner && now.Before(s.leaseExpires) {
		return false, nil
	}
	s.leaseOwner = owner
	s.leaseExpires = now.Add(ttl)
	return true, nil
}

// ReleaseLease frees the drain lease if owner holds it.
func (s *QueueStore) ReleaseLease(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.leaseOwner == owner {
		s.leaseOwner = ""
		s.leaseExpires = time.Time{}
	}
	return nil
}

// index returns the position of id, or -1 (caller must hold mu).
func (s *QueueStore) index(id string) int {
	for i := range s.actions {
		if s.actions[i].ID == id {
			return i
		}
	}
	return -1
}
