package memory

import (
	"context"
	"sync"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
)

// Ensure NotificationStore implements the interface.
var _ driven.NotificationStore = (*NotificationStore)(nil)

// NotificationStore is an in-memory implementation of driven.NotificationStore.
type NotificationStore struct {
	mu    sync.RWMutex
	items []domain.Notification
}

// NewNotificationStore creates a new in-memory notification store.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

// Add stores a notification.
func (s *NotificationStore) Add(_ context.Context, n *domain.Notification) error {
	if n == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, *n)
	return nil
}

// List returns notifications newest first. A non-positive limit returns all.
func (s *NotificationStore) List(_ context.Context, unreadOnly bool, limit int) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Notification
	for i := len(s.items) - 1; i >= 0; i-- {
		if unreadOnly && s.items[i].Read {
			continue
		}
		result = append(result, s.items[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// MarkRead flags one notification as read.
func (s *NotificationStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			return nil
		}
	}
	return domain.ErrNotFound
}

// MarkAllRead flags every notification as read.
func (s *NotificationStore) MarkAllRead(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].Read = true
	}
	return nil
}

// Clear deletes every notification.
func (s *NotificationStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return nil
}
