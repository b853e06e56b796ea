package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
	"github.com/alghazaly/partsync/internal/core/ports/driving"
)

// Ensure NotificationService implements the interface.
var _ driving.NotificationService = (*NotificationService)(nil)

// NotificationService records user-visible notifications.
type NotificationService struct {
	store driven.NotificationStore
	now   func() time.Time
}

// NewNotificationService creates a notification service.
func NewNotificationService(store driven.NotificationStore) *NotificationService {
	return &NotificationService{store: store, now: time.Now}
}

// Notify records a new notification.
func (s *NotificationService) Notify(
	ctx context.Context,
	t domain.NotificationType,
	title, message string,
) (*domain.Notification, error) {
	if title == "" {
		return nil, fmt.Errorf("notify: title: %w", domain.ErrInvalidInput)
	}
	if t == "" {
		t = domain.NotificationInfo
	}

	n := &domain.Notification{
		ID:        uuid.New().String(),
		Title:     title,
		Message:   message,
		Type:      t,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Add(ctx, n); err != nil {
		return nil, fmt.Errorf("add notification: %w", err)
	}
	return n, nil
}

// List returns notifications, newest first.
func (s *NotificationService) List(ctx context.Context, unreadOnly bool, limit int) ([]domain.Notification, error) {
	return s.store.List(ctx, unreadOnly, limit)
}

// MarkRead flags one notification, or all when id is empty.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return s.store.MarkAllRead(ctx)
	}
	return s.store.MarkRead(ctx, id)
}

// Clear deletes all notifications.
func (s *NotificationService) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}
