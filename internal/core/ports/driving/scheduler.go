package driving

import (
	"context"

	"github.com/alghazaly/partsync/internal/core/domain"
)

// HistoryService exposes the run history.
type HistoryService interface {
	// Recent returns recent runs, most recent first.
	Recent(ctx context.Context, kind domain.RunKind, limit int) ([]domain.SyncRun, error)
}

// NotificationService manages in-app notifications.
type NotificationService interface {
	// Notify records a new notification.
	Notify(ctx context.Context, t domain.NotificationType, title, message string) (*domain.Notification, error)

	// List returns notifications, newest first.
	List(ctx context.Context, unreadOnly bool, limit int) ([]domain.Notification, error)

	// MarkRead flags one notification, or all when id is empty.
	MarkRead(ctx context.Context, id string) error

	// Clear deletes all notifications.
	Clear(ctx context.Context) error
}

// ActorService manages the authenticated actor.
type ActorService interface {
	// Login stores the actor used for remote calls.
	Login(ctx context.Context, actor domain.Actor) error

	// Logout forgets the actor.
	Logout(ctx context.Context) error

	// Current returns the actor, or nil when logged out.
	Current(ctx context.Context) (*domain.Actor, error)
}

// CatalogService reads the cached collections.
type CatalogService interface {
	// Collections describes the cached collections.
	Collections(ctx context.Context) ([]domain.CollectionInfo, error)

	// Records returns one cached collection.
	Records(ctx context.Context, c domain.Collection) ([]domain.Record, error)
}
