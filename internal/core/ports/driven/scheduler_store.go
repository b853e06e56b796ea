package driven

import (
	"context"

	"github.com/alghazaly/partsync/internal/core/domain"
)

// HistoryStore keeps a bounded log of cycles and drains.
type HistoryStore interface {
	// RecordRun logs a run result.
	RecordRun(ctx context.Context, run *domain.SyncRun) error

	// ListRuns returns recent runs, most recent first.
	// An empty kind lists runs of every kind.
	ListRuns(ctx context.Context, kind domain.RunKind, limit int) ([]domain.SyncRun, error)

	// PruneRuns removes old runs beyond the retention limit.
	// Keeps the most recent 'keep' runs per kind.
	PruneRuns(ctx context.Context, keep int) error
}

// NotificationStore persists in-app notifications.
type NotificationStore interface {
	// Add stores a notification.
	Add(ctx context.Context, n *domain.Notification) error

	// List returns notifications, newest first.
	// A limit of 0 returns all of them.
	List(ctx context.Context, unreadOnly bool, limit int) ([]domain.Notification, error)

	// MarkRead flags a notification as read.
	// Returns domain.ErrNotFound if it does not exist.
	MarkRead(ctx context.Context, id string) error

	// MarkAllRead flags every notification as read.
	MarkAllRead(ctx context.Context) error

	// Clear deletes all notifications.
	Clear(ctx context.Context) error
}
