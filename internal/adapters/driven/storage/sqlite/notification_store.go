package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
)

// notificationStore implements driven.NotificationStore.
type notificationStore struct {
	store *Store
}

var _ driven.NotificationStore = (*notificationStore)(nil)

// Add stores a notification.
func (s *notificationStore) Add(ctx context.Context, n *domain.Notification) error {
	if n == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO notifications (id, title, message, type, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.ID, n.Title, nullString(n.Message), string(n.Type), boolToInt(n.Read), formatTime(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("adding notification: %w", err)
	}
	return nil
}

// List returns notifications newest first. A non-positive limit returns all.
func (s *notificationStore) List(ctx context.Context, unreadOnly bool, limit int) ([]domain.Notification, error) {
	builder := psql.Select("id", "title", "message", "type", "read", "created_at").
		From("notifications").
		OrderBy("seq DESC")
	if unreadOnly {
		builder = builder.Where(sq.Eq{"read": 0})
	}
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var items []domain.Notification //nolint:prealloc // size unknown from query
	for rows.Next() {
		var n domain.Notification
		var message sql.NullString
		var typ, createdAt string
		var read int
		if err := rows.Scan(&n.ID, &n.Title, &message, &typ, &read, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.Message = message.String
		n.Type = domain.NotificationType(typ)
		n.Read = read == 1
		n.CreatedAt = parseTime(createdAt)
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notifications: %w", err)
	}
	return items, nil
}

// MarkRead flags one notification as read.
func (s *notificationStore) MarkRead(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "UPDATE notifications SET read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkAllRead flags every notification as read.
func (s *notificationStore) MarkAllRead(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "UPDATE notifications SET read = 1"); err != nil {
		return fmt.Errorf("marking notifications read: %w", err)
	}
	return nil
}

// Clear deletes every notification.
func (s *notificationStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM notifications"); err != nil {
		return fmt.Errorf("clearing notifications: %w", err)
	}
	return nil
}
