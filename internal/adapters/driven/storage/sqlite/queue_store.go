package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
)

// actionColumns is the column list shared by queue queries.
var actionColumns = []string{
	"seq", "id", "kind", "payload", "endpoint", "method",
	"status", "retry_count", "max_retries", "last_error", "created_at",
}

// queueStore implements driven.QueueStore.
type queueStore struct {
	store *Store
}

var _ driven.QueueStore = (*queueStore)(nil)

// Append inserts an action at the tail and assigns its sequence.
func (s *queueStore) Append(ctx context.Context, action *domain.OfflineAction) error {
	if action == nil {
		return domain.ErrInvalidInput
	}

	query, args, err := psql.Insert("offline_actions").
		Columns("id", "kind", "payload", "endpoint", "method",
			"status", "retry_count", "max_retries", "last_error", "created_at").
		Values(action.ID, string(action.Kind), nullString(string(action.Payload)),
			nullString(action.Endpoint), nullString(action.Method),
			string(action.Status), action.RetryCount, action.MaxRetries,
			nullString(action.LastError), formatTime(action.CreatedAt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("appending action: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading action sequence: %w", err)
	}
	action.Sequence = seq
	return nil
}

// Get retrieves an action by ID.
func (s *queueStore) Get(ctx context.Context, id string) (*domain.OfflineAction, error) {
	query, args, err := psql.Select(actionColumns...).
		From("offline_actions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	action, err := scanAction(s.store.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return action, nil
}

// List returns all actions in insertion order.
func (s *queueStore) List(ctx context.Context) ([]domain.OfflineAction, error) {
	query, args, err := psql.Select(actionColumns...).
		From("offline_actions").
		OrderBy("seq ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying actions: %w", err)
	}
	defer rows.Close()

	var actions []domain.OfflineAction //nolint:prealloc // size unknown from query
	for rows.Next() {
		action, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, *action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actions: %w", err)
	}

	return actions, nil
}

// Update applies the non-nil fields of patch.
func (s *queueStore) Update(ctx context.Context, id string, patch domain.ActionPatch) (bool, error) {
	set := map[string]interface{}{}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.RetryCount != nil {
		set["retry_count"] = *patch.RetryCount
	}
	if patch.LastError != nil {
		set["last_error"] = nullString(*patch.LastError)
	}
	if len(set) == 0 {
		var exists int
		err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM offline_actions WHERE id = ?", id).Scan(&exists)
		if err != nil {
			return false, fmt.Errorf("checking action: %w", err)
		}
		return exists > 0, nil
	}

	query, args, err := psql.Update("offline_actions").
		SetMap(set).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("building update: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("updating action: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n > 0, nil
}

// Claim flips a pending action to processing in a single statement.
func (s *queueStore) Claim(ctx context.Context, id string) (*domain.OfflineAction, bool, error) {
	query, args, err := psql.Update("offline_actions").
		Set("status", string(domain.ActionProcessing)).
		Where(sq.Eq{"id": id, "status": string(domain.ActionPending)}).
		Suffix("RETURNING " + strings.Join(actionColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("building claim: %w", err)
	}

	action, err := scanAction(s.store.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("claiming action: %w", err)
	}
	return action, true, nil
}

// Remove deletes an action.
func (s *queueStore) Remove(ctx context.Context, id string) (bool, error) {
	query, args, err := psql.Delete("offline_actions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("building delete: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("removing action: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of queued actions.
func (s *queueStore) Count(ctx context.Context) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From("offline_actions").ToSql()
	if err != nil {
		return 0, fmt.Errorf("building count: %w", err)
	}

	var n int
	if err := s.store.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting actions: %w", err)
	}
	return n, nil
}

// AcquireLease claims the drain_lease row when it is free, expired or
// already held by owner.
func (s *queueStore) AcquireLease(ctx context.Context, owner string, ttl time.Duration) (bool, error) {
	if owner == "" {
		return false, domain.ErrInvalidInput
	}
	now := time.Now()

	query, args, err := psql.Update("drain_lease").
		Set("owner", owner).
		Set("expires_at", now.Add(ttl).UnixMilli()).
		Where(sq.Eq{"id": 1}).
		Where(sq.Or{
			sq.Eq{"owner": ""},
			sq.Eq{"owner": owner},
			sq.Lt{"expires_at": now.UnixMilli()},
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("building lease update: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("acquiring drain lease: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n == 1, nil
}

// ReleaseLease frees the drain_lease row if owner holds it.
func (s *queueStore) ReleaseLease(ctx context.Context, owner string) error {
	query, args, err := psql.Update("drain_lease").
		Set("owner", "").
		Set("expires_at", 0).
		Where(sq.Eq{"id": 1, "owner": owner}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building lease release: %w", err)
	}
	if _, err := s.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("releasing drain lease: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAction scans one offline_actions row.
func scanAction(row rowScanner) (*domain.OfflineAction, error) {
	var action domain.OfflineAction
	var kind, status, createdAt string
	var payload, endpoint, method, lastError sql.NullString

	if err := row.Scan(&action.Sequence, &action.ID, &kind, &payload, &endpoint, &method,
		&status, &action.RetryCount, &action.MaxRetries, &lastError, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning action: %w", err)
	}

	action.Kind = domain.ActionKind(kind)
	action.Status = domain.ActionStatus(status)
	if payload.Valid {
		action.Payload = json.RawMessage(payload.String)
	}
	action.Endpoint = endpoint.String
	action.Method = method.String
	action.LastError = lastError.String
	action.CreatedAt = parseTime(createdAt)

	return &action, nil
}
