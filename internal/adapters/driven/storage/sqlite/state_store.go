package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
)

// ==================== Sync State Store ====================

// syncStateStore implements driven.SyncStateStore.
type syncStateStore struct {
	store *Store
}

var _ driven.SyncStateStore = (*syncStateStore)(nil)

// Save stores the sync state.
func (s *syncStateStore) Save(ctx context.Context, state domain.SyncState) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_state (id, status, last_error, last_sync_at, online)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			last_error = excluded.last_error,
			last_sync_at = excluded.last_sync_at,
			online = excluded.online
	`, string(state.Status), nullString(state.LastError),
		formatNullableTime(state.LastSyncAt), boolToInt(state.Online))
	if err != nil {
		return fmt.Errorf("saving sync state: %w", err)
	}
	return nil
}

// Get retrieves the saved sync state.
func (s *syncStateStore) Get(ctx context.Context) (*domain.SyncState, error) {
	var state domain.SyncState
	var status string
	var lastError, lastSyncAt sql.NullString
	var online int

	err := s.store.db.QueryRowContext(ctx,
		"SELECT status, last_error, last_sync_at, online FROM sync_state WHERE id = 1",
	).Scan(&status, &lastError, &lastSyncAt, &online)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting sync state: %w", err)
	}

	state.Status = domain.SyncStatus(status)
	state.LastError = lastError.String
	state.LastSyncAt = parseNullableTime(lastSyncAt)
	state.Online = online == 1
	return &state, nil
}

// ==================== Actor Store ====================

// actorStore implements driven.ActorStore.
type actorStore struct {
	store *Store
}

var _ driven.ActorStore = (*actorStore)(nil)

// Save stores the authenticated actor, replacing any previous one.
func (s *actorStore) Save(ctx context.Context, actor domain.Actor) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO actor (id, actor_id, name, role, token)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			actor_id = excluded.actor_id,
			name = excluded.name,
			role = excluded.role,
			token = excluded.token
	`, actor.ID, nullString(actor.Name), string(actor.Role), actor.Token)
	if err != nil {
		return fmt.Errorf("saving actor: %w", err)
	}
	return nil
}

// Get returns the actor, or nil and no error when logged out.
func (s *actorStore) Get(ctx context.Context) (*domain.Actor, error) {
	var actor domain.Actor
	var name sql.NullString
	var role string

	err := s.store.db.QueryRowContext(ctx,
		"SELECT actor_id, name, role, token FROM actor WHERE id = 1",
	).Scan(&actor.ID, &name, &role, &actor.Token)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting actor: %w", err)
	}

	actor.Name = name.String
	actor.Role = domain.Role(role)
	return &actor, nil
}

// Clear removes the actor.
func (s *actorStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM actor"); err != nil {
		return fmt.Errorf("clearing actor: %w", err)
	}
	return nil
}
