package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
)

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// RecordRun logs a sync or drain run.
func (s *historyStore) RecordRun(ctx context.Context, run *domain.SyncRun) error {
	if run == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_runs (kind, started_at, ended_at, outcome, error, items_processed)
		VALUES (?, ?, ?, ?, ?, ?)
	`, string(run.Kind),
		formatTime(run.StartedAt),
		formatTime(run.EndedAt),
		string(run.Outcome),
		nullString(run.Error),
		run.ItemsProcessed)

	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// ListRuns returns recent runs, most recent first.
// An empty kind returns runs of every kind.
func (s *historyStore) ListRuns(ctx context.Context, kind domain.RunKind, limit int) ([]domain.SyncRun, error) {
	builder := psql.Select("kind", "started_at", "ended_at", "outcome", "error", "items_processed").
		From("sync_runs").
		OrderBy("id DESC")
	if kind != "" {
		builder = builder.Where(sq.Eq{"kind": string(kind)})
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
		return nil, fmt.Errorf("querying run history: %w", err)
	}
	defer rows.Close()

	var runs []domain.SyncRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run history: %w", err)
	}

	return runs, nil
}

// PruneRuns keeps the most recent 'keep' runs per kind.
func (s *historyStore) PruneRuns(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM sync_runs
		WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY kind ORDER BY id DESC) as rn
				FROM sync_runs
			) WHERE rn <= ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning run history: %w", err)
	}
	return nil
}

// scanRun scans a run from *sql.Rows.
func scanRun(rows *sql.Rows) (*domain.SyncRun, error) {
	var run domain.SyncRun
	var kind, startedAt, endedAt, outcome string
	var errMsg sql.NullString

	if err := rows.Scan(&kind, &startedAt, &endedAt,
		&outcome, &errMsg, &run.ItemsProcessed); err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	run.Kind = domain.RunKind(kind)
	run.StartedAt = parseTime(startedAt)
	run.EndedAt = parseTime(endedAt)
	run.Outcome = domain.RunOutcome(outcome)
	run.Error = errMsg.String

	return &run, nil
}
