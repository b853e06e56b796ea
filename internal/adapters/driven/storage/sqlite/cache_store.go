package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
)

// cacheStore implements driven.CacheStore.
type cacheStore struct {
	store *Store
}

var _ driven.CacheStore = (*cacheStore)(nil)

// Replace swaps the whole collection in one transaction.
func (s *cacheStore) Replace(ctx context.Context, c domain.Collection, records []domain.Record, cursor time.Time) error {
	return s.write(ctx, c, cursor, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM cache_records WHERE collection = ?", string(c)); err != nil {
			return fmt.Errorf("clearing %s: %w", c, err)
		}
		return upsertRecords(ctx, tx, c, records)
	})
}

// Merge upserts records and removes deleted IDs.
func (s *cacheStore) Merge(
	ctx context.Context,
	c domain.Collection,
	records []domain.Record,
	deletedIDs []string,
	cursor time.Time,
) error {
	return s.write(ctx, c, cursor, func(tx *sql.Tx) error {
		if err := upsertRecords(ctx, tx, c, records); err != nil {
			return err
		}
		if len(deletedIDs) == 0 {
			return nil
		}
		query, args, err := psql.Delete("cache_records").
			Where(sq.Eq{"collection": string(c), "id": deletedIDs}).
			ToSql()
		if err != nil {
			return fmt.Errorf("building delete: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("deleting %s records: %w", c, err)
		}
		return nil
	})
}

// write runs fn and records the cursor atomically.
func (s *cacheStore) write(ctx context.Context, c domain.Collection, cursor time.Time, fn func(*sql.Tx) error) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cache_cursors (collection, fetched_at) VALUES (?, ?)
		ON CONFLICT(collection) DO UPDATE SET fetched_at = excluded.fetched_at
	`, string(c), formatTime(cursor))
	if err != nil {
		return fmt.Errorf("saving %s cursor: %w", c, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", c, err)
	}
	return nil
}

func upsertRecords(ctx context.Context, tx *sql.Tx, c domain.Collection, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cache_records (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET data = excluded.data
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, string(c), r.ID, string(r.Data)); err != nil {
			return fmt.Errorf("storing %s/%s: %w", c, r.ID, err)
		}
	}
	return nil
}

// Records returns the cached records ordered by ID.
func (s *cacheStore) Records(ctx context.Context, c domain.Collection) ([]domain.Record, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id, data FROM cache_records WHERE collection = ? ORDER BY id", string(c))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", c, err)
	}
	defer rows.Close()

	records := []domain.Record{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, domain.Record{ID: id, Data: json.RawMessage(data)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", c, err)
	}
	return records, nil
}

// Cursor returns the time of the last successful write, or zero time.
func (s *cacheStore) Cursor(ctx context.Context, c domain.Collection) (time.Time, error) {
	var fetchedAt string
	err := s.store.db.QueryRowContext(ctx,
		"SELECT fetched_at FROM cache_cursors WHERE collection = ?", string(c)).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading %s cursor: %w", c, err)
	}
	return parseTime(fetchedAt), nil
}

// Collections describes every collection that has been written at least once.
func (s *cacheStore) Collections(ctx context.Context) ([]domain.CollectionInfo, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT c.collection, c.fetched_at, COUNT(r.id)
		FROM cache_cursors c
		LEFT JOIN cache_records r ON r.collection = c.collection
		GROUP BY c.collection, c.fetched_at
		ORDER BY c.collection
	`)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var infos []domain.CollectionInfo //nolint:prealloc // size unknown from query
	for rows.Next() {
		var name, fetchedAt string
		var info domain.CollectionInfo
		if err := rows.Scan(&name, &fetchedAt, &info.Count); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		info.Collection = domain.Collection(name)
		info.Cursor = parseTime(fetchedAt)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}
	return infos, nil
}
