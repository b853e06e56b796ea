package driven

import (
	"context"
	"time"

	"github.com/alghazaly/partsync/internal/core/domain"
)

// CacheStore persists cached collections fetched from the remote.
type CacheStore interface {
	// Replace swaps the whole collection for records and stores the cursor.
	Replace(ctx context.Context, c domain.Collection, records []domain.Record, cursor time.Time) error

	// Merge upserts records, removes deletedIDs and stores the cursor.
	Merge(ctx context.Context, c domain.Collection, records []domain.Record, deletedIDs []string, cursor time.Time) error

	// Records returns the cached records of a collection ordered by ID.
	// An uncached collection yields an empty slice.
	Records(ctx context.Context, c domain.Collection) ([]domain.Record, error)

	// Cursor returns the stored cursor, or the zero time when never fetched.
	Cursor(ctx context.Context, c domain.Collection) (time.Time, error)

	// Collections describes every cached collection.
	Collections(ctx context.Context) ([]domain.CollectionInfo, error)
}
