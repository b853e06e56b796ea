package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// CacheStore is an in-memory implementation of driven.CacheStore.
type CacheStore struct {
	mu      sync.RWMutex
	records map[domain.Collection]map[string]domain.Record
	cursors map[domain.Collection]time.Time
}

// NewCacheStore creates a new in-memory cache store.
func NewCacheStore() *CacheStore {
	return &CacheStore{
		records: make(map[domain.Collection]map[string]domain.Record),
		cursors: make(map[domain.Collection]time.Time),
	}
}

// Replace swaps the whole collection.
func (s *CacheStore) Replace(_ context.Context, c domain.Collection, records []domain.Record, cursor time.Time) error {
	byID := make(map[string]domain.Record, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[c] = byID
	s.cursors[c] = cursor
	return nil
}

// Merge upserts records and removes deleted IDs.
func (s *CacheStore) Merge(
	_ context.Context,
	c domain.Collection,
	records []domain.Record,
	deletedIDs []string,
	cursor time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.records[c]
	if !ok {
		byID = make(map[string]domain.Record, len(records))
		s.records[c] = byID
	}
	for _, r := range records {
		byID[r.ID] = r
	}
	for _, id := range deletedIDs {
		delete(byID, id)
	}
	s.cursors[c] = cursor
	return nil
}

// Records returns the cached records ordered by ID.
func (s *CacheStore) Records(_ context.Context, c domain.Collection) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Record, 0, len(s.records[c]))
	for _, r := range s.records[c] {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Cursor returns the time of the last write, or zero time.
func (s *CacheStore) Cursor(_ context.Context, c domain.Collection) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursors[c], nil
}

// Collections describes every collection written at least once.
func (s *CacheStore) Collections(_ context.Context) ([]domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]domain.CollectionInfo, 0, len(s.cursors))
	for c, cursor := range s.cursors {
		infos = append(infos, domain.CollectionInfo{
			Collection: c,
			Count:      len(s.records[c]),
			Cursor:     cursor,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Collection < infos[j].Collection })
	return infos, nil
}
