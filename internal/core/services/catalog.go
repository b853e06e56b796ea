package services

import (
	"context"
	"fmt"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
	"github.com/alghazaly/partsync/internal/core/ports/driving"
)

// Ensure the read services implement their interfaces.
var (
	_ driving.CatalogService = (*CatalogService)(nil)
	_ driving.HistoryService = (*HistoryService)(nil)
)

// CatalogService reads the cached collections.
type CatalogService struct {
	cache driven.CacheStore
}

// NewCatalogService creates a catalog service.
func NewCatalogService(cache driven.CacheStore) *CatalogService {
	return &CatalogService{cache: cache}
}

// Collections describes the cached collections.
func (s *CatalogService) Collections(ctx context.Context) ([]domain.CollectionInfo, error) {
	return s.cache.Collections(ctx)
}

// Records returns one cached collection.
func (s *CatalogService) Records(ctx context.Context, c domain.Collection) ([]domain.Record, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("collection %q: %w", c, domain.ErrInvalidInput)
	}
	return s.cache.Records(ctx, c)
}

// HistoryService exposes the run history.
type HistoryService struct {
	store driven.HistoryStore
}

// NewHistoryService creates a history service.
func NewHistoryService(store driven.HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// Recent returns recent runs, most recent first. A non-positive limit means 20.
func (s *HistoryService) Recent(ctx context.Context, kind domain.RunKind, limit int) ([]domain.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.store.ListRuns(ctx, kind, limit)
}
