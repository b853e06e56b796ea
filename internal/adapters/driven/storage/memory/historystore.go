package memory

import (
	"context"
	"sync"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu   sync.RWMutex
	runs []domain.SyncRun
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// RecordRun appends a run.
func (s *HistoryStore) RecordRun(_ context.Context, run *domain.SyncRun) error {
	if run == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, *run)
	return nil
}

// ListRuns returns recent runs, most recent first.
func (s *HistoryStore) ListRuns(_ context.Context, kind domain.RunKind, limit int) ([]domain.SyncRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.SyncRun
	for i := len(s.runs) - 1; i >= 0; i-- {
		if kind != "" && s.runs[i].Kind != kind {
			continue
		}
		result = append(result, s.runs[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// PruneRuns keeps the most recent 'keep' runs per kind.
func (s *HistoryStore) PruneRuns(_ context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[domain.RunKind]int)
	kept := make([]domain.SyncRun, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0; i-- {
		kind := s.runs[i].Kind
		if seen[kind] >= keep {
			continue
		}
		seen[kind]++
		kept = append(kept, s.runs[i])
	}
	// Restore chronological order.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	s.runs = kept
	return nil
}
