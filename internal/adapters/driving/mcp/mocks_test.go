package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/alghazaly/partsync/internal/core/domain"
)

var fixedTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// mockQueueService is a mock implementation of driving.QueueService.
type mockQueueService struct {
	actions  []domain.OfflineAction
	stats    domain.QueueStats
	enqueued []domain.EnqueueRequest
	err      error
}

func (m *mockQueueService) Enqueue(_ context.Context, req domain.EnqueueRequest) (*domain.OfflineAction, error) {
	if m.err != nil {
		return nil, m.err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	m.enqueued = append(m.enqueued, req)
	return &domain.OfflineAction{
		ID:         fmt.Sprintf("action-%d", len(m.enqueued)),
		Kind:       req.Kind,
		Payload:    req.Payload,
		Endpoint:   req.Endpoint,
		Method:     req.Method,
		Status:     domain.ActionPending,
		MaxRetries: 3,
		CreatedAt:  fixedTime,
	}, nil
}

func (m *mockQueueService) Dequeue(_ context.Context, _ string) error { return m.err }

func (m *mockQueueService) UpdateStatus(_ context.Context, _ string, _ domain.ActionPatch) error {
	return m.err
}

func (m *mockQueueService) Get(_ context.Context, _ string) (*domain.OfflineAction, error) {
	return nil, domain.ErrNotFound
}

func (m *mockQueueService) List(_ context.Context) ([]domain.OfflineAction, error) {
	return m.actions, m.err
}

func (m *mockQueueService) SetProcessing(bool) bool { return true }
func (m *mockQueueService) IsProcessing() bool      { return false }

func (m *mockQueueService) Claim(_ context.Context, _ string) (*domain.OfflineAction, bool, error) {
	return nil, false, m.err
}

func (m *mockQueueService) AcquireDrainLease(_ context.Context) (bool, error) { return true, nil }
func (m *mockQueueService) ReleaseDrainLease(_ context.Context) error         { return nil }

func (m *mockQueueService) RetryFailed(_ context.Context, _ string) (int, error) { return 0, m.err }

func (m *mockQueueService) Stats(_ context.Context) (*domain.QueueStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.stats
	return &s, nil
}

func (m *mockQueueService) Recover(_ context.Context) (int, error) { return 0, nil }

// mockSyncDriver is a mock implementation of driving.SyncDriver.
type mockSyncDriver struct {
	state      domain.SyncState
	driver     domain.DriverState
	report     domain.DrainReport
	syncErr    error
	drainErr   error
	syncCalls  int
	drainCalls int
}

func (m *mockSyncDriver) Start(_ context.Context) error { return nil }
func (m *mockSyncDriver) Stop() error                   { return nil }

func (m *mockSyncDriver) SyncNow(_ context.Context) error {
	m.syncCalls++
	if m.syncErr == nil {
		m.state.Status = domain.SyncSuccess
		m.state.LastSyncAt = fixedTime
	}
	return m.syncErr
}

func (m *mockSyncDriver) DrainQueue(_ context.Context) (*domain.DrainReport, error) {
	m.drainCalls++
	if m.drainErr != nil {
		return nil, m.drainErr
	}
	r := m.report
	return &r, nil
}

func (m *mockSyncDriver) State() domain.DriverState   { return m.driver }
func (m *mockSyncDriver) SyncState() domain.SyncState { return m.state }
func (m *mockSyncDriver) SetInterval(time.Duration)   {}

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	records map[domain.Collection][]domain.Record
	err     error
}

func (m *mockCatalogService) Collections(_ context.Context) ([]domain.CollectionInfo, error) {
	return nil, m.err
}

func (m *mockCatalogService) Records(_ context.Context, c domain.Collection) ([]domain.Record, error) {
	return m.records[c], m.err
}

func newTestPorts() (*Ports, *mockQueueService, *mockSyncDriver) {
	queue := &mockQueueService{}
	driver := &mockSyncDriver{driver: domain.DriverRunning}
	return &Ports{Queue: queue, Sync: driver}, queue, driver
}
