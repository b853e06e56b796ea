package cli

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alghazaly/partsync/internal/adapters/driven/storage/memory"
	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/logger"
)

// fixedTime keeps text output stable across runs.
var fixedTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// mockQueueService implements driving.QueueService for testing.
type mockQueueService struct {
	mu       sync.Mutex
	actions  []domain.OfflineAction
	stats    domain.QueueStats
	enqueued []domain.EnqueueRequest
	removed  []string
	retried  []string
	err      error
}

func (m *mockQueueService) Enqueue(_ context.Context, req domain.EnqueueRequest) (*domain.OfflineAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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
		Status:     domain.ActionPending,
		MaxRetries: 3,
		CreatedAt:  fixedTime,
	}, nil
}

func (m *mockQueueService) Dequeue(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, id)
	return m.err
}

func (m *mockQueueService) UpdateStatus(_ context.Context, _ string, _ domain.ActionPatch) error {
	return m.err
}

func (m *mockQueueService) Get(_ context.Context, id string) (*domain.OfflineAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.actions {
		if m.actions[i].ID == id {
			a := m.actions[i]
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockQueueService) List(_ context.Context) ([]domain.OfflineAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.OfflineAction, len(m.actions))
	copy(out, m.actions)
	return out, m.err
}

func (m *mockQueueService) SetProcessing(bool) bool { return true }
func (m *mockQueueService) IsProcessing() bool      { return false }

func (m *mockQueueService) Claim(_ context.Context, _ string) (*domain.OfflineAction, bool, error) {
	return nil, false, m.err
}

func (m *mockQueueService) AcquireDrainLease(_ context.Context) (bool, error) { return true, nil }
func (m *mockQueueService) ReleaseDrainLease(_ context.Context) error         { return nil }

func (m *mockQueueService) RetryFailed(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retried = append(m.retried, id)
	if id == "" {
		return 2, m.err
	}
	return 1, m.err
}

func (m *mockQueueService) Stats(_ context.Context) (*domain.QueueStats, error) {
	s := m.stats
	return &s, m.err
}

func (m *mockQueueService) Recover(_ context.Context) (int, error) { return 0, nil }

// mockSyncDriver implements driving.SyncDriver for testing.
type mockSyncDriver struct {
	mu         sync.Mutex
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
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncCalls++
	if m.syncErr == nil {
		m.state.Status = domain.SyncSuccess
		m.state.LastSyncAt = fixedTime
	}
	return m.syncErr
}

func (m *mockSyncDriver) DrainQueue(_ context.Context) (*domain.DrainReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drainCalls++
	if m.drainErr != nil {
		return nil, m.drainErr
	}
	r := m.report
	return &r, nil
}

func (m *mockSyncDriver) State() domain.DriverState { return m.driver }

func (m *mockSyncDriver) SyncState() domain.SyncState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *mockSyncDriver) SetInterval(time.Duration) {}

// mockNetworkHandler records connectivity changes.
type mockNetworkHandler struct {
	changes []bool
}

func (m *mockNetworkHandler) HandleConnectivityChange(_ context.Context, online bool) {
	m.changes = append(m.changes, online)
}

// mockConnectivity answers probes with a fixed result.
type mockConnectivity struct {
	online  bool
	checks  int
	onCheck func()
}

func (m *mockConnectivity) Check(_ context.Context) bool {
	m.checks++
	if m.onCheck != nil {
		m.onCheck()
	}
	return m.online
}

// mockNotificationService implements driving.NotificationService for testing.
type mockNotificationService struct {
	items      []domain.Notification
	unreadOnly bool
	limit      int
	markedRead []string
	cleared    bool
	err        error
}

func (m *mockNotificationService) Notify(
	_ context.Context, t domain.NotificationType, title, message string,
) (*domain.Notification, error) {
	n := domain.Notification{ID: "n-new", Type: t, Title: title, Message: message, CreatedAt: fixedTime}
	m.items = append(m.items, n)
	return &n, m.err
}

func (m *mockNotificationService) List(_ context.Context, unreadOnly bool, limit int) ([]domain.Notification, error) {
	m.unreadOnly = unreadOnly
	m.limit = limit
	return m.items, m.err
}

func (m *mockNotificationService) MarkRead(_ context.Context, id string) error {
	m.markedRead = append(m.markedRead, id)
	return m.err
}

func (m *mockNotificationService) Clear(_ context.Context) error {
	m.cleared = true
	return m.err
}

// mockActorService implements driving.ActorService for testing.
type mockActorService struct {
	actor *domain.Actor
	err   error
}

func (m *mockActorService) Login(_ context.Context, a domain.Actor) error {
	if m.err != nil {
		return m.err
	}
	m.actor = &a
	return nil
}

func (m *mockActorService) Logout(_ context.Context) error {
	m.actor = nil
	return m.err
}

func (m *mockActorService) Current(_ context.Context) (*domain.Actor, error) {
	return m.actor, m.err
}

// mockCatalogService implements driving.CatalogService for testing.
type mockCatalogService struct {
	infos   []domain.CollectionInfo
	records map[domain.Collection][]domain.Record
	err     error
}

func (m *mockCatalogService) Collections(_ context.Context) ([]domain.CollectionInfo, error) {
	return m.infos, m.err
}

func (m *mockCatalogService) Records(_ context.Context, c domain.Collection) ([]domain.Record, error) {
	if !c.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	return m.records[c], m.err
}

// mockHistoryService implements driving.HistoryService for testing.
type mockHistoryService struct {
	runs  []domain.SyncRun
	kind  domain.RunKind
	limit int
	err   error
}

func (m *mockHistoryService) Recent(_ context.Context, kind domain.RunKind, limit int) ([]domain.SyncRun, error) {
	m.kind = kind
	m.limit = limit
	return m.runs, m.err
}

// testServices bundles the mocks wired by setupTestServices.
type testServices struct {
	queue         *mockQueueService
	driver        *mockSyncDriver
	network       *mockNetworkHandler
	connectivity  *mockConnectivity
	notifications *mockNotificationService
	actors        *mockActorService
	catalog       *mockCatalogService
	history       *mockHistoryService
	config        *memory.ConfigStore
}

// setupTestServices injects fresh mocks and restores the previous services on cleanup.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	old := Services{
		Queue:         queueService,
		Driver:        syncDriver,
		Network:       networkHandler,
		Connectivity:  connectivity,
		Notifications: notificationService,
		Actors:        actorService,
		Catalog:       catalogService,
		History:       historyService,
		Config:        configStore,
		Agent:         agentRunner,
	}
	t.Cleanup(func() { SetServices(old) })

	ts := &testServices{
		queue: &mockQueueService{},
		driver: &mockSyncDriver{
			driver: domain.DriverStopped,
			state:  domain.SyncState{Status: domain.SyncIdle, Online: true},
		},
		network:       &mockNetworkHandler{},
		connectivity:  &mockConnectivity{online: true},
		notifications: &mockNotificationService{},
		actors:        &mockActorService{},
		catalog:       &mockCatalogService{records: map[domain.Collection][]domain.Record{}},
		history:       &mockHistoryService{},
		config:        memory.NewConfigStore(),
	}
	SetServices(Services{
		Queue:         ts.queue,
		Driver:        ts.driver,
		Network:       ts.network,
		Connectivity:  ts.connectivity,
		Notifications: ts.notifications,
		Actors:        ts.actors,
		Catalog:       ts.catalog,
		History:       ts.history,
		Config:        ts.config,
	})
	return ts
}

// resetFlags returns every flag variable to its default.
func resetFlags() {
	verbose = false
	outputFormat = formatText
	logFormat = string(logger.FormatText)
	queueStatusFilter = ""
	queuePayload = ""
	queueEndpoint = ""
	queueMethod = ""
	actorID = ""
	actorName = ""
	actorRole = string(domain.RoleCustomer)
	actorTokenStdin = false
	notificationsUnread = false
	notificationsLimit = 20
	historyKind = ""
	historyLimit = 20
	agentControlAddr = ""
	agentNoControl = false
	agentMCPAddr = ""
}

// executeCommand runs the root command with args and returns combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCommandWithInput(t, "", args...)
}

// executeCommandWithInput runs the root command with input on stdin.
func executeCommandWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	resetFlags()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewBufferString(input))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags()
		logger.SetVerbose(false)
		logger.SetFormat(logger.FormatText)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
