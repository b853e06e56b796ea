package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
)

// --- Mock implementations for service testing ---

// mockQueueStore implements driven.QueueStore for testing.
type mockQueueStore struct {
	mu      sync.Mutex
	actions []domain.OfflineAction
	seq     int64
	listErr error
	addErr  error

	leaseOwner string
	leaseErr   error
}

func newMockQueueStore() *mockQueueStore {
	return &mockQueueStore{}
}

func (m *mockQueueStore) Append(_ context.Context, action *domain.OfflineAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.seq++
	action.Sequence = m.seq
	m.actions = append(m.actions, *action)
	return nil
}

func (m *mockQueueStore) Get(_ context.Context, id string) (*domain.OfflineAction, error) {
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

func (m *mockQueueStore) List(_ context.Context) ([]domain.OfflineAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.OfflineAction, len(m.actions))
	copy(out, m.actions)
	return out, nil
}

func (m *mockQueueStore) Update(_ context.Context, id string, patch domain.ActionPatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.actions {
		if m.actions[i].ID == id {
			patch.Apply(&m.actions[i])
			return true, nil
		}
	}
	return false, nil
}

func (m *mockQueueStore) Remove(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.actions {
		if m.actions[i].ID == id {
			m.actions = append(m.actions[:i], m.actions[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockQueueStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.actions), nil
}

func (m *mockQueueStore) Claim(_ context.Context, id string) (*domain.OfflineAction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.actions {
		if m.actions[i].ID == id && m.actions[i].Status == domain.ActionPending {
			m.actions[i].Status = domain.ActionProcessing
			a := m.actions[i]
			return &a, true, nil
		}
	}
	return nil, false, nil
}

func (m *mockQueueStore) AcquireLease(_ context.Context, owner string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.leaseErr != nil {
		return false, m.leaseErr
	}
	if m.leaseOwner != "" && m.leaseOwner != owner {
		return false, nil
	}
	m.leaseOwner = owner
	return true, nil
}

func (m *mockQueueStore) ReleaseLease(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.leaseOwner == owner {
		m.leaseOwner = ""
	}
	return nil
}

// mockCacheStore implements driven.CacheStore for testing.
type mockCacheStore struct {
	mu       sync.Mutex
	records  map[domain.Collection][]domain.Record
	cursors  map[domain.Collection]time.Time
	merges   int
	writeErr error
}

func newMockCacheStore() *mockCacheStore {
	return &mockCacheStore{
		records: make(map[domain.Collection][]domain.Record),
		cursors: make(map[domain.Collection]time.Time),
	}
}

func (m *mockCacheStore) Replace(_ context.Context, c domain.Collection, records []domain.Record, cursor time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.records[c] = append([]domain.Record(nil), records...)
	m.cursors[c] = cursor
	return nil
}

func (m *mockCacheStore) Merge(
	_ context.Context, c domain.Collection, records []domain.Record, deletedIDs []string, cursor time.Time,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.merges++
	byID := make(map[string]domain.Record)
	for _, r := range m.records[c] {
		byID[r.ID] = r
	}
	for _, r := range records {
		byID[r.ID] = r
	}
	for _, id := range deletedIDs {
		delete(byID, id)
	}
	merged := make([]domain.Record, 0, len(byID))
	for _, r := range byID {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].ID < merged[j].ID })
	m.records[c] = merged
	m.cursors[c] = cursor
	return nil
}

func (m *mockCacheStore) Records(_ context.Context, c domain.Collection) ([]domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Record{}, m.records[c]...), nil
}

func (m *mockCacheStore) Cursor(_ context.Context, c domain.Collection) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursors[c], nil
}

func (m *mockCacheStore) Collections(_ context.Context) ([]domain.CollectionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	infos := make([]domain.CollectionInfo, 0, len(m.records))
	for c, records := range m.records {
		infos = append(infos, domain.CollectionInfo{Collection: c, Count: len(records), Cursor: m.cursors[c]})
	}
	return infos, nil
}

// mockStateStore implements driven.SyncStateStore for testing.
type mockStateStore struct {
	mu    sync.Mutex
	state *domain.SyncState
	saves int
}

func (m *mockStateStore) Save(_ context.Context, state domain.SyncState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.state = &state
	return nil
}

func (m *mockStateStore) Get(_ context.Context) (*domain.SyncState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, domain.ErrNotFound
	}
	s := *m.state
	return &s, nil
}

// mockActorStore implements driven.ActorStore for testing.
type mockActorStore struct {
	mu    sync.Mutex
	actor *domain.Actor
}

func (m *mockActorStore) Save(_ context.Context, actor domain.Actor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actor = &actor
	return nil
}

func (m *mockActorStore) Get(_ context.Context) (*domain.Actor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.actor == nil {
		return nil, nil
	}
	a := *m.actor
	return &a, nil
}

func (m *mockActorStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actor = nil
	return nil
}

// mockHistoryStore implements driven.HistoryStore for testing.
type mockHistoryStore struct {
	mu   sync.Mutex
	runs []domain.SyncRun
}

func (m *mockHistoryStore) RecordRun(_ context.Context, run *domain.SyncRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

func (m *mockHistoryStore) ListRuns(_ context.Context, kind domain.RunKind, limit int) ([]domain.SyncRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.SyncRun
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if kind == "" || m.runs[i].Kind == kind {
			out = append(out, m.runs[i])
		}
	}
	return out, nil
}

func (m *mockHistoryStore) PruneRuns(_ context.Context, _ int) error {
	return nil
}

func (m *mockHistoryStore) byKind(kind domain.RunKind) []domain.SyncRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.SyncRun
	for _, r := range m.runs {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// mockNotifier implements driving.NotificationService for testing.
type mockNotifier struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (m *mockNotifier) Notify(
	_ context.Context, t domain.NotificationType, title, message string,
) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := domain.Notification{Type: t, Title: title, Message: message}
	m.items = append(m.items, n)
	return &n, nil
}

func (m *mockNotifier) List(_ context.Context, _ bool, _ int) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Notification(nil), m.items...), nil
}

func (m *mockNotifier) MarkRead(_ context.Context, _ string) error { return nil }

func (m *mockNotifier) Clear(_ context.Context) error { return nil }

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// mockFetcher implements driven.CollectionFetcher for testing.
type mockFetcher struct {
	mu     sync.Mutex
	pages  map[domain.Collection]*domain.CollectionPage
	errs   map[domain.Collection]error
	calls  map[domain.Collection]int
	since  map[domain.Collection]time.Time
	block  chan struct{}
	inside chan struct{}
}

func newMockFetcher() *mockFetcher {
	f := &mockFetcher{
		pages: make(map[domain.Collection]*domain.CollectionPage),
		errs:  make(map[domain.Collection]error),
		calls: make(map[domain.Collection]int),
		since: make(map[domain.Collection]time.Time),
	}
	for _, c := range domain.AllCollections() {
		f.pages[c] = &domain.CollectionPage{
			Collection: c,
			Records:    []domain.Record{record(string(c) + "-1")},
		}
	}
	return f
}

func (f *mockFetcher) FetchCollection(
	ctx context.Context, c domain.Collection, since time.Time,
) (*domain.CollectionPage, error) {
	f.mu.Lock()
	f.calls[c]++
	f.since[c] = since
	block, inside := f.block, f.inside
	page, err := f.pages[c], f.errs[c]
	f.mu.Unlock()

	if block != nil {
		if inside != nil {
			select {
			case inside <- struct{}{}:
			default:
			}
		}
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (f *mockFetcher) callCount(c domain.Collection) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[c]
}

func (f *mockFetcher) setErr(c domain.Collection, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[c] = err
}

// mockRemote implements the remote mutation APIs and records call order.
type mockRemote struct {
	mu    sync.Mutex
	calls []string
	keys  []string
	fail  func(call string, payload json.RawMessage) error
}

func (m *mockRemote) do(call string, payload json.RawMessage, opts driven.CallOptions) (*driven.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.keys = append(m.keys, opts.IdempotencyKey)
	fail := m.fail
	m.mu.Unlock()

	if fail != nil {
		if err := fail(call, payload); err != nil {
			return nil, err
		}
	}
	return &driven.Response{Data: json.RawMessage(`{"ok":true}`)}, nil
}

func (m *mockRemote) AddItem(_ context.Context, p json.RawMessage, o driven.CallOptions) (*driven.Response, error) {
	return m.do("cart.add", p, o)
}

func (m *mockRemote) UpdateItem(_ context.Context, p json.RawMessage, o driven.CallOptions) (*driven.Response, error) {
	return m.do("cart.update", p, o)
}

func (m *mockRemote) Clear(_ context.Context, o driven.CallOptions) (*driven.Response, error) {
	return m.do("cart.clear", nil, o)
}

func (m *mockRemote) Create(_ context.Context, p json.RawMessage, o driven.CallOptions) (*driven.Response, error) {
	return m.do("order.create", p, o)
}

func (m *mockRemote) Toggle(_ context.Context, p json.RawMessage, o driven.CallOptions) (*driven.Response, error) {
	return m.do("favorite.toggle", p, o)
}

func (m *mockRemote) Do(
	_ context.Context, method, endpoint string, p json.RawMessage, o driven.CallOptions,
) (*driven.Response, error) {
	return m.do(method+" "+endpoint, p, o)
}

func (m *mockRemote) callLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// mockProbe implements driven.ConnectivityProbe for testing.
type mockProbe struct {
	mu     sync.Mutex
	online bool
}

func (m *mockProbe) Probe(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *mockProbe) set(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online = online
}

// mockHandler implements driving.NetworkHandler for testing.
type mockHandler struct {
	mu      sync.Mutex
	changes []bool
}

func (m *mockHandler) HandleConnectivityChange(_ context.Context, online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, online)
}

func (m *mockHandler) seen() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.changes...)
}

func record(id string) domain.Record {
	return domain.Record{ID: id, Data: json.RawMessage(`{"_id":"` + id + `"}`)}
}
