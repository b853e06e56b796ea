package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alghazaly/partsync/internal/core/domain"
)

// mockNotificationStore implements driven.NotificationStore for testing.
type mockNotificationStore struct {
	items []domain.Notification
}

func (m *mockNotificationStore) Add(_ context.Context, n *domain.Notification) error {
	m.items = append(m.items, *n)
	return nil
}

func (m *mockNotificationStore) List(_ context.Context, unreadOnly bool, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	for i := len(m.items) - 1; i >= 0; i-- {
		if unreadOnly && m.items[i].Read {
			continue
		}
		out = append(out, m.items[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockNotificationStore) MarkRead(_ context.Context, id string) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Read = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockNotificationStore) MarkAllRead(_ context.Context) error {
	for i := range m.items {
		m.items[i].Read = true
	}
	return nil
}

func (m *mockNotificationStore) Clear(_ context.Context) error {
	m.items = nil
	return nil
}

func TestNotificationService_Notify(t *testing.T) {
	store := &mockNotificationStore{}
	svc := NewNotificationService(store)
	ctx := context.Background()

	n, err := svc.Notify(ctx, "", "Sync failed", "no route to host")
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, domain.NotificationInfo, n.Type)
	assert.False(t, n.Read)
	assert.False(t, n.CreatedAt.IsZero())

	_, err = svc.Notify(ctx, domain.NotificationError, "", "body")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Len(t, store.items, 1)
}

func TestNotificationService_MarkRead(t *testing.T) {
	store := &mockNotificationStore{}
	svc := NewNotificationService(store)
	ctx := context.Background()

	first, _ := svc.Notify(ctx, domain.NotificationWarning, "one", "")
	_, _ = svc.Notify(ctx, domain.NotificationWarning, "two", "")

	require.NoError(t, svc.MarkRead(ctx, first.ID))
	unread, err := svc.List(ctx, true, 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "two", unread[0].Title)

	assert.ErrorIs(t, svc.MarkRead(ctx, "missing"), domain.ErrNotFound)

	require.NoError(t, svc.MarkRead(ctx, ""))
	unread, _ = svc.List(ctx, true, 0)
	assert.Empty(t, unread)

	require.NoError(t, svc.Clear(ctx))
	all, _ := svc.List(ctx, false, 0)
	assert.Empty(t, all)
}

func TestActorService(t *testing.T) {
	store := &mockActorStore{}
	svc := NewActorService(store)
	ctx := context.Background()

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	err = svc.Login(ctx, domain.Actor{ID: " u1 ", Name: "Mona", Role: "Partner", Token: "tok"})
	require.NoError(t, err)

	current, err = svc.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "u1", current.ID)
	assert.Equal(t, domain.RolePartner, current.Role)
	assert.True(t, current.IsElevated())

	require.NoError(t, svc.Logout(ctx))
	current, _ = svc.Current(ctx)
	assert.Nil(t, current)
}

func TestActorService_Login_Validation(t *testing.T) {
	svc := NewActorService(&mockActorStore{})
	ctx := context.Background()

	assert.ErrorIs(t, svc.Login(ctx, domain.Actor{Token: "tok"}), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Login(ctx, domain.Actor{ID: "u1"}), domain.ErrInvalidInput)

	require.NoError(t, svc.Login(ctx, domain.Actor{ID: "u1", Token: "tok"}))
	current, _ := svc.Current(ctx)
	assert.Equal(t, domain.RoleCustomer, current.Role)
}

func TestCatalogService_Records(t *testing.T) {
	cache := newMockCacheStore()
	svc := NewCatalogService(cache)
	ctx := context.Background()

	records, err := svc.Records(ctx, domain.CollectionProducts)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = svc.Records(ctx, "spaceships")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHistoryService_RecentDefaultsLimit(t *testing.T) {
	store := &mockHistoryStore{}
	svc := NewHistoryService(store)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		require.NoError(t, store.RecordRun(ctx, &domain.SyncRun{Kind: domain.RunFullSync}))
	}
	require.NoError(t, store.RecordRun(ctx, &domain.SyncRun{Kind: domain.RunDrain}))

	runs, err := svc.Recent(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, runs, 20)
	assert.Equal(t, domain.RunDrain, runs[0].Kind)

	runs, err = svc.Recent(ctx, domain.RunDrain, 5)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
