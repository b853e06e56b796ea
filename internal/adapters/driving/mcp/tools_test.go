package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alghazaly/partsync/internal/core/domain"
)

func TestServer_handleSyncStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("combines driver and queue state", func(t *testing.T) {
		ports, queue, driver := newTestPorts()
		driver.state = domain.SyncState{
			Status:     domain.SyncError,
			LastError:  "categories: remote error",
			LastSyncAt: fixedTime,
			Online:     true,
		}
		queue.stats = domain.QueueStats{Total: 3, Pending: 2, Failed: 1, Capacity: 100}

		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleSyncStatus(ctx, nil, EmptyInput{})
		require.NoError(t, err)
		assert.Equal(t, "running", output.Driver)
		assert.Equal(t, "error", output.Status)
		assert.True(t, output.Online)
		assert.Equal(t, "2026-03-01T10:00:00Z", output.LastSyncAt)
		assert.Equal(t, "categories: remote error", output.LastError)
		assert.Equal(t, 3, output.Queued)
		assert.Equal(t, 2, output.Pending)
		assert.Equal(t, 1, output.Failed)
		assert.Equal(t, 100, output.Capacity)
	})

	t.Run("never synced leaves timestamp empty", func(t *testing.T) {
		ports, _, _ := newTestPorts()
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleSyncStatus(ctx, nil, EmptyInput{})
		require.NoError(t, err)
		assert.Empty(t, output.LastSyncAt)
	})

	t.Run("queue error", func(t *testing.T) {
		ports, queue, _ := newTestPorts()
		queue.err = errors.New("db closed")
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleSyncStatus(ctx, nil, EmptyInput{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db closed")
	})
}

func TestServer_handleQueueList(t *testing.T) {
	ctx := context.Background()
	ports, queue, _ := newTestPorts()
	queue.actions = []domain.OfflineAction{
		{
			ID: "a1", Kind: domain.ActionAddToCart, Status: domain.ActionPending,
			Payload: json.RawMessage(`{"product_id":7}`), MaxRetries: 3, CreatedAt: fixedTime,
		},
		{
			ID: "a2", Kind: domain.ActionCreateOrder, Status: domain.ActionFailed,
			RetryCount: 3, MaxRetries: 3, LastError: "remote error", CreatedAt: fixedTime,
		},
	}
	server, err := NewServer(ports)
	require.NoError(t, err)

	t.Run("lists all actions in order", func(t *testing.T) {
		_, output, err := server.handleQueueList(ctx, nil, QueueListInput{})
		require.NoError(t, err)
		require.Equal(t, 2, output.Count)
		assert.Equal(t, "a1", output.Actions[0].ID)
		assert.Equal(t, "add_to_cart", output.Actions[0].Kind)
		assert.Equal(t, `{"product_id":7}`, output.Actions[0].Payload)
		assert.Equal(t, "2026-03-01T10:00:00Z", output.Actions[0].CreatedAt)
		assert.Equal(t, "a2", output.Actions[1].ID)
	})

	t.Run("filters by status", func(t *testing.T) {
		_, output, err := server.handleQueueList(ctx, nil, QueueListInput{Status: "failed"})
		require.NoError(t, err)
		require.Equal(t, 1, output.Count)
		assert.Equal(t, "a2", output.Actions[0].ID)
		assert.Equal(t, "remote error", output.Actions[0].LastError)
	})
}

func TestServer_handleQueueEnqueue(t *testing.T) {
	ctx := context.Background()

	t.Run("encodes payload", func(t *testing.T) {
		ports, queue, _ := newTestPorts()
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleQueueEnqueue(ctx, nil, QueueEnqueueInput{
			Kind:    "add_to_cart",
			Payload: map[string]any{"product_id": 7, "quantity": 2},
		})
		require.NoError(t, err)
		assert.Equal(t, "action-1", output.ID)
		assert.Equal(t, "pending", output.Status)
		require.Len(t, queue.enqueued, 1)
		assert.JSONEq(t, `{"product_id":7,"quantity":2}`, string(queue.enqueued[0].Payload))
	})

	t.Run("generic request keeps endpoint and method", func(t *testing.T) {
		ports, queue, _ := newTestPorts()
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleQueueEnqueue(ctx, nil, QueueEnqueueInput{
			Kind:     "generic_request",
			Endpoint: "/wishlist/3",
			Method:   "DELETE",
		})
		require.NoError(t, err)
		assert.Equal(t, "/wishlist/3", output.Endpoint)
		assert.Equal(t, "DELETE", output.Method)
		require.Len(t, queue.enqueued, 1)
		assert.Nil(t, queue.enqueued[0].Payload)
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		ports, _, _ := newTestPorts()
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleQueueEnqueue(ctx, nil, QueueEnqueueInput{Kind: "teleport"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("full queue", func(t *testing.T) {
		ports, queue, _ := newTestPorts()
		queue.err = domain.ErrQueueFull
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleQueueEnqueue(ctx, nil, QueueEnqueueInput{Kind: "clear_cart"})
		assert.ErrorIs(t, err, domain.ErrQueueFull)
	})
}

func TestServer_handleSyncNow(t *testing.T) {
	ctx := context.Background()

	t.Run("runs a cycle and reports state", func(t *testing.T) {
		ports, _, driver := newTestPorts()
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleSyncNow(ctx, nil, EmptyInput{})
		require.NoError(t, err)
		assert.Equal(t, 1, driver.syncCalls)
		assert.Equal(t, "success", output.Status)
		assert.Equal(t, "2026-03-01T10:00:00Z", output.LastSyncAt)
	})

	t.Run("cycle in progress", func(t *testing.T) {
		ports, _, driver := newTestPorts()
		driver.syncErr = domain.ErrSyncInProgress
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleSyncNow(ctx, nil, EmptyInput{})
		assert.ErrorIs(t, err, domain.ErrSyncInProgress)
	})
}

func TestServer_handleDrainQueue(t *testing.T) {
	ctx := context.Background()

	t.Run("returns report", func(t *testing.T) {
		ports, _, driver := newTestPorts()
		driver.report = domain.DrainReport{Attempted: 3, Succeeded: 1, Requeued: 1, Failed: 1}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleDrainQueue(ctx, nil, EmptyInput{})
		require.NoError(t, err)
		assert.Equal(t, DrainOutput{Attempted: 3, Succeeded: 1, Requeued: 1, Failed: 1}, output)
	})

	t.Run("offline", func(t *testing.T) {
		ports, _, driver := newTestPorts()
		driver.drainErr = domain.ErrOffline
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleDrainQueue(ctx, nil, EmptyInput{})
		assert.ErrorIs(t, err, domain.ErrOffline)
	})
}
