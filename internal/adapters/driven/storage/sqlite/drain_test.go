package sqlite

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
	"github.com/alghazaly/partsync/internal/core/services"
)

// recordingRemote counts mutations sent by any driver sharing it.
type recordingRemote struct {
	mu      sync.Mutex
	calls   []string
	entered chan struct{}
	release chan struct{}
	blocked bool
}

func (r *recordingRemote) send(call string) (*driven.Response, error) {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	block := call == "cart.add" && !r.blocked
	if block {
		r.blocked = true
	}
	r.mu.Unlock()

	if block {
		close(r.entered)
		<-r.release
	}
	return &driven.Response{Data: json.RawMessage(`{"ok":true}`)}, nil
}

func (r *recordingRemote) AddItem(context.Context, json.RawMessage, driven.CallOptions) (*driven.Response, error) {
	return r.send("cart.add")
}

func (r *recordingRemote) UpdateItem(context.Context, json.RawMessage, driven.CallOptions) (*driven.Response, error) {
	return r.send("cart.update")
}

func (r *recordingRemote) Clear(context.Context, driven.CallOptions) (*driven.Response, error) {
	return r.send("cart.clear")
}

func (r *recordingRemote) Create(context.Context, json.RawMessage, driven.CallOptions) (*driven.Response, error) {
	return r.send("order.create")
}

func (r *recordingRemote) Toggle(context.Context, json.RawMessage, driven.CallOptions) (*driven.Response, error) {
	return r.send("favorite.toggle")
}

func (r *recordingRemote) Do(
	_ context.Context, method, endpoint string, _ json.RawMessage, _ driven.CallOptions,
) (*driven.Response, error) {
	return r.send(method + " " + endpoint)
}

func (r *recordingRemote) callLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// newDrainer opens its own Store on dir, as a separate partsync process would.
func newDrainer(t *testing.T, dir string, remote *recordingRemote) (*services.SyncDriver, *services.QueueService) {
	t.Helper()

	store, err := NewStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := domain.SyncConfig{MaxRetries: 3, QueueCapacity: 10, CallTimeout: 5 * time.Second}
	queue := services.NewQueueService(store.QueueStore(), cfg)
	driver := services.NewSyncDriver(cfg, services.SyncDriverDeps{
		Queue:      queue,
		Dispatcher: services.NewActionDispatcher(remote, remote, remote, remote),
	})
	return driver, queue
}

func TestDrainQueue_OverlappingProcessesSendEachActionOnce(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	remote := &recordingRemote{entered: make(chan struct{}), release: make(chan struct{})}

	agent, queue := newDrainer(t, dir, remote)
	cli, _ := newDrainer(t, dir, remote)

	_, err := queue.Enqueue(ctx, domain.EnqueueRequest{
		Kind:    domain.ActionAddToCart,
		Payload: json.RawMessage(`{"product_id":"p1","quantity":1}`),
	})
	require.NoError(t, err)
	_, err = queue.Enqueue(ctx, domain.EnqueueRequest{Kind: domain.ActionClearCart})
	require.NoError(t, err)

	done := make(chan *domain.DrainReport)
	go func() {
		report, err := agent.DrainQueue(ctx)
		assert.NoError(t, err)
		done <- report
	}()

	<-remote.entered
	report, err := cli.DrainQueue(ctx)
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	close(remote.release)

	report = <-done
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, []string{"cart.add", "cart.clear"}, remote.callLog())

	// The lease is free again once the first drain returns.
	_, err = queue.Enqueue(ctx, domain.EnqueueRequest{Kind: domain.ActionClearCart})
	require.NoError(t, err)
	report, err = cli.DrainQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, []string{"cart.add", "cart.clear", "cart.clear"}, remote.callLog())
}
