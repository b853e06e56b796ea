package mcp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("missing queue service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Sync: &mockSyncDriver{}})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingQueueService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports, _, _ := newTestPorts()
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("empty ports", func(t *testing.T) {
		ports := &Ports{}
		assert.ErrorIs(t, ports.Validate(), ErrMissingQueueService)
	})

	t.Run("missing sync driver", func(t *testing.T) {
		ports := &Ports{Queue: &mockQueueService{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingSyncDriver)
	})

	t.Run("catalog is optional", func(t *testing.T) {
		ports, _, _ := newTestPorts()
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports, _, _ := newTestPorts()
		ports.Catalog = &mockCatalogService{}
		assert.NoError(t, ports.Validate())
	})
}

func TestServer_Serve(t *testing.T) {
	ports, _, _ := newTestPorts()
	server, err := NewServer(ports)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "partsync-test", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: "http://" + ln.Addr().String()}, nil)
	require.NoError(t, err)

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "drain_queue")
	require.NoError(t, session.Close())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_RunHTTP_AddrInUse(t *testing.T) {
	ports, _, _ := newTestPorts()
	server, err := NewServer(ports)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	err = server.RunHTTP(context.Background(), ln.Addr().String())
	assert.Error(t, err)
}
