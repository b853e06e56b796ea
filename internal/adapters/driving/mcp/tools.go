package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/alghazaly/partsync/internal/core/domain"
)

// EmptyInput is the input schema for tools without arguments.
type EmptyInput struct{}

// SyncStatusOutput is the output schema for the sync_status tool.
type SyncStatusOutput struct {
	Driver     string `json:"driver"`
	Status     string `json:"status"`
	Online     bool   `json:"online"`
	LastSyncAt string `json:"last_sync_at,omitempty"`
	LastError  string `json:"last_error,omitempty"`
	Queued     int    `json:"queued"`
	Pending    int    `json:"pending"`
	Failed     int    `json:"failed"`
	Capacity   int    `json:"capacity"`
}

// QueueListInput is the input schema for the queue_list tool.
type QueueListInput struct {
	Status string `json:"status,omitempty" jsonschema:"only actions with this status: pending, processing or failed"`
}

// QueueListOutput is the output schema for the queue_list tool.
type QueueListOutput struct {
	Actions []ActionOutput `json:"actions"`
	Count   int            `json:"count"`
}

// ActionOutput represents a single queued action.
type ActionOutput struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	RetryCount int    `json:"retry_count"`
	MaxRetries int    `json:"max_retries"`
	LastError  string `json:"last_error,omitempty"`
	Endpoint   string `json:"endpoint,omitempty"`
	Method     string `json:"method,omitempty"`
	Payload    string `json:"payload,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// QueueEnqueueInput is the input schema for the queue_enqueue tool.
type QueueEnqueueInput struct {
	Kind     string         `json:"kind" jsonschema:"add_to_cart, update_cart_item, clear_cart, create_order, toggle_favorite or generic_request"`
	Payload  map[string]any `json:"payload,omitempty" jsonschema:"request body sent when the action is replayed"`
	Endpoint string         `json:"endpoint,omitempty" jsonschema:"path relative to the API root, generic_request only"`
	Method   string         `json:"method,omitempty" jsonschema:"HTTP method, generic_request only"`
}

// DrainOutput is the output schema for the drain_queue tool.
type DrainOutput struct {
	Attempted int  `json:"attempted"`
	Succeeded int  `json:"succeeded"`
	Requeued  int  `json:"requeued"`
	Failed    int  `json:"failed"`
	Skipped   bool `json:"skipped"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_status",
		Description: "Show connectivity, the last full sync and the offline queue size",
	}, s.handleSyncStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "queue_list",
		Description: "List queued offline actions in replay order",
	}, s.handleQueueList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "queue_enqueue",
		Description: "Queue a cart, order, favorite or generic mutation for replay",
	}, s.handleQueueEnqueue)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_now",
		Description: "Run a full-sync cycle now",
	}, s.handleSyncNow)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "drain_queue",
		Description: "Replay queued offline actions once",
	}, s.handleDrainQueue)
}

func (s *Server) handleSyncStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, SyncStatusOutput, error) {
	state := s.ports.Sync.SyncState()
	stats, err := s.ports.Queue.Stats(ctx)
	if err != nil {
		return nil, SyncStatusOutput{}, fmt.Errorf("queue stats: %w", err)
	}

	return nil, SyncStatusOutput{
		Driver:     string(s.ports.Sync.State()),
		Status:     string(state.Status),
		Online:     state.Online,
		LastSyncAt: formatTime(state.LastSyncAt),
		LastError:  state.LastError,
		Queued:     stats.Total,
		Pending:    stats.Pending,
		Failed:     stats.Failed,
		Capacity:   stats.Capacity,
	}, nil
}

func (s *Server) handleQueueList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueueListInput,
) (*mcp.CallToolResult, QueueListOutput, error) {
	actions, err := s.ports.Queue.List(ctx)
	if err != nil {
		return nil, QueueListOutput{}, err
	}

	output := QueueListOutput{Actions: make([]ActionOutput, 0, len(actions))}
	for i := range actions {
		if input.Status != "" && string(actions[i].Status) != input.Status {
			continue
		}
		output.Actions = append(output.Actions, toActionOutput(&actions[i]))
	}
	output.Count = len(output.Actions)

	return nil, output, nil
}

func (s *Server) handleQueueEnqueue(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueueEnqueueInput,
) (*mcp.CallToolResult, ActionOutput, error) {
	req := domain.EnqueueRequest{
		Kind:     domain.ActionKind(input.Kind),
		Endpoint: input.Endpoint,
		Method:   input.Method,
	}
	if input.Payload != nil {
		payload, err := json.Marshal(input.Payload)
		if err != nil {
			return nil, ActionOutput{}, fmt.Errorf("encoding payload: %w", err)
		}
		req.Payload = payload
	}

	action, err := s.ports.Queue.Enqueue(ctx, req)
	if err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, toActionOutput(action), nil
}

func (s *Server) handleSyncNow(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, SyncStatusOutput, error) {
	if err := s.ports.Sync.SyncNow(ctx); err != nil {
		return nil, SyncStatusOutput{}, err
	}
	return s.handleSyncStatus(ctx, nil, EmptyInput{})
}

func (s *Server) handleDrainQueue(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, DrainOutput, error) {
	report, err := s.ports.Sync.DrainQueue(ctx)
	if err != nil {
		return nil, DrainOutput{}, err
	}
	return nil, DrainOutput{
		Attempted: report.Attempted,
		Succeeded: report.Succeeded,
		Requeued:  report.Requeued,
		Failed:    report.Failed,
		Skipped:   report.Skipped,
	}, nil
}

func toActionOutput(a *domain.OfflineAction) ActionOutput {
	return ActionOutput{
		ID:         a.ID,
		Kind:       string(a.Kind),
		Status:     string(a.Status),
		RetryCount: a.RetryCount,
		MaxRetries: a.MaxRetries,
		LastError:  a.LastError,
		Endpoint:   a.Endpoint,
		Method:     a.Method,
		Payload:    string(a.Payload),
		CreatedAt:  formatTime(a.CreatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
