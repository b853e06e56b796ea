package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/alghazaly/partsync/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for partsync resources.
	uriScheme = "partsync://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "queue",
		Name:        "queue",
		Description: "Offline action queue in replay order",
		MIMEType:    "application/json",
	}, s.handleQueueResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "cache/{collection}",
		Name:        "cache-collection",
		Description: "Cached records of one collection, such as products or car_brands",
		MIMEType:    "application/json",
	}, s.handleCacheResource)
}

// handleQueueResource returns the queue as JSON.
func (s *Server) handleQueueResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	actions, err := s.ports.Queue.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing queue: %w", err)
	}

	infos := make([]ActionOutput, len(actions))
	for i := range actions {
		infos[i] = toActionOutput(&actions[i])
	}

	return jsonResult(req.Params.URI, infos)
}

// handleCacheResource returns the cached records of one collection.
func (s *Server) handleCacheResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	collection := extractCollection(req.Params.URI)
	if !collection.IsValid() {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	if s.ports.Catalog == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	records, err := s.ports.Catalog.Records(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", collection, err)
	}

	items := make([]json.RawMessage, len(records))
	for i := range records {
		items[i] = records[i].Data
	}
	return jsonResult(req.Params.URI, items)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCollection extracts the collection from a URI like partsync://cache/{collection}.
func extractCollection(uri string) domain.Collection {
	const prefix = uriScheme + "cache/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return domain.Collection(strings.TrimPrefix(uri, prefix))
}
