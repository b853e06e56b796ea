package mcp

import (
	"github.com/alghazaly/partsync/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Queue manages the offline action queue.
	Queue driving.QueueService

	// Sync runs cycles and drains.
	Sync driving.SyncDriver

	// Catalog reads the cache. Optional; without it the cache resource is empty.
	Catalog driving.CatalogService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Queue == nil {
		return ErrMissingQueueService
	}
	if p.Sync == nil {
		return ErrMissingSyncDriver
	}
	return nil
}
