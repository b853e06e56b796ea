// Package mcp provides an MCP (Model Context Protocol) server adapter for partsync.
// It lets an assistant inspect sync status, manage the offline queue and
// trigger syncs through tools, and read the queue and cache as resources.
package mcp

import "errors"

// ErrMissingQueueService is returned when the queue service is not provided.
var ErrMissingQueueService = errors.New("mcp: queue service is required")

// ErrMissingSyncDriver is returned when the sync driver is not provided.
var ErrMissingSyncDriver = errors.New("mcp: sync driver is required")
