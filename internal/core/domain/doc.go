// Package domain defines the core business entities for partsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - OfflineAction: A user mutation deferred while disconnected
//   - SyncState: Outcome of the most recent full-sync cycle
//   - Collection: A named slice of cached reference data
//   - Actor: The authenticated storefront user
//   - Notification: A user-visible in-app message
//   - SyncRun: A history entry for a cycle or a drain
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
