// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - QueueStore: Offline action persistence
//   - CacheStore: Cached collection persistence
//   - SyncStateStore: Sync status and cursor persistence
//   - ActorStore: Authenticated actor persistence
//   - CartAPI, OrderAPI, FavoriteAPI, RequestDoer: Remote mutations
//   - CollectionFetcher: Remote reads
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - NotificationStore: Without it, sync failures are only logged.
//   - HistoryStore: Without it, runs are not recorded.
//   - ConnectivityProbe: Without it, connectivity changes must be reported manually.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
