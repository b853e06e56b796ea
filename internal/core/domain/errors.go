package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates a required service was not wired.
	ErrNotConfigured = errors.New("not configured")

	// Queue Errors.

	// ErrQueueFull indicates the offline queue reached its ceiling.
	ErrQueueFull = errors.New("offline queue is full")

	// ErrDrainInProgress indicates another drain holds the processing flag.
	ErrDrainInProgress = errors.New("drain in progress")

	// Sync Errors.

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrOffline indicates the device is currently offline.
	ErrOffline = errors.New("offline")

	// Remote Errors.

	// ErrUnauthorized indicates the remote rejected the actor's credentials or role.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrRemote indicates the remote service answered with an error status.
	ErrRemote = errors.New("remote error")
)
