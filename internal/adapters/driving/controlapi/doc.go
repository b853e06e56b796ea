// Package controlapi serves the local control API of the sync agent.
//
// The API is a small chi router bound to loopback by default. It exposes
// the same operations as the CLI: status, queue management, manual sync
// and drain, connectivity overrides, notifications, cache inspection and
// sync history. Every response is a JSON envelope:
//
//	{"success": true, "data": ...}
//	{"success": false, "error": {"code": "...", "message": "..."}}
package controlapi
