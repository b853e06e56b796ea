// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage with dotted keys
//   - Watcher: reloads a ConfigStore when the file changes on disk
package file
