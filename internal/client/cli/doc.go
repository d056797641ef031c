// Package cli provides the interactive PaperTrail command-line client.
//
// It wires configuration, the local sqlite store, the HTTP API client, and an
// interactive REPL. All document commands operate on the local store first, so
// the CLI stays fully usable offline; a background sync loop reconciles with
// the server while the user is logged in.
//
// Key features:
//   - Register / Login / Logout
//   - Add, list, show, update and delete document records
//   - Search, category and expiration queries, aggregate stats
//   - Manual sync, device management, sync history
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
