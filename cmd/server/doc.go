// Package main is the entry point for the workspace backend of the browser
// code editor.
//
// The server owns the in-memory workspace (file tree, open tabs and their
// undo history), persists it into a durable slot store after every change
// and exposes it over REST and a WebSocket event stream.
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Persist into SQLite under ./data
//	./server -port 8000 -storage sqlite -storage-path ./data
//
//	# Development mode (colored logs)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
