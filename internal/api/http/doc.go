// Package http provides the REST surface of the workspace.
//
// Endpoints:
//   - Service: /, /health, /snapshot, /metrics/json, /logs
//   - Tree: /tree, /tree/flat, /tree/nodes[/:id[/rename|/move|/expand]],
//     /tree/validate-move, /tree/selection, /tree/sort, /tree/drag/*
//   - Tabs: /tabs[/:id], /tabs/move, /tabs/orphaned, /tabs/:id/{activate,
//     save, commit, pin, unpin, duplicate, close-others, close-right}
//   - Editor state: /tabs/:id/{content, cursor, scroll, selections}
//   - History: /tabs/:id/{checkpoint, history, undo, redo}
//
// Domain errors map to 404 for unknown ids, 409 for conflicts and rejected
// moves (with the rejection reason) and 400 for invalid input.
//
// Example Usage:
//
//	handlers := http.NewHandlers(ws, metrics, logger)
//	handlers.Register(router)
package http
