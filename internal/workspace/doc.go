/*
Package workspace ties the node tree and the tab manager into one service.

Every mutation runs behind a single writer lock. Once applied, the touched
persistence slots are written, metrics are updated and an Event is published
to subscribers. Renames and moves carry open tabs along to the new path;
deleting a node leaves its tabs open as orphans until they are closed.

	ws := workspace.New(store, workspace.WithLogger(logger), workspace.WithMetrics(metrics))
	if err := ws.Init(ctx); err != nil {
		return err
	}
	events, cancel := ws.Subscribe(0)
	defer cancel()
*/
package workspace
