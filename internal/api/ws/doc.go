// Package ws streams workspace changes to editor clients over WebSocket.
//
// On connect the client receives a "snapshot" message with the full
// workspace, followed by one "event" message per applied mutation. Clients
// may send {"type":"ping"} (answered with "pong") or {"type":"snapshot"} to
// resynchronize after a gap in event sequence numbers. A client that cannot
// keep up loses events rather than slowing the workspace down.
package ws
