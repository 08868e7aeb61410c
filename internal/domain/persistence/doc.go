/*
Package persistence saves and restores workspace state across sessions.

Two slots are written: the tree (nodes, expanded folders, sort preference)
and the session (open tabs plus each tab's undo/redo stacks). Both are
versioned JSON documents produced by an explicit encoder/decoder pair that
walks the full depth of the tree, so every timestamp is parsed back into a
time.Time and no field is silently dropped.

Loading never fails. A missing slot yields the default state; a corrupt or
future-versioned slot is logged, counted and replaced by the default.
*/
package persistence
