// Package history keeps the bounded undo/redo stacks of a single open tab.
//
// A Ledger is not safe for concurrent use; it is owned by the tab manager and
// only touched under its lock.
package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/GriffinCanCode/webide/backend/internal/shared/types"
)

// DefaultCapacity is the number of entries each stack keeps
const DefaultCapacity = 100

// Entry is one checkpoint of a tab buffer
type Entry struct {
	ID             string         `json:"id"`
	Timestamp      time.Time      `json:"timestamp"`
	Content        string         `json:"content"`
	CursorPosition types.Position `json:"cursorPosition"`
}

// State is the buffer state handed into and out of Undo and Redo
type State struct {
	Content        string
	CursorPosition types.Position
}

// Ledger is a pair of bounded stacks. Pushing past capacity silently drops the
// oldest entry.
type Ledger struct {
	undo *ring
	redo *ring
	now  func() time.Time
}

// New creates an empty ledger. A non-positive capacity uses DefaultCapacity.
func New(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ledger{
		undo: newRing(capacity),
		redo: newRing(capacity),
		now:  time.Now,
	}
}

// Capacity returns the per-stack bound
func (l *Ledger) Capacity() int {
	return l.undo.cap()
}

// Push records a checkpoint and discards any redo history
func (l *Ledger) Push(content string, cursor types.Position) Entry {
	e := l.entry(State{Content: content, CursorPosition: cursor})
	l.undo.push(e)
	l.redo.clear()
	return e
}

// Undo pops the latest checkpoint, saving current on the redo stack.
// It returns false, and changes nothing, when there is nothing to undo.
func (l *Ledger) Undo(current State) (State, bool) {
	e, ok := l.undo.pop()
	if !ok {
		return State{}, false
	}
	l.redo.push(l.entry(current))
	return State{Content: e.Content, CursorPosition: e.CursorPosition}, true
}

// Redo is the inverse of Undo
func (l *Ledger) Redo(current State) (State, bool) {
	e, ok := l.redo.pop()
	if !ok {
		return State{}, false
	}
	l.undo.push(l.entry(current))
	return State{Content: e.Content, CursorPosition: e.CursorPosition}, true
}

// CanUndo reports whether Undo would succeed
func (l *Ledger) CanUndo() bool { return l.undo.len() > 0 }

// CanRedo reports whether Redo would succeed
func (l *Ledger) CanRedo() bool { return l.redo.len() > 0 }

// Len returns the sizes of the undo and redo stacks
func (l *Ledger) Len() (undo, redo int) {
	return l.undo.len(), l.redo.len()
}

// Snapshot returns copies of both stacks, oldest entry first
func (l *Ledger) Snapshot() (undo, redo []Entry) {
	return l.undo.entries(), l.redo.entries()
}

// Restore replaces both stacks. Entries beyond capacity are dropped from the
// old end.
func (l *Ledger) Restore(undo, redo []Entry) {
	l.undo.clear()
	l.redo.clear()
	for _, e := range undo {
		l.undo.push(e)
	}
	for _, e := range redo {
		l.redo.push(e)
	}
}

// CloneUndo returns a new ledger with the same capacity holding a copy of the
// undo stack and an empty redo stack.
func (l *Ledger) CloneUndo() *Ledger {
	c := New(l.Capacity())
	c.now = l.now
	c.Restore(l.undo.entries(), nil)
	return c
}

// Clear empties both stacks
func (l *Ledger) Clear() {
	l.undo.clear()
	l.redo.clear()
}

func (l *Ledger) entry(s State) Entry {
	return Entry{
		ID:             uuid.NewString(),
		Timestamp:      l.now(),
		Content:        s.Content,
		CursorPosition: s.CursorPosition,
	}
}
