package tabs

import (
	"github.com/GriffinCanCode/webide/backend/internal/domain/history"
	"github.com/GriffinCanCode/webide/backend/internal/shared/types"
)

// Checkpoint pushes the tab's current buffer and cursor onto its undo stack
func (m *Manager) Checkpoint(tabID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(tabID)
	if i < 0 {
		return notFound(tabID)
	}
	t := m.tabs[i]
	m.ledger(t.ID).Push(t.Content, t.CursorPosition)
	return nil
}

// PushHistory pushes an arbitrary prior state onto the tab's undo stack
func (m *Manager) PushHistory(tabID, content string, cursor types.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.index(tabID) < 0 {
		return notFound(tabID)
	}
	m.ledger(tabID).Push(content, cursor)
	return nil
}

// Undo restores the previous checkpoint into the tab and marks it dirty. The
// boolean is false, with the tab unchanged, when there is nothing to undo.
func (m *Manager) Undo(tabID string) (Tab, bool, error) {
	return m.step(tabID, (*history.Ledger).Undo)
}

// Redo reapplies the last undone state
func (m *Manager) Redo(tabID string) (Tab, bool, error) {
	return m.step(tabID, (*history.Ledger).Redo)
}

func (m *Manager) step(tabID string, fn func(*history.Ledger, history.State) (history.State, bool)) (Tab, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(tabID)
	if i < 0 {
		return Tab{}, false, notFound(tabID)
	}
	t := m.tabs[i]
	next, ok := fn(m.ledger(t.ID), history.State{Content: t.Content, CursorPosition: t.CursorPosition})
	if ok {
		t.Content = next.Content
		t.CursorPosition = next.CursorPosition
		t.IsDirty = true
	}
	return t.clone(), ok, nil
}

// HistoryOf returns a copy of the tab's undo and redo stacks
func (m *Manager) HistoryOf(tabID string) (HistorySnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.index(tabID) < 0 {
		return HistorySnapshot{}, notFound(tabID)
	}
	l, ok := m.ledgers[tabID]
	if !ok {
		return HistorySnapshot{Undo: []history.Entry{}, Redo: []history.Entry{}}, nil
	}
	undo, redo := l.Snapshot()
	return HistorySnapshot{Undo: undo, Redo: redo}, nil
}
