package tabs

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webide/backend/internal/domain/history"
)

// Snapshot copies the tab order and every ledger
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := State{
		Tabs:    make([]Tab, len(m.tabs)),
		History: make(map[string]HistorySnapshot, len(m.ledgers)),
	}
	for i, t := range m.tabs {
		s.Tabs[i] = t.clone()
	}
	for tabID, l := range m.ledgers {
		undo, redo := l.Snapshot()
		s.History[tabID] = HistorySnapshot{Undo: undo, Redo: redo}
	}
	return s
}

// Restore replaces all tabs and ledgers. Input from storage is untrusted, so
// the manager's invariants are re-established: tabs without a path are
// dropped, missing or repeated ids are regenerated, pinned
// tabs are moved to the front (keeping relative order) and at most one tab
// stays active. If none was active, the last tab is activated.
func (m *Manager) Restore(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var pinned, unpinned []*Tab
	ledgers := make(map[string]*history.Ledger, len(s.Tabs))
	active := -1

	for _, in := range s.Tabs {
		if in.Path == "" {
			m.logger.Warn("Dropping restored tab without a path", zap.String("tab_id", in.ID))
			continue
		}
		t := in.clone()
		h, hasHistory := s.History[t.ID]
		if _, taken := ledgers[t.ID]; t.ID == "" || taken {
			t.ID = m.newID()
			hasHistory = false
		}
		if t.Name == "" {
			t.Name = baseName(t.Path)
		}

		l := history.New(m.capacity)
		if hasHistory {
			l.Restore(h.Undo, h.Redo)
		}
		ledgers[t.ID] = l

		if t.IsPinned {
			pinned = append(pinned, &t)
		} else {
			unpinned = append(unpinned, &t)
		}
	}

	m.tabs = append(pinned, unpinned...)
	m.ledgers = ledgers

	for i, t := range m.tabs {
		if t.IsActive && active < 0 {
			active = i
		}
	}
	if active < 0 {
		active = len(m.tabs) - 1
	}
	m.activateAt(active)
}
