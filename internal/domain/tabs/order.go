package tabs

import "fmt"

// Move relocates the tab at index from to index to. The destination is
// clamped into the moved tab's own group so pinned tabs stay a prefix.
func (m *Manager) Move(from, to int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if from < 0 || from >= len(m.tabs) {
		return fmt.Errorf("%w: from=%d len=%d", ErrIndexOutOfRange, from, len(m.tabs))
	}
	t := m.detach(from)

	pinned := m.pinnedCount()
	lo, hi := pinned, len(m.tabs)
	if t.IsPinned {
		lo, hi = 0, pinned
	}
	m.insertAt(min(max(to, lo), hi), t)
	return nil
}

// Pin moves the tab to the end of the pinned group
func (m *Manager) Pin(tabID string) (Tab, error) {
	return m.regroup(tabID, true)
}

// Unpin moves the tab to the start of the unpinned group
func (m *Manager) Unpin(tabID string) (Tab, error) {
	return m.regroup(tabID, false)
}

func (m *Manager) regroup(tabID string, pinned bool) (Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(tabID)
	if i < 0 {
		return Tab{}, notFound(tabID)
	}
	if m.tabs[i].IsPinned == pinned {
		return m.tabs[i].clone(), nil
	}
	t := m.detach(i)
	t.IsPinned = pinned
	// with t detached the pinned prefix ends exactly where both groups meet
	m.insertAt(m.pinnedCount(), t)
	return t.clone(), nil
}

// detach removes the tab at i from the order, keeping its ledger
func (m *Manager) detach(i int) *Tab {
	t := m.tabs[i]
	m.tabs = append(m.tabs[:i], m.tabs[i+1:]...)
	return t
}
