package tabs

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webide/backend/internal/domain/history"
	"github.com/GriffinCanCode/webide/backend/internal/shared/id"
	"github.com/GriffinCanCode/webide/backend/internal/shared/types"
)

// Manager orchestrates the ordered set of open tabs.
//
// Pinned tabs always form a contiguous prefix of the order, at most one tab is
// active, and tab ids are unique. Paths may repeat: a duplicated tab shares its
// source's path, and an orphaned buffer keeps the path of a deleted node.
type Manager struct {
	mu      sync.RWMutex
	tabs    []*Tab                     // Protected by mu
	ledgers map[string]*history.Ledger // Protected by mu

	capacity int
	now      func() time.Time
	newID    func() string
	logger   *zap.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithHistoryCapacity sets the per-stack bound of every tab ledger
func WithHistoryCapacity(n int) Option {
	return func(m *Manager) { m.capacity = n }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDFunc overrides tab id generation
func WithIDFunc(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// WithLogger attaches a logger
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a manager with no open tabs
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		ledgers:  make(map[string]*history.Ledger),
		capacity: history.DefaultCapacity,
		now:      time.Now,
		newID:    func() string { return id.NewTabID().String() },
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ============================================================================
// Reads
// ============================================================================

// Get returns a copy of the tab
func (m *Manager) Get(tabID string) (Tab, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.index(tabID)
	if i < 0 {
		return Tab{}, false
	}
	return m.tabs[i].clone(), true
}

// List returns copies of all tabs in display order
func (m *Manager) List() []Tab {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Tab, len(m.tabs))
	for i, t := range m.tabs {
		out[i] = t.clone()
	}
	return out
}

// Len returns the number of open tabs
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tabs)
}

// Active returns the active tab, if any
func (m *Manager) Active() (Tab, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tabs {
		if t.IsActive {
			return t.clone(), true
		}
	}
	return Tab{}, false
}

// FindByPath returns the tab open on path
func (m *Manager) FindByPath(path string) (Tab, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tabs {
		if t.Path == path {
			return t.clone(), true
		}
	}
	return Tab{}, false
}

// ============================================================================
// Lifecycle
// ============================================================================

// Open activates the tab already showing doc, or snapshots the document into a
// new tab appended at the end. A tab matches by FileID; a path match only
// counts when one side has no FileID, so an orphaned buffer left at the same
// path is never mistaken for the live node. The boolean reports whether a new
// tab was created.
func (m *Manager) Open(doc Document) (Tab, bool, error) {
	if doc.Path == "" {
		return Tab{}, false, ErrInvalidDocument
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.find(doc); i >= 0 {
		t := m.tabs[i]
		if t.FileID == "" {
			t.FileID = doc.FileID
		}
		m.activateAt(i)
		return t.clone(), false, nil
	}

	name := doc.Name
	if name == "" {
		name = baseName(doc.Path)
	}
	t := &Tab{
		ID:       m.newID(),
		FileID:   doc.FileID,
		Path:     doc.Path,
		Name:     name,
		Content:  doc.Content,
		Language: doc.Language,
		OpenedAt: m.now(),
	}
	m.tabs = append(m.tabs, t)
	m.ledgers[t.ID] = history.New(m.capacity)
	m.activateAt(len(m.tabs) - 1)

	m.logger.Debug("Tab opened", zap.String("tab_id", t.ID), zap.String("path", t.Path))
	return t.clone(), true, nil
}

// Close removes a tab and its history. When the closed tab was active, the
// tab before it (or the new first tab) becomes active.
func (m *Manager) Close(tabID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(tabID)
	if i < 0 {
		return notFound(tabID)
	}
	wasActive := m.tabs[i].IsActive
	m.removeAt(i)

	if wasActive && len(m.tabs) > 0 {
		m.activateAt(max(i-1, 0))
	}
	m.logger.Debug("Tab closed", zap.String("tab_id", tabID))
	return nil
}

// Activate makes a tab the active one
func (m *Manager) Activate(tabID string) (Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(tabID)
	if i < 0 {
		return Tab{}, notFound(tabID)
	}
	m.activateAt(i)
	return m.tabs[i].clone(), nil
}

// CloseOthers closes every tab except tabID, which becomes active. It returns
// the ids of the closed tabs.
func (m *Manager) CloseOthers(tabID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(tabID)
	if i < 0 {
		return nil, notFound(tabID)
	}
	keep := m.tabs[i]
	closed := make([]string, 0, len(m.tabs)-1)
	for _, t := range m.tabs {
		if t != keep {
			closed = append(closed, t.ID)
			delete(m.ledgers, t.ID)
		}
	}
	m.tabs = []*Tab{keep}
	m.activateAt(0)
	return closed, nil
}

// CloseToRight closes every tab after tabID. If the active tab was among
// them, tabID becomes active.
func (m *Manager) CloseToRight(tabID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(tabID)
	if i < 0 {
		return nil, notFound(tabID)
	}
	lostActive := false
	closed := make([]string, 0, len(m.tabs)-i-1)
	for _, t := range m.tabs[i+1:] {
		lostActive = lostActive || t.IsActive
		closed = append(closed, t.ID)
		delete(m.ledgers, t.ID)
	}
	clear(m.tabs[i+1:])
	m.tabs = m.tabs[:i+1]
	if lostActive {
		m.activateAt(i)
	}
	return closed, nil
}

// CloseAll closes every tab and returns their ids
func (m *Manager) CloseAll() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	closed := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		closed[i] = t.ID
	}
	m.tabs = nil
	m.ledgers = make(map[string]*history.Ledger)
	return closed
}

// Duplicate clones a tab under a new id right after the source, outside the
// pinned prefix. The copy carries the undo stack but not the redo stack, is
// dirty and becomes active.
func (m *Manager) Duplicate(tabID string) (Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(tabID)
	if i < 0 {
		return Tab{}, notFound(tabID)
	}
	src := m.tabs[i]
	dup := src.clone()
	dup.ID = m.newID()
	dup.IsPinned = false
	dup.IsDirty = true
	dup.IsActive = false
	dup.OpenedAt = m.now()

	at := max(i+1, m.pinnedCount())
	m.insertAt(at, &dup)
	m.ledgers[dup.ID] = m.ledger(src.ID).CloneUndo()
	m.activateAt(at)
	return dup.clone(), nil
}

// ============================================================================
// Content and editor state
// ============================================================================

// UpdateContent replaces the buffer and marks the tab dirty
func (m *Manager) UpdateContent(tabID, content string) (Tab, error) {
	return m.mutate(tabID, func(t *Tab) {
		t.Content = content
		t.IsDirty = true
	})
}

// MarkDirty flags unsaved changes without touching content
func (m *Manager) MarkDirty(tabID string) (Tab, error) {
	return m.mutate(tabID, func(t *Tab) { t.IsDirty = true })
}

// Save clears the dirty flag and returns the saved snapshot. Writing the
// buffer anywhere is the caller's business.
func (m *Manager) Save(tabID string) (Tab, error) {
	return m.mutate(tabID, func(t *Tab) { t.IsDirty = false })
}

// SetCursor records the caret position
func (m *Manager) SetCursor(tabID string, pos types.Position) (Tab, error) {
	return m.mutate(tabID, func(t *Tab) { t.CursorPosition = pos })
}

// SetScroll records the viewport offset
func (m *Manager) SetScroll(tabID string, scroll types.Scroll) (Tab, error) {
	return m.mutate(tabID, func(t *Tab) { t.ScrollPosition = scroll })
}

// SetSelections replaces the selection ranges
func (m *Manager) SetSelections(tabID string, ranges []types.Range) (Tab, error) {
	return m.mutate(tabID, func(t *Tab) {
		t.Selections = append([]types.Range(nil), ranges...)
	})
}

// ============================================================================
// Path cascade
// ============================================================================

// Retarget points every tab opened from fileID at a new path. It returns the
// number of tabs changed.
func (m *Manager) Retarget(fileID, path, name string) int {
	if fileID == "" {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.tabs {
		if t.FileID == fileID && t.Path != path {
			t.Path, t.Name = path, name
			n++
		}
	}
	return n
}

// RetargetPrefix rewrites the paths of tabs at or below oldPath so they sit
// below newPath instead.
func (m *Manager) RetargetPrefix(oldPath, newPath string) int {
	if oldPath == "" || oldPath == newPath {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.tabs {
		switch {
		case t.Path == oldPath:
			t.Path = newPath
			t.Name = baseName(newPath)
		case strings.HasPrefix(t.Path, oldPath+"/"):
			t.Path = newPath + t.Path[len(oldPath):]
		default:
			continue
		}
		n++
	}
	return n
}

// ============================================================================
// Internal helpers (caller must hold the lock)
// ============================================================================

func (m *Manager) find(doc Document) int {
	if doc.FileID != "" {
		for i, t := range m.tabs {
			if t.FileID == doc.FileID {
				return i
			}
		}
	}
	for i, t := range m.tabs {
		if t.Path == doc.Path && (t.FileID == "" || doc.FileID == "") {
			return i
		}
	}
	return -1
}

func (m *Manager) index(tabID string) int {
	for i, t := range m.tabs {
		if t.ID == tabID {
			return i
		}
	}
	return -1
}

func (m *Manager) mutate(tabID string, fn func(*Tab)) (Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(tabID)
	if i < 0 {
		return Tab{}, notFound(tabID)
	}
	fn(m.tabs[i])
	return m.tabs[i].clone(), nil
}

func (m *Manager) activateAt(i int) {
	for j, t := range m.tabs {
		t.IsActive = j == i
	}
}

func (m *Manager) pinnedCount() int {
	n := 0
	for n < len(m.tabs) && m.tabs[n].IsPinned {
		n++
	}
	return n
}

func (m *Manager) removeAt(i int) *Tab {
	t := m.detach(i)
	delete(m.ledgers, t.ID)
	return t
}

func (m *Manager) insertAt(i int, t *Tab) {
	m.tabs = append(m.tabs, nil)
	copy(m.tabs[i+1:], m.tabs[i:])
	m.tabs[i] = t
}

// ledger returns the tab's ledger, creating one for tabs restored without
// history.
func (m *Manager) ledger(tabID string) *history.Ledger {
	l, ok := m.ledgers[tabID]
	if !ok {
		l = history.New(m.capacity)
		m.ledgers[tabID] = l
	}
	return l
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
