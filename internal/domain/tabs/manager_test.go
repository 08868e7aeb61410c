package tabs

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webide/backend/internal/shared/types"
)

func newTestManager(opts ...Option) *Manager {
	seq := 0
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	defaults := []Option{
		WithIDFunc(func() string {
			seq++
			return fmt.Sprintf("tab-%d", seq)
		}),
		WithClock(func() time.Time { return base }),
	}
	return NewManager(append(defaults, opts...)...)
}

func doc(path string) Document {
	return Document{FileID: "file:" + path, Path: path, Content: "content of " + path, Language: "typescript"}
}

// open opens each path in turn and returns the tab ids
func open(t *testing.T, m *Manager, paths ...string) []string {
	t.Helper()
	ids := make([]string, len(paths))
	for i, p := range paths {
		tab, created, err := m.Open(doc(p))
		require.NoError(t, err)
		require.True(t, created)
		ids[i] = tab.ID
	}
	return ids
}

func order(m *Manager) []string {
	var out []string
	for _, t := range m.List() {
		out = append(out, t.ID)
	}
	return out
}

func activeID(m *Manager) string {
	t, ok := m.Active()
	if !ok {
		return ""
	}
	return t.ID
}

// assertTabInvariants checks pinned prefix, single active and unique ids
func assertTabInvariants(t *testing.T, m *Manager) {
	t.Helper()
	list := m.List()
	seenUnpinned := false
	active := 0
	ids := make(map[string]bool)
	for _, tab := range list {
		if tab.IsPinned {
			assert.False(t, seenUnpinned, "pinned tab %s after an unpinned one", tab.ID)
		} else {
			seenUnpinned = true
		}
		if tab.IsActive {
			active++
		}
		assert.False(t, ids[tab.ID], "duplicate id %s", tab.ID)
		ids[tab.ID] = true
	}
	if len(list) > 0 {
		assert.Equal(t, 1, active)
	} else {
		assert.Zero(t, active)
	}
}

func TestOpen(t *testing.T) {
	m := newTestManager()

	first, created, err := m.Open(doc("src/a.ts"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "a.ts", first.Name)
	assert.Equal(t, "content of src/a.ts", first.Content)
	assert.True(t, first.IsActive)
	assert.False(t, first.IsDirty)

	open(t, m, "src/b.ts")
	assert.NotEqual(t, first.ID, activeID(m))

	t.Run("same path activates existing tab", func(t *testing.T) {
		again, created, err := m.Open(doc("src/a.ts"))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, first.ID, activeID(m))
		assert.Equal(t, 2, m.Len())
	})

	t.Run("empty path", func(t *testing.T) {
		_, _, err := m.Open(Document{Name: "x"})
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	assertTabInvariants(t, m)
}

func TestOpenMatchesFileBeforePath(t *testing.T) {
	tests := []struct {
		name        string
		existing    Document
		open        Document
		wantCreated bool
		wantFileID  string
	}{
		{
			name:        "same file at a new path",
			existing:    Document{FileID: "file-1", Path: "old.ts"},
			open:        Document{FileID: "file-1", Path: "new.ts"},
			wantCreated: false,
			wantFileID:  "file-1",
		},
		{
			name:        "stale buffer of another file at the same path",
			existing:    Document{FileID: "file-1", Path: "a.ts", Content: "A"},
			open:        Document{FileID: "file-2", Path: "a.ts", Content: "B"},
			wantCreated: true,
			wantFileID:  "file-2",
		},
		{
			name:        "tab without a file adopts it",
			existing:    Document{Path: "a.ts"},
			open:        Document{FileID: "file-2", Path: "a.ts"},
			wantCreated: false,
			wantFileID:  "file-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager()
			first, _, err := m.Open(tt.existing)
			require.NoError(t, err)

			got, created, err := m.Open(tt.open)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)
			assert.Equal(t, tt.wantFileID, got.FileID)
			assert.Equal(t, got.ID, activeID(m))
			if !tt.wantCreated {
				assert.Equal(t, first.ID, got.ID)
			} else {
				assert.Equal(t, tt.open.Content, got.Content)
			}
			assertTabInvariants(t, m)
		})
	}
}

func TestOpenSnapshotsContent(t *testing.T) {
	m := newTestManager()
	d := doc("a.ts")
	tab, _, err := m.Open(d)
	require.NoError(t, err)

	d.Content = "changed later"
	got, _ := m.Get(tab.ID)
	assert.Equal(t, "content of a.ts", got.Content)

	// returned copies are detached too
	got.Content = "mutated copy"
	got2, _ := m.Get(tab.ID)
	assert.Equal(t, "content of a.ts", got2.Content)
}

func TestClose(t *testing.T) {
	tests := []struct {
		name       string
		activate   int
		close      int
		wantActive int // index into the ids, -1 for none
	}{
		{"active middle activates previous", 1, 1, 0},
		{"active first activates new first", 0, 0, 1},
		{"active last activates previous", 2, 2, 1},
		{"inactive keeps active", 2, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager()
			ids := open(t, m, "a", "b", "c")
			_, err := m.Activate(ids[tt.activate])
			require.NoError(t, err)

			require.NoError(t, m.Close(ids[tt.close]))

			assert.Equal(t, ids[tt.wantActive], activeID(m))
			_, ok := m.Get(ids[tt.close])
			assert.False(t, ok)
			assertTabInvariants(t, m)
		})
	}

	t.Run("last tab leaves nothing active", func(t *testing.T) {
		m := newTestManager()
		ids := open(t, m, "a")
		require.NoError(t, m.Close(ids[0]))
		_, ok := m.Active()
		assert.False(t, ok)
	})

	t.Run("unknown id", func(t *testing.T) {
		m := newTestManager()
		assert.ErrorIs(t, m.Close("nope"), ErrNotFound)
	})
}

func TestCloseDestroysHistory(t *testing.T) {
	m := newTestManager()
	ids := open(t, m, "a")
	require.NoError(t, m.Checkpoint(ids[0]))

	require.NoError(t, m.Close(ids[0]))
	_, err := m.HistoryOf(ids[0])
	assert.ErrorIs(t, err, ErrNotFound)

	reopened := open(t, m, "a")
	h, err := m.HistoryOf(reopened[0])
	require.NoError(t, err)
	assert.Empty(t, h.Undo)
}

func TestBulkClose(t *testing.T) {
	t.Run("close others", func(t *testing.T) {
		m := newTestManager()
		ids := open(t, m, "a", "b", "c")
		closed, err := m.CloseOthers(ids[1])
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{ids[0], ids[2]}, closed)
		assert.Equal(t, []string{ids[1]}, order(m))
		assert.Equal(t, ids[1], activeID(m))
	})

	t.Run("close to right moves active", func(t *testing.T) {
		m := newTestManager()
		ids := open(t, m, "a", "b", "c", "d")
		closed, err := m.CloseToRight(ids[1])
		require.NoError(t, err)
		assert.Equal(t, []string{ids[2], ids[3]}, closed)
		assert.Equal(t, ids[:2], order(m))
		assert.Equal(t, ids[1], activeID(m))
	})

	t.Run("close to right keeps active on the left", func(t *testing.T) {
		m := newTestManager()
		ids := open(t, m, "a", "b", "c")
		_, err := m.Activate(ids[0])
		require.NoError(t, err)
		_, err = m.CloseToRight(ids[1])
		require.NoError(t, err)
		assert.Equal(t, ids[0], activeID(m))
	})

	t.Run("close all", func(t *testing.T) {
		m := newTestManager()
		ids := open(t, m, "a", "b")
		assert.Equal(t, ids, m.CloseAll())
		assert.Zero(t, m.Len())
	})

	t.Run("unknown id", func(t *testing.T) {
		m := newTestManager()
		_, err := m.CloseOthers("x")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = m.CloseToRight("x")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPinnedTabsStayPrefix(t *testing.T) {
	m := newTestManager()
	ids := open(t, m, "p1", "p2", "u1")
	_, err := m.Pin(ids[0])
	require.NoError(t, err)
	_, err = m.Pin(ids[1])
	require.NoError(t, err)
	require.Equal(t, ids, order(m))

	t.Run("unpinned tab cannot enter the prefix", func(t *testing.T) {
		require.NoError(t, m.Move(2, 0))
		assert.Equal(t, ids, order(m))
	})

	t.Run("pinned tab cannot leave the prefix", func(t *testing.T) {
		require.NoError(t, m.Move(0, 2))
		assert.Equal(t, []string{ids[1], ids[0], ids[2]}, order(m))
	})

	t.Run("out of range source", func(t *testing.T) {
		assert.ErrorIs(t, m.Move(3, 0), ErrIndexOutOfRange)
		assert.ErrorIs(t, m.Move(-1, 0), ErrIndexOutOfRange)
	})

	assertTabInvariants(t, m)
}

func TestPinUnpin(t *testing.T) {
	m := newTestManager()
	ids := open(t, m, "a", "b", "c", "d")

	_, err := m.Pin(ids[2])
	require.NoError(t, err)
	assert.Equal(t, []string{ids[2], ids[0], ids[1], ids[3]}, order(m))

	tab, err := m.Pin(ids[3])
	require.NoError(t, err)
	assert.True(t, tab.IsPinned)
	assert.Equal(t, []string{ids[2], ids[3], ids[0], ids[1]}, order(m), "pin appends to the pinned group")

	_, err = m.Unpin(ids[2])
	require.NoError(t, err)
	assert.Equal(t, []string{ids[3], ids[2], ids[0], ids[1]}, order(m), "unpin inserts at the start of the unpinned group")

	// idempotent
	_, err = m.Unpin(ids[2])
	require.NoError(t, err)
	assert.Equal(t, []string{ids[3], ids[2], ids[0], ids[1]}, order(m))

	_, err = m.Pin("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assertTabInvariants(t, m)
}

func TestRandomReorderKeepsInvariants(t *testing.T) {
	m := newTestManager()
	ids := open(t, m, "a", "b", "c", "d", "e", "f")
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 300; i++ {
		id := ids[rng.Intn(len(ids))]
		switch rng.Intn(3) {
		case 0:
			_, _ = m.Pin(id)
		case 1:
			_, _ = m.Unpin(id)
		default:
			_ = m.Move(rng.Intn(len(ids)), rng.Intn(len(ids)+2)-1)
		}
		assertTabInvariants(t, m)
		require.Len(t, m.List(), len(ids))
	}
}

func TestDuplicate(t *testing.T) {
	m := newTestManager()
	ids := open(t, m, "a", "b")

	_, err := m.UpdateContent(ids[0], "v2")
	require.NoError(t, err)
	require.NoError(t, m.PushHistory(ids[0], "v1", types.Position{}))
	require.NoError(t, m.Checkpoint(ids[0]))
	_, ok, err := m.Undo(ids[0])
	require.NoError(t, err)
	require.True(t, ok)

	dup, err := m.Duplicate(ids[0])
	require.NoError(t, err)
	assert.NotEqual(t, ids[0], dup.ID)
	assert.True(t, dup.IsDirty)
	assert.True(t, dup.IsActive)
	assert.Equal(t, []string{ids[0], dup.ID, ids[1]}, order(m))

	h, err := m.HistoryOf(dup.ID)
	require.NoError(t, err)
	assert.Len(t, h.Undo, 1)
	assert.Empty(t, h.Redo, "redo is not carried over")

	src, err := m.HistoryOf(ids[0])
	require.NoError(t, err)
	assert.Len(t, src.Redo, 1)
}

func TestDuplicatePinnedLandsOutsidePrefix(t *testing.T) {
	m := newTestManager()
	ids := open(t, m, "a", "b", "c")
	_, err := m.Pin(ids[0])
	require.NoError(t, err)
	_, err = m.Pin(ids[1])
	require.NoError(t, err)

	dup, err := m.Duplicate(ids[0])
	require.NoError(t, err)
	assert.False(t, dup.IsPinned)
	assert.Equal(t, []string{ids[0], ids[1], dup.ID, ids[2]}, order(m))
	assertTabInvariants(t, m)
}

func TestContentAndEditorState(t *testing.T) {
	m := newTestManager()
	ids := open(t, m, "a")

	tab, err := m.UpdateContent(ids[0], "new")
	require.NoError(t, err)
	assert.True(t, tab.IsDirty)
	assert.Equal(t, "new", tab.Content)

	tab, err = m.Save(ids[0])
	require.NoError(t, err)
	assert.False(t, tab.IsDirty)
	assert.Equal(t, "new", tab.Content)

	tab, err = m.MarkDirty(ids[0])
	require.NoError(t, err)
	assert.True(t, tab.IsDirty)

	pos := types.Position{Line: 3, Column: 7}
	tab, err = m.SetCursor(ids[0], pos)
	require.NoError(t, err)
	assert.Equal(t, pos, tab.CursorPosition)

	tab, err = m.SetScroll(ids[0], types.Scroll{Top: 120})
	require.NoError(t, err)
	assert.Equal(t, 120, tab.ScrollPosition.Top)

	ranges := []types.Range{{Start: types.Position{Line: 1}, End: types.Position{Line: 2}}}
	tab, err = m.SetSelections(ids[0], ranges)
	require.NoError(t, err)
	ranges[0].Start.Line = 99
	assert.Equal(t, 1, tab.Selections[0].Start.Line)

	_, err = m.UpdateContent("missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUndoRedoThroughManager(t *testing.T) {
	m := newTestManager()
	ids := open(t, m, "a")
	id := ids[0]

	require.NoError(t, m.Checkpoint(id))
	_, err := m.UpdateContent(id, "edited")
	require.NoError(t, err)
	_, err = m.Save(id)
	require.NoError(t, err)

	tab, ok, err := m.Undo(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "content of a", tab.Content)
	assert.True(t, tab.IsDirty)

	tab, ok, err = m.Redo(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "edited", tab.Content)

	_, ok, err = m.Redo(id)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = m.Undo("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryCapacity(t *testing.T) {
	m := newTestManager(WithHistoryCapacity(3))
	ids := open(t, m, "a")
	for i := 0; i < 10; i++ {
		require.NoError(t, m.PushHistory(ids[0], fmt.Sprint(i), types.Position{}))
	}
	h, err := m.HistoryOf(ids[0])
	require.NoError(t, err)
	assert.Len(t, h.Undo, 3)
}

func TestRetarget(t *testing.T) {
	m := newTestManager()
	ids := open(t, m, "src/a.ts", "src/lib/util.ts", "srcfoo/b.ts", "main.go")

	n := m.RetargetPrefix("src", "app")
	assert.Equal(t, 2, n)

	got := func(i int) Tab {
		tab, ok := m.Get(ids[i])
		require.True(t, ok)
		return tab
	}
	assert.Equal(t, "app/a.ts", got(0).Path)
	assert.Equal(t, "app/lib/util.ts", got(1).Path)
	assert.Equal(t, "srcfoo/b.ts", got(2).Path, "sibling with shared prefix is untouched")

	assert.Equal(t, 1, m.RetargetPrefix("main.go", "cmd/main.go"))
	assert.Equal(t, "main.go", got(3).Name)
	assert.Equal(t, "cmd/main.go", got(3).Path)

	assert.Equal(t, 1, m.Retarget("file:src/a.ts", "app/b2.ts", "b2.ts"))
	assert.Equal(t, "b2.ts", got(0).Name)
	assert.Zero(t, m.Retarget("", "x", "x"))

	_, found := m.FindByPath("app/b2.ts")
	assert.True(t, found)
	assert.Equal(t, "content of src/a.ts", got(0).Content, "buffers are untouched")
}

func TestSnapshotRestore(t *testing.T) {
	m := newTestManager()
	ids := open(t, m, "a", "b", "c")
	_, err := m.Pin(ids[2])
	require.NoError(t, err)
	require.NoError(t, m.PushHistory(ids[1], "old", types.Position{Line: 1}))
	_, err = m.Activate(ids[1])
	require.NoError(t, err)

	snap := m.Snapshot()

	restored := newTestManager()
	restored.Restore(snap)
	assert.Equal(t, m.List(), restored.List())

	h, err := restored.HistoryOf(ids[1])
	require.NoError(t, err)
	require.Len(t, h.Undo, 1)
	assert.Equal(t, "old", h.Undo[0].Content)
}

func TestRestoreRepairsInvariants(t *testing.T) {
	m := newTestManager()
	m.Restore(State{Tabs: []Tab{
		{ID: "x", Path: "a", IsActive: true},
		{ID: "y", Path: "b", IsPinned: true, IsActive: true},
		{ID: "z", Path: "a"},
		{ID: "x", Path: "c"},
		{Path: ""},
	}})

	list := m.List()
	require.Len(t, list, 4)
	assert.Equal(t, "y", list[0].ID, "pinned tab moved to the front")
	assert.Equal(t, "x", list[1].ID)
	assert.Equal(t, "z", list[2].ID, "tabs sharing a path are kept")
	assert.Equal(t, "a", list[2].Path)
	assert.NotEqual(t, "x", list[3].ID, "repeated id regenerated")
	assert.Equal(t, "c", list[3].Name)
	assertTabInvariants(t, m)

	empty := newTestManager()
	empty.Restore(State{})
	assert.Zero(t, empty.Len())
}
