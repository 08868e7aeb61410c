package workspace

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/webide/backend/internal/domain/tabs"
	"github.com/GriffinCanCode/webide/backend/internal/domain/tree"
	"github.com/GriffinCanCode/webide/backend/internal/shared/types"
)

// ============================================================================
// Tab reads
// ============================================================================

// Tabs lists open tabs in display order
func (w *Workspace) Tabs() []tabs.Tab { return w.tabs.List() }

// Tab returns one tab
func (w *Workspace) Tab(tabID string) (tabs.Tab, bool) { return w.tabs.Get(tabID) }

// ActiveTab returns the active tab, if any
func (w *Workspace) ActiveTab() (tabs.Tab, bool) { return w.tabs.Active() }

// TabHistory returns the undo and redo stacks of a tab
func (w *Workspace) TabHistory(tabID string) (tabs.HistorySnapshot, error) {
	return w.tabs.HistoryOf(tabID)
}

// OrphanedTabs returns the tabs whose node no longer exists. They stay open
// as plain buffers until closed.
func (w *Workspace) OrphanedTabs() []tabs.Tab {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []tabs.Tab
	for _, t := range w.tabs.List() {
		if _, ok := w.tree.FindByID(t.FileID); !ok {
			out = append(out, t)
		}
	}
	return out
}

func (w *Workspace) orphanedLocked() []string {
	out := []string{}
	for _, t := range w.tabs.List() {
		if _, ok := w.tree.FindByID(t.FileID); !ok {
			out = append(out, t.ID)
		}
	}
	return out
}

// ============================================================================
// Tab lifecycle
// ============================================================================

// OpenTab opens the file node in a tab, or activates the tab already showing it
func (w *Workspace) OpenTab(ctx context.Context, nodeID string) (tabs.Tab, error) {
	return mutate(ctx, w, "open_tab", func() (tabs.Tab, change, error) {
		n, ok := w.tree.FindByID(nodeID)
		if !ok {
			return tabs.Tab{}, change{}, fmt.Errorf("%w: id %s", tree.ErrNotFound, nodeID)
		}
		if !n.IsFile() {
			return tabs.Tab{}, change{}, fmt.Errorf("%w: %q", tree.ErrNotFile, n.Path)
		}
		t, _, err := w.tabs.Open(tabs.Document{
			FileID:   n.ID,
			Path:     n.Path,
			Name:     n.Name,
			Content:  n.Content(),
			Language: n.Language(),
		})
		if err != nil {
			return tabs.Tab{}, change{}, err
		}
		return t, tabChange(t.ID), nil
	})
}

// CloseTab closes a tab and discards its history
func (w *Workspace) CloseTab(ctx context.Context, tabID string) error {
	_, err := mutate(ctx, w, "close_tab", func() (struct{}, change, error) {
		if err := w.tabs.Close(tabID); err != nil {
			return struct{}{}, change{}, err
		}
		return struct{}{}, tabChange(tabID), nil
	})
	return err
}

// ActivateTab focuses a tab
func (w *Workspace) ActivateTab(ctx context.Context, tabID string) (tabs.Tab, error) {
	return tabOp(ctx, w, "activate_tab", tabID, w.tabs.Activate)
}

// CloseOtherTabs closes every tab but tabID
func (w *Workspace) CloseOtherTabs(ctx context.Context, tabID string) ([]string, error) {
	return closeMany(ctx, w, "close_other_tabs", func() ([]string, error) { return w.tabs.CloseOthers(tabID) })
}

// CloseTabsToRight closes the tabs after tabID
func (w *Workspace) CloseTabsToRight(ctx context.Context, tabID string) ([]string, error) {
	return closeMany(ctx, w, "close_tabs_right", func() ([]string, error) { return w.tabs.CloseToRight(tabID) })
}

// CloseAllTabs closes every tab
func (w *Workspace) CloseAllTabs(ctx context.Context) ([]string, error) {
	return closeMany(ctx, w, "close_all_tabs", func() ([]string, error) { return w.tabs.CloseAll(), nil })
}

func closeMany(ctx context.Context, w *Workspace, op string, fn func() ([]string, error)) ([]string, error) {
	return mutate(ctx, w, op, func() ([]string, change, error) {
		closed, err := fn()
		if err != nil {
			return nil, change{}, err
		}
		return closed, change{event: EventTabs, persist: slotSession, ids: closed}, nil
	})
}

// DuplicateTab clones a tab next to the source
func (w *Workspace) DuplicateTab(ctx context.Context, tabID string) (tabs.Tab, error) {
	return mutate(ctx, w, "duplicate_tab", func() (tabs.Tab, change, error) {
		dup, err := w.tabs.Duplicate(tabID)
		if err != nil {
			return tabs.Tab{}, change{}, err
		}
		return dup, change{event: EventTabs, persist: slotSession, ids: []string{tabID, dup.ID}}, nil
	})
}

// PinTab pins a tab
func (w *Workspace) PinTab(ctx context.Context, tabID string) (tabs.Tab, error) {
	return tabOp(ctx, w, "pin_tab", tabID, w.tabs.Pin)
}

// UnpinTab unpins a tab
func (w *Workspace) UnpinTab(ctx context.Context, tabID string) (tabs.Tab, error) {
	return tabOp(ctx, w, "unpin_tab", tabID, w.tabs.Unpin)
}

// MoveTab reorders tabs by index
func (w *Workspace) MoveTab(ctx context.Context, from, to int) error {
	_, err := mutate(ctx, w, "move_tab", func() (struct{}, change, error) {
		if err := w.tabs.Move(from, to); err != nil {
			return struct{}{}, change{}, err
		}
		return struct{}{}, change{event: EventTabs, persist: slotSession}, nil
	})
	return err
}

// ============================================================================
// Buffers and saving
// ============================================================================

// UpdateTabContent replaces a tab's buffer and marks it dirty
func (w *Workspace) UpdateTabContent(ctx context.Context, tabID, content string) (tabs.Tab, error) {
	return tabOp(ctx, w, "update_tab_content", tabID, func(id string) (tabs.Tab, error) {
		return w.tabs.UpdateContent(id, content)
	})
}

// MarkTabDirty flags unsaved changes
func (w *Workspace) MarkTabDirty(ctx context.Context, tabID string) (tabs.Tab, error) {
	return tabOp(ctx, w, "mark_tab_dirty", tabID, w.tabs.MarkDirty)
}

// SaveTab clears the dirty flag only. The node is not written; use CommitTab
// for that.
func (w *Workspace) SaveTab(ctx context.Context, tabID string) (tabs.Tab, error) {
	return tabOp(ctx, w, "save_tab", tabID, w.tabs.Save)
}

// CommitTab writes the tab buffer into its node and clears the dirty flag.
// An orphaned tab fails with tree.ErrNotFound.
func (w *Workspace) CommitTab(ctx context.Context, tabID string) (tabs.Tab, error) {
	return mutate(ctx, w, "commit_tab", func() (tabs.Tab, change, error) {
		t, ok := w.tabs.Get(tabID)
		if !ok {
			return tabs.Tab{}, change{}, fmt.Errorf("%w: %s", tabs.ErrNotFound, tabID)
		}
		content := t.Content
		n, err := w.tree.UpdateNode(t.FileID, tree.Patch{Content: &content})
		if err != nil {
			return tabs.Tab{}, change{}, fmt.Errorf("commit tab %s: %w", tabID, err)
		}
		saved, err := w.tabs.Save(tabID)
		if err != nil {
			return tabs.Tab{}, change{}, err
		}
		return saved, change{event: EventTabs, persist: slotTree | slotSession, ids: []string{tabID, n.ID}}, nil
	})
}

// SetTabCursor records the caret position
func (w *Workspace) SetTabCursor(ctx context.Context, tabID string, pos types.Position) (tabs.Tab, error) {
	return tabOp(ctx, w, "set_tab_cursor", tabID, func(id string) (tabs.Tab, error) {
		return w.tabs.SetCursor(id, pos)
	})
}

// SetTabScroll records the viewport offset
func (w *Workspace) SetTabScroll(ctx context.Context, tabID string, scroll types.Scroll) (tabs.Tab, error) {
	return tabOp(ctx, w, "set_tab_scroll", tabID, func(id string) (tabs.Tab, error) {
		return w.tabs.SetScroll(id, scroll)
	})
}

// SetTabSelections replaces the selection ranges
func (w *Workspace) SetTabSelections(ctx context.Context, tabID string, ranges []types.Range) (tabs.Tab, error) {
	return tabOp(ctx, w, "set_tab_selections", tabID, func(id string) (tabs.Tab, error) {
		return w.tabs.SetSelections(id, ranges)
	})
}

// ============================================================================
// History
// ============================================================================

// Checkpoint pushes the tab's current buffer onto its undo stack
func (w *Workspace) Checkpoint(ctx context.Context, tabID string) error {
	_, err := mutate(ctx, w, "checkpoint", func() (struct{}, change, error) {
		if err := w.tabs.Checkpoint(tabID); err != nil {
			return struct{}{}, change{}, err
		}
		return struct{}{}, tabChange(tabID), nil
	})
	return err
}

// PushHistory pushes a prior buffer state onto the tab's undo stack
func (w *Workspace) PushHistory(ctx context.Context, tabID, content string, cursor types.Position) error {
	_, err := mutate(ctx, w, "push_history", func() (struct{}, change, error) {
		if err := w.tabs.PushHistory(tabID, content, cursor); err != nil {
			return struct{}{}, change{}, err
		}
		return struct{}{}, tabChange(tabID), nil
	})
	return err
}

// Undo steps the tab back one checkpoint. The boolean is false when there
// was nothing to undo.
func (w *Workspace) Undo(ctx context.Context, tabID string) (tabs.Tab, bool, error) {
	return w.step(ctx, "undo", tabID, w.tabs.Undo)
}

// Redo reapplies the last undone checkpoint
func (w *Workspace) Redo(ctx context.Context, tabID string) (tabs.Tab, bool, error) {
	return w.step(ctx, "redo", tabID, w.tabs.Redo)
}

type stepResult struct {
	tab     tabs.Tab
	applied bool
}

func (w *Workspace) step(ctx context.Context, op, tabID string, fn func(string) (tabs.Tab, bool, error)) (tabs.Tab, bool, error) {
	r, err := mutate(ctx, w, op, func() (stepResult, change, error) {
		t, ok, err := fn(tabID)
		if err != nil {
			return stepResult{}, change{}, err
		}
		if !ok {
			return stepResult{tab: t}, change{}, nil
		}
		return stepResult{tab: t, applied: true}, tabChange(tabID), nil
	})
	return r.tab, r.applied, err
}

func tabOp(ctx context.Context, w *Workspace, op, tabID string, fn func(string) (tabs.Tab, error)) (tabs.Tab, error) {
	return mutate(ctx, w, op, func() (tabs.Tab, change, error) {
		t, err := fn(tabID)
		if err != nil {
			return tabs.Tab{}, change{}, err
		}
		return t, tabChange(tabID), nil
	})
}

func tabChange(tabID string) change {
	return change{event: EventTabs, persist: slotSession, ids: []string{tabID}}
}
