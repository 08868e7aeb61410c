package workspace

import (
	"context"

	"github.com/GriffinCanCode/webide/backend/internal/domain/tree"
)

// ============================================================================
// Tree reads
// ============================================================================

// Tree returns the canonical root list in insertion order
func (w *Workspace) Tree() []*tree.Node { return w.tree.Nodes() }

// SortedTree returns the tree ordered by the current sort preference
func (w *Workspace) SortedTree() []*tree.Node { return w.tree.SortedView() }

// FilteredTree returns the nodes whose name contains query, with ancestors
func (w *Workspace) FilteredTree(query string) []*tree.Node { return w.tree.FilteredView(query) }

// GlobTree returns the nodes whose path matches pattern, with ancestors
func (w *Workspace) GlobTree(pattern string) ([]*tree.Node, error) { return w.tree.GlobView(pattern) }

// Flatten lists every node depth-first
func (w *Workspace) Flatten() []*tree.Node { return w.tree.Flatten() }

// Node looks a node up by id
func (w *Workspace) Node(nodeID string) (*tree.Node, bool) { return w.tree.FindByID(nodeID) }

// NodeByPath looks a node up by path
func (w *Workspace) NodeByPath(path string) (*tree.Node, bool) { return w.tree.FindByPath(path) }

// Selection returns the selected node ids
func (w *Workspace) Selection() []string { return w.tree.Selection() }

// Sort returns the sort preference
func (w *Workspace) Sort() (tree.SortKey, tree.SortOrder) { return w.tree.Sort() }

// ValidateMove pre-flights a move without changing anything
func (w *Workspace) ValidateMove(nodeID, targetPath string) tree.MoveValidation {
	return w.tree.ValidateMove(targetPath, nodeID)
}

// ============================================================================
// Tree mutations
// ============================================================================

// AddNode attaches node under the folder at parentPath ("" for the root)
func (w *Workspace) AddNode(ctx context.Context, node *tree.Node, parentPath string) (*tree.Node, error) {
	return mutate(ctx, w, "add_node", func() (*tree.Node, change, error) {
		added, err := w.tree.AddNode(node, parentPath)
		if err != nil {
			return nil, change{}, err
		}
		return added, change{event: EventTree, persist: slotTree, ids: []string{added.ID}}, nil
	})
}

// UpdateNode patches a node's content, language or expansion. Open tabs keep
// their own buffers.
func (w *Workspace) UpdateNode(ctx context.Context, nodeID string, patch tree.Patch) (*tree.Node, error) {
	return mutate(ctx, w, "update_node", func() (*tree.Node, change, error) {
		n, err := w.tree.UpdateNode(nodeID, patch)
		if err != nil {
			return nil, change{}, err
		}
		return n, change{event: EventTree, persist: slotTree, ids: []string{n.ID}}, nil
	})
}

// DeleteNode removes a node and its subtree. Tabs opened on removed files stay
// open as orphans; see OrphanedTabs.
func (w *Workspace) DeleteNode(ctx context.Context, nodeID string) ([]string, error) {
	return mutate(ctx, w, "delete_node", func() ([]string, change, error) {
		removed, err := w.tree.DeleteNode(nodeID)
		if err != nil {
			return nil, change{}, err
		}
		return removed, change{event: EventTree, persist: slotTree, ids: removed}, nil
	})
}

// RenameNode renames a node and moves open tabs at or below it to the new path
func (w *Workspace) RenameNode(ctx context.Context, nodeID, name string) (*tree.Node, error) {
	return mutate(ctx, w, "rename_node", func() (*tree.Node, change, error) {
		// a missing node makes the store call below fail
		before, _ := w.tree.FindByID(nodeID)
		renamed, err := w.tree.RenameNode(nodeID, name)
		if err != nil {
			return nil, change{}, err
		}
		return renamed, w.cascade(before.Path, renamed), nil
	})
}

// MoveNode moves a node into the folder at targetPath ("" for the root). A
// rejected move returns a *tree.MoveError carrying the reason.
func (w *Workspace) MoveNode(ctx context.Context, nodeID, targetPath string) (*tree.Node, error) {
	return mutate(ctx, w, "move_node", func() (*tree.Node, change, error) {
		// a missing node makes the store call below fail
		before, _ := w.tree.FindByID(nodeID)
		moved, err := w.tree.MoveNode(nodeID, targetPath)
		if err != nil {
			return nil, change{}, err
		}
		return moved, w.cascade(before.Path, moved), nil
	})
}

// cascade rewrites tab paths after n moved away from oldPath. Both slots are
// touched when any tab followed.
func (w *Workspace) cascade(oldPath string, n *tree.Node) change {
	retargeted := w.tabs.RetargetPrefix(oldPath, n.Path)
	if n.IsFile() {
		retargeted += w.tabs.Retarget(n.ID, n.Path, n.Name)
	}
	ch := change{event: EventTree, persist: slotTree, ids: []string{n.ID}}
	if retargeted > 0 {
		ch.persist |= slotSession
	}
	return ch
}

// SetExpanded opens or collapses a folder
func (w *Workspace) SetExpanded(ctx context.Context, folderID string, expanded bool) error {
	_, err := mutate(ctx, w, "set_expanded", func() (struct{}, change, error) {
		if err := w.tree.SetExpanded(folderID, expanded); err != nil {
			return struct{}{}, change{}, err
		}
		return struct{}{}, change{event: EventTree, persist: slotTree, ids: []string{folderID}}, nil
	})
	return err
}

// ToggleExpanded flips a folder and returns its new state
func (w *Workspace) ToggleExpanded(ctx context.Context, folderID string) (bool, error) {
	return mutate(ctx, w, "toggle_expanded", func() (bool, change, error) {
		expanded, err := w.tree.ToggleExpanded(folderID)
		if err != nil {
			return false, change{}, err
		}
		return expanded, change{event: EventTree, persist: slotTree, ids: []string{folderID}}, nil
	})
}

// SetSelection replaces the selection. Selection is not persisted.
func (w *Workspace) SetSelection(ctx context.Context, ids []string) ([]string, error) {
	return mutate(ctx, w, "select", func() ([]string, change, error) {
		w.tree.ClearSelection()
		w.tree.Select(ids...)
		sel := w.tree.Selection()
		return sel, change{event: EventTree, persist: slotNone, ids: sel}, nil
	})
}

// SetSort changes the sort preference
func (w *Workspace) SetSort(ctx context.Context, key tree.SortKey, order tree.SortOrder) error {
	_, err := mutate(ctx, w, "set_sort", func() (struct{}, change, error) {
		if err := w.tree.SetSort(key, order); err != nil {
			return struct{}{}, change{}, err
		}
		return struct{}{}, change{event: EventTree, persist: slotTree}, nil
	})
	return err
}

// ============================================================================
// Drag and drop
// ============================================================================

// BeginDrag starts a drag gesture on a node
func (w *Workspace) BeginDrag(ctx context.Context, nodeID string) (tree.Drag, error) {
	return mutate(ctx, w, "drag_begin", func() (tree.Drag, change, error) {
		d, err := w.tree.BeginDrag(nodeID)
		if err != nil {
			return tree.Drag{}, change{}, err
		}
		return d, change{event: EventDrag, ids: []string{nodeID}}, nil
	})
}

// DragOver validates the hovered folder against the current tree
func (w *Workspace) DragOver(targetPath string) tree.MoveValidation {
	return w.tree.DragOver(targetPath)
}

// Drop commits the gesture as a move into targetPath. The gesture ends even
// when the move is rejected, and subscribers get a drag event for that.
func (w *Workspace) Drop(ctx context.Context, targetPath string) (*tree.Node, error) {
	return mutate(ctx, w, "drag_drop", func() (*tree.Node, change, error) {
		var oldPath string
		d, dragging := w.tree.Dragging()
		if dragging {
			if n, ok := w.tree.FindByID(d.NodeID); ok {
				oldPath = n.Path
			}
		}
		moved, err := w.tree.Drop(targetPath)
		if err != nil {
			if dragging {
				w.events.publish(Event{Type: EventDrag, Op: "drag_drop", IDs: []string{d.NodeID}, At: w.now()})
			}
			return nil, change{}, err
		}
		return moved, w.cascade(oldPath, moved), nil
	})
}

// CancelDrag aborts the gesture
func (w *Workspace) CancelDrag(ctx context.Context) error {
	_, err := mutate(ctx, w, "drag_cancel", func() (struct{}, change, error) {
		w.tree.CancelDrag()
		return struct{}{}, change{event: EventDrag}, nil
	})
	return err
}

// Dragging returns the gesture in flight
func (w *Workspace) Dragging() (tree.Drag, bool) { return w.tree.Dragging() }
