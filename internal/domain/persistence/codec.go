package persistence

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/webide/backend/internal/domain/history"
	"github.com/GriffinCanCode/webide/backend/internal/domain/tabs"
	"github.com/GriffinCanCode/webide/backend/internal/domain/tree"
)

// std-compatible config: sorted map keys keep blobs byte-stable across saves
var codec = sonic.ConfigStd

// ============================================================================
// Tree
// ============================================================================

// EncodeTree serializes the persistable tree state at the current version
func EncodeTree(s tree.State) ([]byte, error) {
	blob := treeBlob{
		Version:           CurrentVersion,
		Nodes:             encodeNodes(s.Nodes),
		ExpandedFolderIDs: s.ExpandedFolderIDs,
		SortBy:            string(s.SortBy),
		SortOrder:         string(s.SortOrder),
	}
	if blob.ExpandedFolderIDs == nil {
		blob.ExpandedFolderIDs = []string{}
	}
	data, err := codec.Marshal(&blob)
	if err != nil {
		return nil, fmt.Errorf("encode tree: %w", err)
	}
	return data, nil
}

func encodeNodes(nodes []*tree.Node) []nodeRecord {
	out := make([]nodeRecord, len(nodes))
	for i, n := range nodes {
		r := nodeRecord{
			ID:           n.ID,
			Name:         n.Name,
			Type:         string(n.Type),
			Path:         n.Path,
			LastModified: stamp(n.LastModified),
		}
		if n.IsFolder() {
			expanded := n.Folder.IsExpanded
			r.IsExpanded = &expanded
			r.Children = encodeNodes(n.Folder.Children)
		} else {
			content, size := n.Content(), n.Size()
			r.Content = &content
			r.Size = &size
			r.Language = n.Language()
		}
		out[i] = r
	}
	return out
}

// DecodeTree parses a tree blob of any supported version. Paths are derived
// from names and positions, never trusted from the blob.
func DecodeTree(data []byte) (tree.State, error) {
	version, err := probeVersion(data)
	if err != nil {
		return tree.State{}, err
	}

	var blob treeBlob
	if err := codec.Unmarshal(data, &blob); err != nil {
		return tree.State{}, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}

	nodes, err := decodeNodes(blob.Nodes, "", version, make(map[string]struct{}))
	if err != nil {
		return tree.State{}, err
	}
	return tree.State{
		Nodes:             nodes,
		ExpandedFolderIDs: blob.ExpandedFolderIDs,
		SortBy:            tree.SortKey(blob.SortBy),
		SortOrder:         tree.SortOrder(blob.SortOrder),
	}, nil
}

func decodeNodes(recs []nodeRecord, parentPath string, version int, seen map[string]struct{}) ([]*tree.Node, error) {
	nodes := make([]*tree.Node, 0, len(recs))
	names := make(map[string]struct{}, len(recs))

	for _, r := range recs {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: node %q has no id", ErrCorruptBlob, r.Name)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate node id %s", ErrCorruptBlob, r.ID)
		}
		seen[r.ID] = struct{}{}

		if err := tree.ValidateName(r.Name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
		}
		if _, dup := names[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrCorruptBlob, tree.JoinPath(parentPath, r.Name))
		}
		names[r.Name] = struct{}{}

		typ, err := nodeType(r, version)
		if err != nil {
			return nil, err
		}

		n := &tree.Node{
			ID:           r.ID,
			Name:         r.Name,
			Type:         typ,
			Path:         tree.JoinPath(parentPath, r.Name),
			LastModified: r.LastModified.Time(),
		}
		if typ == tree.TypeFolder {
			children, err := decodeNodes(r.Children, n.Path, version, seen)
			if err != nil {
				return nil, err
			}
			n.Folder = &tree.FolderAttrs{Children: children, IsExpanded: r.IsExpanded != nil && *r.IsExpanded}
		} else {
			var content string
			if r.Content != nil {
				content = *r.Content
			}
			lang := r.Language
			if lang == "" {
				lang = tree.DetectLanguage(r.Name, content)
			}
			n.File = &tree.FileAttrs{Content: content, Language: lang, Size: int64(len(content))}
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func nodeType(r nodeRecord, version int) (tree.Type, error) {
	switch tree.Type(r.Type) {
	case tree.TypeFile:
		if len(r.Children) > 0 {
			return "", fmt.Errorf("%w: file %q has children", ErrCorruptBlob, r.Name)
		}
		return tree.TypeFile, nil
	case tree.TypeFolder:
		return tree.TypeFolder, nil
	case "":
		if version == 0 {
			if r.Children != nil || r.IsExpanded != nil {
				return tree.TypeFolder, nil
			}
			return tree.TypeFile, nil
		}
	}
	return "", fmt.Errorf("%w: node %q has type %q", ErrCorruptBlob, r.Name, r.Type)
}

// ============================================================================
// Session
// ============================================================================

// EncodeSession serializes the tab list and every tab ledger
func EncodeSession(s tabs.State) ([]byte, error) {
	blob := sessionBlob{
		Version: CurrentVersion,
		Tabs:    make([]tabRecord, len(s.Tabs)),
		History: make(map[string]historyRecord, len(s.History)),
	}
	for i, t := range s.Tabs {
		blob.Tabs[i] = tabRecord{
			ID:             t.ID,
			FileID:         t.FileID,
			Path:           t.Path,
			Name:           t.Name,
			Content:        t.Content,
			Language:       t.Language,
			IsDirty:        t.IsDirty,
			IsActive:       t.IsActive,
			IsPinned:       t.IsPinned,
			CursorPosition: t.CursorPosition,
			ScrollPosition: t.ScrollPosition,
			Selections:     t.Selections,
			OpenedAt:       stamp(t.OpenedAt),
		}
	}
	for tabID, h := range s.History {
		blob.History[tabID] = historyRecord{Undo: encodeEntries(h.Undo), Redo: encodeEntries(h.Redo)}
	}

	data, err := codec.Marshal(&blob)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return data, nil
}

func encodeEntries(entries []history.Entry) []entryRecord {
	out := make([]entryRecord, len(entries))
	for i, e := range entries {
		out[i] = entryRecord{ID: e.ID, Timestamp: stamp(e.Timestamp), Content: e.Content, CursorPosition: e.CursorPosition}
	}
	return out
}

// DecodeSession parses a session blob of any supported version
func DecodeSession(data []byte) (tabs.State, error) {
	if _, err := probeVersion(data); err != nil {
		return tabs.State{}, err
	}

	var blob sessionBlob
	if err := codec.Unmarshal(data, &blob); err != nil {
		return tabs.State{}, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}

	s := tabs.State{
		Tabs:    make([]tabs.Tab, len(blob.Tabs)),
		History: make(map[string]tabs.HistorySnapshot, len(blob.History)),
	}
	for i, r := range blob.Tabs {
		s.Tabs[i] = tabs.Tab{
			ID:             r.ID,
			FileID:         r.FileID,
			Path:           r.Path,
			Name:           r.Name,
			Content:        r.Content,
			Language:       r.Language,
			IsDirty:        r.IsDirty,
			IsActive:       r.IsActive,
			IsPinned:       r.IsPinned,
			CursorPosition: r.CursorPosition,
			ScrollPosition: r.ScrollPosition,
			Selections:     r.Selections,
			OpenedAt:       r.OpenedAt.Time(),
		}
	}
	for tabID, h := range blob.History {
		s.History[tabID] = tabs.HistorySnapshot{Undo: decodeEntries(h.Undo), Redo: decodeEntries(h.Redo)}
	}
	return s, nil
}

func decodeEntries(recs []entryRecord) []history.Entry {
	out := make([]history.Entry, len(recs))
	for i, r := range recs {
		out[i] = history.Entry{ID: r.ID, Timestamp: r.Timestamp.Time(), Content: r.Content, CursorPosition: r.CursorPosition}
	}
	return out
}

func probeVersion(data []byte) (int, error) {
	var p versionProbe
	if err := codec.Unmarshal(data, &p); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}
	if p.Version < 0 || p.Version > CurrentVersion {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, p.Version)
	}
	return p.Version, nil
}
