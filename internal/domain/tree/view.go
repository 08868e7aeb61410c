package tree

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SortKey selects the attribute the tree view sorts by
type SortKey string

const (
	SortByName         SortKey = "name"
	SortByType         SortKey = "type"
	SortByLastModified SortKey = "lastModified"
	SortBySize         SortKey = "size"
)

// Valid reports whether k is a known sort key
func (k SortKey) Valid() bool {
	switch k {
	case SortByName, SortByType, SortByLastModified, SortBySize:
		return true
	}
	return false
}

// SortOrder is the sort direction
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Valid reports whether o is a known direction
func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// SortedView returns a recursively sorted copy of nodes. Folders always come
// before files; within each group nodes are ordered by key in the requested
// direction, and ties keep their original order. The input is not modified.
func SortedView(nodes []*Node, key SortKey, order SortOrder) []*Node {
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		if n.IsFolder() && len(n.Children()) > 0 {
			c := n.shallowCopy()
			c.Folder.Children = SortedView(n.Children(), key, order)
			out[i] = c
		} else {
			out[i] = n
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsFolder() != b.IsFolder() {
			return a.IsFolder()
		}
		c := compareBy(key, a, b)
		if order == SortDesc {
			c = -c
		}
		return c < 0
	})
	return out
}

func compareBy(key SortKey, a, b *Node) int {
	switch key {
	case SortByType:
		return strings.Compare(extension(a), extension(b))
	case SortByLastModified:
		return a.LastModified.Compare(b.LastModified)
	case SortBySize:
		switch {
		case a.Size() < b.Size():
			return -1
		case a.Size() > b.Size():
			return 1
		}
		return 0
	default:
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	}
}

func extension(n *Node) string {
	if n.IsFolder() {
		return ""
	}
	return strings.ToLower(path.Ext(n.Name))
}

// SortedView returns the tree sorted by the stored preference
func (s *Store) SortedView() []*Node {
	s.mu.RLock()
	nodes, key, order := s.nodes, s.sortBy, s.sortOrder
	s.mu.RUnlock()
	return SortedView(nodes, key, order)
}

// FilteredView returns the nodes whose name contains query, case-insensitive.
// A matching node keeps its whole subtree; a folder that does not match is
// kept, with only its matching descendants, when any descendant matches.
func (s *Store) FilteredView(query string) []*Node {
	nodes := s.Nodes()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nodes
	}
	return filterNodes(nodes, func(n *Node) bool {
		return strings.Contains(strings.ToLower(n.Name), q)
	})
}

// GlobView is FilteredView with a doublestar glob matched against node paths,
// e.g. "src/**/*.ts".
func (s *Store) GlobView(pattern string) ([]*Node, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}
	return filterNodes(s.Nodes(), func(n *Node) bool {
		ok, _ := doublestar.Match(pattern, n.Path)
		return ok
	}), nil
}

func filterNodes(nodes []*Node, match func(*Node) bool) []*Node {
	var out []*Node
	for _, n := range nodes {
		if match(n) {
			out = append(out, n)
			continue
		}
		if !n.IsFolder() {
			continue
		}
		if children := filterNodes(n.Children(), match); len(children) > 0 {
			c := n.shallowCopy()
			c.Folder.Children = children
			out = append(out, c)
		}
	}
	return out
}
