package tree

import (
	"fmt"
	"strings"
)

const separator = "/"

// JoinPath builds a child path. An empty parent is the root.
func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + separator + name
}

// ParentPath returns the path of the folder containing path, "" at root
func ParentPath(path string) string {
	i := strings.LastIndex(path, separator)
	if i < 0 {
		return ""
	}
	return path[:i]
}

// BaseName returns the last segment of path
func BaseName(path string) string {
	return path[strings.LastIndex(path, separator)+1:]
}

// HasPathPrefix reports whether path is prefix itself or lies below it
func HasPathPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+separator)
}

// ValidateName rejects names that cannot be a single path segment
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case strings.Contains(name, separator):
		return fmt.Errorf("%w: %q contains %q", ErrInvalidName, name, separator)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	return nil
}

// rebase returns a copy of n placed under parentPath, with the path of every
// descendant rewritten to match.
func rebase(n *Node, parentPath string) *Node {
	c := n.shallowCopy()
	c.Path = JoinPath(parentPath, c.Name)
	if c.Folder != nil && len(c.Folder.Children) > 0 {
		children := make([]*Node, len(c.Folder.Children))
		for i, child := range c.Folder.Children {
			children[i] = rebase(child, c.Path)
		}
		c.Folder.Children = children
	}
	return c
}
