package tree

import (
	"time"
)

// Type discriminates the two node variants
type Type string

const (
	TypeFile   Type = "file"
	TypeFolder Type = "folder"
)

// Node is a file or folder in the workspace tree.
//
// Exactly one of File and Folder is non-nil, matching Type. Nodes reachable
// from a Store snapshot are shared between readers and must be treated as
// read-only; every mutation produces fresh copies along the changed spine.
type Node struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         Type         `json:"type"`
	Path         string       `json:"path"`
	LastModified time.Time    `json:"lastModified"`
	File         *FileAttrs   `json:"file,omitempty"`
	Folder       *FolderAttrs `json:"folder,omitempty"`
}

// FileAttrs holds the fields that only exist on files
type FileAttrs struct {
	Content  string `json:"content"`
	Language string `json:"language"`
	Size     int64  `json:"size"`
}

// FolderAttrs holds the fields that only exist on folders
type FolderAttrs struct {
	Children   []*Node `json:"children"`
	IsExpanded bool    `json:"isExpanded"`
}

// NewFile builds an unattached file node. An empty language is detected from
// the name and content.
func NewFile(name, content, language string) *Node {
	if language == "" {
		language = DetectLanguage(name, content)
	}
	return &Node{
		Name: name,
		Type: TypeFile,
		File: &FileAttrs{
			Content:  content,
			Language: language,
			Size:     int64(len(content)),
		},
	}
}

// NewFolder builds an unattached, empty folder node
func NewFolder(name string, children ...*Node) *Node {
	return &Node{
		Name:   name,
		Type:   TypeFolder,
		Folder: &FolderAttrs{Children: children},
	}
}

// IsFolder reports whether the node is a folder
func (n *Node) IsFolder() bool {
	return n.Type == TypeFolder
}

// IsFile reports whether the node is a file
func (n *Node) IsFile() bool {
	return n.Type == TypeFile
}

// Children returns the folder's children, or nil for files
func (n *Node) Children() []*Node {
	if n.Folder == nil {
		return nil
	}
	return n.Folder.Children
}

// Content returns the file content, or "" for folders
func (n *Node) Content() string {
	if n.File == nil {
		return ""
	}
	return n.File.Content
}

// Language returns the file language tag, or "" for folders
func (n *Node) Language() string {
	if n.File == nil {
		return ""
	}
	return n.File.Language
}

// Size returns the file size in bytes, or 0 for folders
func (n *Node) Size() int64 {
	if n.File == nil {
		return 0
	}
	return n.File.Size
}

// shallowCopy copies the node and its variant attributes. The children slice
// header is copied but its elements are shared.
func (n *Node) shallowCopy() *Node {
	c := *n
	if n.File != nil {
		f := *n.File
		c.File = &f
	}
	if n.Folder != nil {
		f := *n.Folder
		c.Folder = &f
	}
	return &c
}

// Clone returns a deep copy of the node and its whole subtree
func (n *Node) Clone() *Node {
	c := n.shallowCopy()
	if c.Folder != nil && len(c.Folder.Children) > 0 {
		children := make([]*Node, len(c.Folder.Children))
		for i, child := range c.Folder.Children {
			children[i] = child.Clone()
		}
		c.Folder.Children = children
	}
	return c
}

// Walk visits the node and its descendants depth-first, pre-order.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children() {
		child.Walk(fn)
	}
}

// normalize fills in variant attributes that a caller left out
func (n *Node) normalize() {
	switch n.Type {
	case TypeFolder:
		n.File = nil
		if n.Folder == nil {
			n.Folder = &FolderAttrs{}
		}
	default:
		n.Type = TypeFile
		n.Folder = nil
		if n.File == nil {
			n.File = &FileAttrs{}
		}
		n.File.Size = int64(len(n.File.Content))
		if n.File.Language == "" {
			n.File.Language = DetectLanguage(n.Name, n.File.Content)
		}
	}
}
