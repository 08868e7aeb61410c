/*
Package tree implements the workspace's virtual file/folder hierarchy.

# Overview

A Store owns an ordered list of root nodes. Each Node is either a file
(content, language, size) or a folder (children, expanded flag). The store
guarantees:

  - every node's Path equals its parent's Path + "/" + Name (Name at root)
  - ids are unique and survive rename and move
  - a node is never its own ancestor
  - sibling names are unique

# Copy-on-write

Mutations never modify a published node. They copy the nodes along the path
from the root to the change and share the rest, so a slice returned by Nodes,
SortedView or FilteredView is a stable snapshot.

# Moves

ValidateMove is a non-throwing pre-flight check meant to be called on every
drag-over event; MoveNode runs the same check and returns *MoveError on
rejection. The drag gesture itself (BeginDrag, DragOver, Drop, CancelDrag) is
held by the store and never persisted.

# Usage

	s := tree.NewStore()
	src, _ := s.AddNode(tree.NewFolder("src"), "")
	file, _ := s.AddNode(tree.NewFile("a.ts", "export {}", ""), src.Path)
	_, err := s.RenameNode(src.ID, "lib") // file.Path becomes "lib/a.ts"
*/
package tree
