package tree

import (
	"go.uber.org/zap"
)

// MoveReason explains why a move target was rejected
type MoveReason string

const (
	ReasonSelfTarget     MoveReason = "self-target"
	ReasonIntoDescendant MoveReason = "into-self-or-descendant"
	ReasonTargetNotDir   MoveReason = "target-not-folder"
	ReasonSameParent     MoveReason = "same-parent"
	ReasonNameConflict   MoveReason = "name-conflict"
	ReasonNotFound       MoveReason = "not-found"
)

// MoveValidation is the non-throwing result of a move pre-flight check.
// Reason is empty when Valid is true.
type MoveValidation struct {
	Valid  bool       `json:"valid"`
	Reason MoveReason `json:"reason,omitempty"`
}

func accept() MoveValidation                  { return MoveValidation{Valid: true} }
func reject(reason MoveReason) MoveValidation { return MoveValidation{Reason: reason} }

// ValidateMove checks whether the node draggedID may be moved into the folder
// at targetPath ("" is the root). It always reads the canonical tree as it is
// now, so it is safe to call repeatedly while a drag gesture is in flight.
func (s *Store) ValidateMove(targetPath, draggedID string) MoveValidation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return validateMove(s.nodes, targetPath, draggedID)
}

func validateMove(nodes []*Node, targetPath, draggedID string) MoveValidation {
	loc := locateByID(nodes, draggedID)
	if loc == nil {
		return reject(ReasonNotFound)
	}
	dragged := nodeAt(nodes, loc)

	if targetPath == "" {
		if ParentPath(dragged.Path) == "" {
			return reject(ReasonSameParent)
		}
		if hasChildNamed(nodes, dragged.Name, dragged.ID) {
			return reject(ReasonNameConflict)
		}
		return accept()
	}

	tloc := locateByPath(nodes, targetPath)
	if tloc == nil {
		return reject(ReasonNotFound)
	}
	target := nodeAt(nodes, tloc)

	if target.ID == dragged.ID {
		return reject(ReasonSelfTarget)
	}
	if dragged.IsFolder() && isDescendant(dragged, target.ID) {
		return reject(ReasonIntoDescendant)
	}
	if !target.IsFolder() {
		return reject(ReasonTargetNotDir)
	}
	if ParentPath(dragged.Path) == target.Path {
		return reject(ReasonSameParent)
	}
	if hasChildNamed(target.Children(), dragged.Name, dragged.ID) {
		return reject(ReasonNameConflict)
	}
	return accept()
}

// isDescendant walks the current children of root looking for id
func isDescendant(root *Node, id string) bool {
	for _, child := range root.Children() {
		if child.ID == id || isDescendant(child, id) {
			return true
		}
	}
	return false
}

// MoveNode moves a node, with its whole subtree, to the end of the folder at
// newParentPath ("" is the root). The move is validated first; a rejection is
// returned as *MoveError.
func (s *Store) MoveNode(nodeID, newParentPath string) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveLocked(nodeID, newParentPath)
}

func (s *Store) moveLocked(nodeID, newParentPath string) (*Node, error) {
	if v := validateMove(s.nodes, newParentPath, nodeID); !v.Valid {
		return nil, &MoveError{ID: nodeID, Target: newParentPath, Reason: v.Reason}
	}

	loc := locateByID(s.nodes, nodeID)
	node := nodeAt(s.nodes, loc)
	nodes := replaceAt(s.nodes, loc, func(*Node) *Node { return nil })

	// the target cannot be inside the removed subtree, so its path still resolves
	var tloc location
	if newParentPath != "" {
		tloc = locateByPath(nodes, newParentPath)
	}

	c := node.shallowCopy()
	c.LastModified = s.now()
	moved := rebase(c, newParentPath)
	s.nodes = appendChild(nodes, tloc, moved)

	s.logger.Debug("Node moved",
		zap.String("id", nodeID),
		zap.String("from", node.Path),
		zap.String("to", moved.Path),
	)
	return moved, nil
}
