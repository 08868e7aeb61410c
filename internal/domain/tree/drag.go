package tree

import (
	"fmt"
	"time"
)

// Drag is the transient state of one drag-and-drop gesture. It lives only
// between BeginDrag and Drop/CancelDrag and is never persisted.
type Drag struct {
	NodeID    string    `json:"nodeId"`
	StartedAt time.Time `json:"startedAt"`
}

// BeginDrag starts a gesture for the given node, replacing any gesture that
// was left open.
func (s *Store) BeginDrag(nodeID string) (Drag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if locateByID(s.nodes, nodeID) == nil {
		return Drag{}, notFoundID(nodeID)
	}
	s.drag = &Drag{NodeID: nodeID, StartedAt: s.now()}
	return *s.drag, nil
}

// DragOver validates the hovered target against the tree as it is now, not
// as it was when the gesture started.
func (s *Store) DragOver(targetPath string) MoveValidation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.drag == nil {
		return reject(ReasonNotFound)
	}
	return validateMove(s.nodes, targetPath, s.drag.NodeID)
}

// Drop commits the gesture as a move into targetPath. The gesture ends
// whether or not the move succeeds.
func (s *Store) Drop(targetPath string) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.drag == nil {
		return nil, ErrNoDrag
	}
	nodeID := s.drag.NodeID
	s.drag = nil

	moved, err := s.moveLocked(nodeID, targetPath)
	if err != nil {
		return nil, fmt.Errorf("drop: %w", err)
	}
	return moved, nil
}

// CancelDrag aborts the gesture, if any
func (s *Store) CancelDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag = nil
}

// Dragging returns the gesture in flight
func (s *Store) Dragging() (Drag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.drag == nil {
		return Drag{}, false
	}
	return *s.drag, true
}
