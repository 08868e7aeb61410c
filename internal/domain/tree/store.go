package tree

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webide/backend/internal/shared/id"
)

// Store owns the canonical workspace tree.
//
// The root list is replaced wholesale on every mutation (copy-on-write), so a
// slice returned by Nodes stays a complete, consistent snapshot no matter
// what happens to the store afterwards.
type Store struct {
	mu        sync.RWMutex
	nodes     []*Node             // Protected by mu
	selection map[string]struct{} // Protected by mu
	expanded  map[string]struct{} // Protected by mu
	sortBy    SortKey             // Protected by mu
	sortOrder SortOrder           // Protected by mu
	drag      *Drag               // Protected by mu

	now    func() time.Time
	newID  func() string
	logger *zap.Logger
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used to stamp LastModified
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides node id generation
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithLogger attaches a logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates an empty tree
func NewStore(opts ...Option) *Store {
	s := &Store{
		selection: make(map[string]struct{}),
		expanded:  make(map[string]struct{}),
		sortBy:    SortByName,
		sortOrder: SortAsc,
		now:       time.Now,
		newID:     func() string { return id.NewNodeID().String() },
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State is the persistable projection of the store
type State struct {
	Nodes             []*Node
	ExpandedFolderIDs []string
	SortBy            SortKey
	SortOrder         SortOrder
}

// Patch carries the attributes UpdateNode may change. Nil fields are left
// untouched.
type Patch struct {
	Content    *string
	Language   *string
	IsExpanded *bool
}

// ============================================================================
// Reads
// ============================================================================

// Nodes returns the current root list. The returned nodes are shared and
// must not be modified.
func (s *Store) Nodes() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes
}

// FindByID looks a node up by id
func (s *Store) FindByID(nodeID string) (*Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc := locateByID(s.nodes, nodeID)
	if loc == nil {
		return nil, false
	}
	return nodeAt(s.nodes, loc), true
}

// FindByPath looks a node up by path
func (s *Store) FindByPath(path string) (*Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc := locateByPath(s.nodes, path)
	if loc == nil {
		return nil, false
	}
	return nodeAt(s.nodes, loc), true
}

// Flatten lists every node depth-first, pre-order
func (s *Store) Flatten() []*Node {
	s.mu.RLock()
	nodes := s.nodes
	s.mu.RUnlock()

	out := make([]*Node, 0, countNodes(nodes))
	for _, n := range nodes {
		n.Walk(func(d *Node) bool {
			out = append(out, d)
			return true
		})
	}
	return out
}

// Len returns the number of nodes in the tree
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countNodes(s.nodes)
}

// State captures the persistable projection
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Nodes:             s.nodes,
		ExpandedFolderIDs: sortedKeys(s.expanded),
		SortBy:            s.sortBy,
		SortOrder:         s.sortOrder,
	}
}

// ============================================================================
// Mutations
// ============================================================================

// AddNode attaches node, and any subtree it carries, as the last child of the
// folder at parentPath. An empty parentPath means the root. Missing ids and
// timestamps are filled in; the caller's node is not retained.
func (s *Store) AddNode(node *Node, parentPath string) (*Node, error) {
	if node == nil {
		return nil, fmt.Errorf("%w: nil node", ErrInvalidName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var loc location
	siblings := s.nodes
	if parentPath != "" {
		loc = locateByPath(s.nodes, parentPath)
		if loc == nil {
			return nil, notFoundPath(parentPath)
		}
		parent := nodeAt(s.nodes, loc)
		if !parent.IsFolder() {
			return nil, fmt.Errorf("%w: %q", ErrNotFolder, parentPath)
		}
		siblings = parent.Children()
	}

	if err := ValidateName(node.Name); err != nil {
		return nil, err
	}
	if hasChildNamed(siblings, node.Name, "") {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyExists, JoinPath(parentPath, node.Name))
	}

	existing := make(map[string]struct{})
	for _, n := range s.nodes {
		for _, nid := range collectIDs(n) {
			existing[nid] = struct{}{}
		}
	}

	prepared, err := s.prepare(node, parentPath, existing)
	if err != nil {
		return nil, err
	}

	s.nodes = appendChild(s.nodes, loc, prepared)
	s.syncExpanded(prepared)
	s.logger.Debug("Node added", zap.String("id", prepared.ID), zap.String("path", prepared.Path))
	return prepared, nil
}

// prepare deep-copies an incoming subtree, assigning ids, paths and
// timestamps and validating names.
func (s *Store) prepare(n *Node, parentPath string, seen map[string]struct{}) (*Node, error) {
	if err := ValidateName(n.Name); err != nil {
		return nil, err
	}

	c := n.shallowCopy()
	c.normalize()
	if c.ID == "" {
		c.ID = s.newID()
	}
	if _, dup := seen[c.ID]; dup {
		return nil, fmt.Errorf("%w: id %s", ErrAlreadyExists, c.ID)
	}
	seen[c.ID] = struct{}{}
	if c.LastModified.IsZero() {
		c.LastModified = s.now()
	}
	c.Path = JoinPath(parentPath, c.Name)

	if c.Folder != nil && len(c.Folder.Children) > 0 {
		children := make([]*Node, 0, len(c.Folder.Children))
		names := make(map[string]struct{}, len(c.Folder.Children))
		for _, child := range c.Folder.Children {
			if _, dup := names[child.Name]; dup {
				return nil, fmt.Errorf("%w: %q", ErrAlreadyExists, JoinPath(c.Path, child.Name))
			}
			names[child.Name] = struct{}{}

			pc, err := s.prepare(child, c.Path, seen)
			if err != nil {
				return nil, err
			}
			children = append(children, pc)
		}
		c.Folder.Children = children
	}
	return c, nil
}

// UpdateNode shallow-merges patch into the node and stamps LastModified
func (s *Store) UpdateNode(nodeID string, patch Patch) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc := locateByID(s.nodes, nodeID)
	if loc == nil {
		return nil, notFoundID(nodeID)
	}
	current := nodeAt(s.nodes, loc)
	if (patch.Content != nil || patch.Language != nil) && !current.IsFile() {
		return nil, fmt.Errorf("%w: %s", ErrNotFile, nodeID)
	}
	if patch.IsExpanded != nil && !current.IsFolder() {
		return nil, fmt.Errorf("%w: %s", ErrNotFolder, nodeID)
	}

	var updated *Node
	s.nodes = replaceAt(s.nodes, loc, func(n *Node) *Node {
		c := n.shallowCopy()
		if patch.Content != nil {
			c.File.Content = *patch.Content
			c.File.Size = int64(len(*patch.Content))
		}
		if patch.Language != nil {
			c.File.Language = *patch.Language
		}
		if patch.IsExpanded != nil {
			c.Folder.IsExpanded = *patch.IsExpanded
		}
		c.LastModified = s.now()
		updated = c
		return c
	})

	if patch.IsExpanded != nil {
		s.setExpandedFlag(nodeID, *patch.IsExpanded)
	}
	return updated, nil
}

// DeleteNode removes the node and its whole subtree. Every removed id is
// dropped from the selection and expanded sets. The removed ids are returned.
func (s *Store) DeleteNode(nodeID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc := locateByID(s.nodes, nodeID)
	if loc == nil {
		return nil, notFoundID(nodeID)
	}
	removed := collectIDs(nodeAt(s.nodes, loc))

	s.nodes = replaceAt(s.nodes, loc, func(*Node) *Node { return nil })
	for _, rid := range removed {
		delete(s.selection, rid)
		delete(s.expanded, rid)
	}
	if s.drag != nil {
		for _, rid := range removed {
			if rid == s.drag.NodeID {
				s.drag = nil
				break
			}
		}
	}

	s.logger.Debug("Node deleted", zap.String("id", nodeID), zap.Int("removed", len(removed)))
	return removed, nil
}

// RenameNode changes a node's name and rewrites the path of the node and of
// every descendant.
func (s *Store) RenameNode(nodeID, newName string) (*Node, error) {
	if err := ValidateName(newName); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loc := locateByID(s.nodes, nodeID)
	if loc == nil {
		return nil, notFoundID(nodeID)
	}

	siblings := s.nodes
	if len(loc) > 1 {
		siblings = nodeAt(s.nodes, loc[:len(loc)-1]).Children()
	}
	if hasChildNamed(siblings, newName, nodeID) {
		current := nodeAt(s.nodes, loc)
		return nil, fmt.Errorf("%w: %q", ErrAlreadyExists, JoinPath(ParentPath(current.Path), newName))
	}

	var renamed *Node
	s.nodes = replaceAt(s.nodes, loc, func(n *Node) *Node {
		c := n.shallowCopy()
		c.Name = newName
		c.LastModified = s.now()
		renamed = rebase(c, ParentPath(n.Path))
		return renamed
	})

	s.logger.Debug("Node renamed", zap.String("id", nodeID), zap.String("path", renamed.Path))
	return renamed, nil
}

// ============================================================================
// Selection and expansion
// ============================================================================

// Select adds ids to the selection. Unknown ids are ignored.
func (s *Store) Select(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, nid := range ids {
		if locateByID(s.nodes, nid) != nil {
			s.selection[nid] = struct{}{}
		}
	}
}

// Deselect removes ids from the selection
func (s *Store) Deselect(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, nid := range ids {
		delete(s.selection, nid)
	}
}

// ClearSelection empties the selection
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.selection)
}

// Selection returns the selected ids in sorted order
func (s *Store) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.selection)
}

// SetExpanded records whether a folder is expanded in the tree view.
// Expansion is a view hint and does not stamp LastModified.
func (s *Store) SetExpanded(folderID string, expanded bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setExpanded(folderID, expanded)
}

// ToggleExpanded flips a folder's expanded flag and returns the new value
func (s *Store) ToggleExpanded(folderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, open := s.expanded[folderID]
	if err := s.setExpanded(folderID, !open); err != nil {
		return false, err
	}
	return !open, nil
}

// ExpandedFolderIDs returns the expanded folder ids in sorted order
func (s *Store) ExpandedFolderIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.expanded)
}

func (s *Store) setExpanded(folderID string, expanded bool) error {
	loc := locateByID(s.nodes, folderID)
	if loc == nil {
		return notFoundID(folderID)
	}
	if !nodeAt(s.nodes, loc).IsFolder() {
		return fmt.Errorf("%w: %s", ErrNotFolder, folderID)
	}
	s.nodes = replaceAt(s.nodes, loc, func(n *Node) *Node {
		c := n.shallowCopy()
		c.Folder.IsExpanded = expanded
		return c
	})
	s.setExpandedFlag(folderID, expanded)
	return nil
}

func (s *Store) setExpandedFlag(folderID string, expanded bool) {
	if expanded {
		s.expanded[folderID] = struct{}{}
	} else {
		delete(s.expanded, folderID)
	}
}

// syncExpanded registers every expanded folder of a freshly attached subtree
func (s *Store) syncExpanded(n *Node) {
	n.Walk(func(d *Node) bool {
		if d.Folder != nil && d.Folder.IsExpanded {
			s.expanded[d.ID] = struct{}{}
		}
		return true
	})
}

// ============================================================================
// Sort preference
// ============================================================================

// SetSort stores the tree view's sort preference
func (s *Store) SetSort(key SortKey, order SortOrder) error {
	if !key.Valid() || !order.Valid() {
		return fmt.Errorf("%w: %q %q", ErrInvalidSort, key, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortBy = key
	s.sortOrder = order
	return nil
}

// Sort returns the stored sort preference
func (s *Store) Sort() (SortKey, SortOrder) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortBy, s.sortOrder
}

// ============================================================================
// Restore
// ============================================================================

// Restore replaces the store's contents with a persisted state. Paths are
// recomputed from names and positions, duplicate ids are rejected, and
// expanded ids that no longer name a folder are dropped. Selection and drag
// state are reset.
func (s *Store) Restore(state State) error {
	seen := make(map[string]struct{})
	names := make(map[string]struct{})
	nodes := make([]*Node, 0, len(state.Nodes))
	for _, n := range state.Nodes {
		if _, dup := names[n.Name]; dup {
			return fmt.Errorf("%w: %q", ErrAlreadyExists, n.Name)
		}
		names[n.Name] = struct{}{}
		p, err := s.prepare(n, "", seen)
		if err != nil {
			return err
		}
		nodes = append(nodes, p)
	}

	sortBy, sortOrder := state.SortBy, state.SortOrder
	if !sortBy.Valid() || !sortOrder.Valid() {
		sortBy, sortOrder = SortByName, SortAsc
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = nodes
	s.sortBy, s.sortOrder = sortBy, sortOrder
	s.selection = make(map[string]struct{})
	s.expanded = make(map[string]struct{})
	s.drag = nil

	for _, n := range nodes {
		s.syncExpanded(n)
	}
	for _, fid := range state.ExpandedFolderIDs {
		if loc := locateByID(s.nodes, fid); loc != nil && nodeAt(s.nodes, loc).IsFolder() {
			s.expanded[fid] = struct{}{}
		}
	}
	// mirror the set back onto the nodes so both views agree
	for fid := range s.expanded {
		loc := locateByID(s.nodes, fid)
		if !nodeAt(s.nodes, loc).Folder.IsExpanded {
			s.nodes = replaceAt(s.nodes, loc, func(n *Node) *Node {
				c := n.shallowCopy()
				c.Folder.IsExpanded = true
				return c
			})
		}
	}
	return nil
}

// Reset empties the store
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = nil
	s.selection = make(map[string]struct{})
	s.expanded = make(map[string]struct{})
	s.sortBy, s.sortOrder = SortByName, SortAsc
	s.drag = nil
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
