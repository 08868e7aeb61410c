package tree

// Copy-on-write helpers over a root list. A location is the chain of child
// indexes from the root list down to a node; updates copy every node on that
// chain and share everything else with the previous snapshot.

type location []int

func locateByID(nodes []*Node, id string) location {
	for i, n := range nodes {
		if n.ID == id {
			return location{i}
		}
		if loc := locateByID(n.Children(), id); loc != nil {
			return append(location{i}, loc...)
		}
	}
	return nil
}

func locateByPath(nodes []*Node, path string) location {
	for i, n := range nodes {
		if n.Path == path {
			return location{i}
		}
		if n.IsFolder() && HasPathPrefix(path, n.Path) {
			if loc := locateByPath(n.Children(), path); loc != nil {
				return append(location{i}, loc...)
			}
		}
	}
	return nil
}

func nodeAt(nodes []*Node, loc location) *Node {
	var n *Node
	for _, i := range loc {
		n = nodes[i]
		nodes = n.Children()
	}
	return n
}

// replaceAt returns a new root list in which the node at loc is replaced by
// fn(node). A nil result from fn removes the node.
func replaceAt(nodes []*Node, loc location, fn func(*Node) *Node) []*Node {
	i := loc[0]
	if len(loc) == 1 {
		repl := fn(nodes[i])
		if repl == nil {
			out := make([]*Node, 0, len(nodes)-1)
			out = append(out, nodes[:i]...)
			return append(out, nodes[i+1:]...)
		}
		out := make([]*Node, len(nodes))
		copy(out, nodes)
		out[i] = repl
		return out
	}

	parent := nodes[i].shallowCopy()
	parent.Folder.Children = replaceAt(parent.Folder.Children, loc[1:], fn)

	out := make([]*Node, len(nodes))
	copy(out, nodes)
	out[i] = parent
	return out
}

// appendChild returns a new root list with child appended under the folder at
// loc, or at the root when loc is empty.
func appendChild(nodes []*Node, loc location, child *Node) []*Node {
	if len(loc) == 0 {
		out := make([]*Node, 0, len(nodes)+1)
		out = append(out, nodes...)
		return append(out, child)
	}
	return replaceAt(nodes, loc, func(folder *Node) *Node {
		c := folder.shallowCopy()
		children := make([]*Node, 0, len(folder.Folder.Children)+1)
		children = append(children, folder.Folder.Children...)
		c.Folder.Children = append(children, child)
		return c
	})
}

func hasChildNamed(children []*Node, name, exceptID string) bool {
	for _, c := range children {
		if c.Name == name && c.ID != exceptID {
			return true
		}
	}
	return false
}

func collectIDs(n *Node) []string {
	var ids []string
	n.Walk(func(d *Node) bool {
		ids = append(ids, d.ID)
		return true
	})
	return ids
}

func countNodes(nodes []*Node) int {
	total := 0
	for _, n := range nodes {
		n.Walk(func(*Node) bool {
			total++
			return true
		})
	}
	return total
}
