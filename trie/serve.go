package trie

// GetRootNode encodes the current root in the given format, or returns
// nil if no root is installed.
func (m *Map) GetRootNode(format Format) []byte {
	root := m.Root()
	if root == nil {
		return nil
	}
	raw, err := m.ser.Encode(root, format)
	if err != nil {
		return nil
	}
	return raw
}

// GetNodeFat walks to wantedId and, if the node found there matches
// (exact for the fixed-depth variant, common-prefix for the versioned
// variant), emits it unconditionally and then its descendants subject
// to a depth budget: at each inner node with exactly one populated
// branch, chain-descent continues without decrementing depth; at every
// fan-out, depth decrements by one. Descendant leaves are emitted only
// when fatLeaves is set or they were reached purely by chain-descent —
// the found node itself is always emitted, even a leaf found with
// fatLeaves false. Empty inner nodes are never served.
func (m *Map) GetNodeFat(wantedID NodeID, fatLeaves bool, depth int) ([]NodeID, [][]byte, bool) {
	root := m.Root()
	if root == nil || root.Hash().IsZero() {
		return nil, nil, false
	}

	node, walkedID, ok := m.walkTo(root, wantedID)
	if !ok || !positionMatches(node, walkedID, wantedID) {
		return nil, nil, false
	}
	if inner, isInner := node.(*InnerNode); isInner && inner.BranchCount() == 0 {
		return nil, nil, false
	}

	var ids []NodeID
	var bundles [][]byte

	var emit func(n Node, id NodeID, budget int, chained bool, top bool)
	emit = func(n Node, id NodeID, budget int, chained bool, top bool) {
		if n == nil {
			return
		}
		if leaf, isLeaf := n.(*LeafNode); isLeaf {
			if !top && !fatLeaves && !chained {
				return
			}
			raw, err := m.ser.Encode(leaf, FormatWire)
			if err != nil {
				return
			}
			ids = append(ids, id)
			bundles = append(bundles, raw)
			return
		}
		inner := n.(*InnerNode)
		if inner.BranchCount() == 0 {
			return
		}
		raw, err := m.ser.Encode(inner, FormatWire)
		if err != nil {
			return
		}
		ids = append(ids, id)
		bundles = append(bundles, raw)

		chain := inner.BranchCount() == 1
		if budget <= 0 && !chain {
			return
		}
		nextBudget := budget
		if !chain {
			nextBudget = budget - 1
		}
		for b := 0; b < BranchFactor; b++ {
			if inner.IsEmptyBranch(b) {
				continue
			}
			child := inner.GetChild(b)
			if child == nil {
				child = m.resolve(inner.GetChildHash(b))
			}
			if child == nil {
				continue
			}
			emit(child, id.ChildID(b), nextBudget, chain, false)
		}
	}

	emit(node, walkedID, depth, false, true)
	if len(ids) == 0 {
		return nil, nil, false
	}
	return ids, bundles, true
}

// walkTo descends from root selecting branches by wantedId's key until
// depth wantedId.Depth() is reached, failing on an empty or
// unresolvable branch or on a leaf above that depth. Returns the node
// found and the position actually walked to: on success it has
// wantedId's depth, and its key carries only the walked nibbles.
func (m *Map) walkTo(root Node, wantedID NodeID) (Node, NodeID, bool) {
	current := root
	walked := RootNodeID()
	for walked.Depth() < wantedID.Depth() {
		inner, ok := current.(*InnerNode)
		if !ok {
			return nil, NodeID{}, false
		}
		b := walked.SelectBranch(wantedID.Key())
		if inner.IsEmptyBranch(b) {
			return nil, NodeID{}, false
		}
		child := inner.GetChild(b)
		if child == nil {
			child = m.resolve(inner.GetChildHash(b))
		}
		if child == nil {
			return nil, NodeID{}, false
		}
		current = child
		walked = walked.ChildID(b)
	}
	return current, walked, true
}

// HasInnerNode reports whether walking to id.Depth() yields a resident
// inner node with the given hash.
func (m *Map) HasInnerNode(id NodeID, hash Hash) bool {
	root := m.Root()
	if root == nil {
		return false
	}
	if id.IsRoot() {
		return !root.IsLeaf() && root.Hash() == hash
	}
	node, walked, ok := m.walkTo(root, id)
	if !ok || walked.Depth() != id.Depth() {
		return false
	}
	inner, isInner := node.(*InnerNode)
	return isInner && inner.Hash() == hash
}

// HasLeafNode reports whether following key from the root hits the
// specified hash at any point on the path (short-circuiting as soon as
// a branch hash matches).
func (m *Map) HasLeafNode(key Hash, hash Hash) bool {
	root := m.Root()
	if root == nil {
		return false
	}
	if root.IsLeaf() {
		return root.Hash() == hash
	}
	inner, ok := root.(*InnerNode)
	if !ok {
		return false
	}
	return m.hasLeafNodeFrom(inner, RootNodeID(), key, hash)
}

func (m *Map) hasLeafNodeFrom(inner *InnerNode, id NodeID, key Hash, hash Hash) bool {
	for {
		b := id.SelectBranch(key)
		if inner.IsEmptyBranch(b) {
			return false
		}
		if inner.GetChildHash(b) == hash {
			return true
		}
		child := inner.GetChild(b)
		if child == nil {
			child = m.resolve(inner.GetChildHash(b))
		}
		if child == nil {
			return false
		}
		id = id.ChildID(b)
		if child.IsLeaf() {
			return child.Hash() == hash
		}
		inner = child.(*InnerNode)
	}
}

// GetFetchPack computes the set-difference of m against have (a peer's
// Map snapshot, possibly nil) and invokes sink for up to max nodes.
// Different Map-format versions yield an empty pack.
func (m *Map) GetFetchPack(have *Map, includeLeaves bool, max int, sink func(hash Hash, raw []byte)) {
	if have != nil && have.formatVersion() != m.formatVersion() {
		return
	}
	count := 0
	m.VisitDifferences(have, func(n Node) bool {
		if count >= max {
			return true
		}
		if n.IsLeaf() && !includeLeaves {
			return false
		}
		raw, err := m.ser.Encode(n, FormatWire)
		if err != nil {
			return false
		}
		sink(n.Hash(), raw)
		count++
		return count >= max
	})
}

// formatVersion distinguishes the fixed-depth and versioned inner-node
// variants at the root, used only to detect a Map-format mismatch for
// GetFetchPack.
func (m *Map) formatVersion() int {
	root := m.Root()
	if inner, ok := root.(*InnerNode); ok && inner.versioned {
		return 2
	}
	return 1
}

// VisitDifferences is the underlying primitive behind GetFetchPack: a
// DFS over m emitting every node have lacks. Skips entirely if the two
// roots already agree.
func (m *Map) VisitDifferences(have *Map, fn func(n Node) bool) {
	root := m.Root()
	if root == nil || root.Hash().IsZero() {
		return
	}
	var haveRoot Node
	if have != nil {
		haveRoot = have.Root()
	}
	if haveRoot != nil && haveRoot.Hash() == root.Hash() {
		return
	}

	if leaf, isLeaf := root.(*LeafNode); isLeaf {
		if have == nil || !have.HasLeafNode(leaf.item.Key, leaf.Hash()) {
			fn(root)
		}
		return
	}

	var walk func(n Node, id NodeID) bool
	walk = func(n Node, id NodeID) bool {
		inner, ok := n.(*InnerNode)
		if !ok {
			return false
		}
		if fn(n) {
			return true
		}
		for b := 0; b < BranchFactor; b++ {
			if inner.IsEmptyBranch(b) {
				continue
			}
			childHash := inner.GetChildHash(b)
			childID := id.ChildID(b)
			child := inner.GetChild(b)
			if child == nil {
				child = m.resolve(childHash)
			}
			if child == nil {
				continue
			}
			if child.IsLeaf() {
				if have == nil || !have.HasLeafNode(childID.Key(), childHash) {
					if fn(child) {
						return true
					}
				}
				continue
			}
			if have == nil || !have.HasInnerNode(childID, childHash) {
				if walk(child, childID) {
					return true
				}
			}
		}
		return false
	}
	walk(root, RootNodeID())
}

// DeepCompare is a test/debug parallel DFS over m and other: it
// requires identical hash at every paired node, identical branch
// population at inner nodes, and byte-identical key+payload at leaves.
func (m *Map) DeepCompare(other *Map) bool {
	a := m.Root()
	b := other.Root()
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Hash() != b.Hash() {
		return false
	}
	equal := true
	visitPair(a, b, m.resolve, other.resolve, func(x, y Node) bool {
		if x == nil || y == nil {
			equal = false
			return true
		}
		if x.Hash() != y.Hash() {
			equal = false
			return true
		}
		xInner, xOk := x.(*InnerNode)
		yInner, yOk := y.(*InnerNode)
		if xOk != yOk {
			equal = false
			return true
		}
		if xOk {
			for i := 0; i < BranchFactor; i++ {
				if xInner.IsEmptyBranch(i) != yInner.IsEmptyBranch(i) {
					equal = false
					return true
				}
			}
			return false
		}
		xLeaf := x.(*LeafNode)
		yLeaf := y.(*LeafNode)
		if xLeaf.item.Key != yLeaf.item.Key || string(xLeaf.item.Payload) != string(yLeaf.item.Payload) {
			equal = false
			return true
		}
		return false
	})
	return equal
}
