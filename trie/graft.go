package trie

// AddRootNode installs the tree's root from raw bytes, or reports why
// it could not. If a root with nonzero hash is already installed,
// installing an identical hash is a Duplicate; any other hash is
// Invalid (roots cannot be replaced, only initially installed).
func (m *Map) AddRootNode(expectedHash Hash, raw []byte, format Format, filter SyncFilter) AddResult {
	m.mu.Lock()
	existing := m.root
	m.mu.Unlock()

	if existing != nil && !existing.Hash().IsZero() {
		if existing.Hash() == expectedHash {
			return Duplicate
		}
		return Invalid
	}

	node, err := m.ser.Decode(raw, 0, format, expectedHash, true)
	if err != nil || !node.IsValid() || node.Hash() != expectedHash {
		m.log.Warn("addRootNode: decode or hash check failed", "expected", expectedHash, "err", err)
		return Invalid
	}

	if m.backed {
		node = m.db.Canonicalize(expectedHash, node)
	}

	m.mu.Lock()
	m.root = node
	if node.IsLeaf() {
		if m.state == Synching {
			m.state = Valid
		}
	}
	m.mu.Unlock()

	if filter != nil {
		if canonical, err := m.ser.Encode(node, FormatPrefix); err == nil {
			filter.GotNode(false, expectedHash, canonical, node.IsLeaf())
		}
	}
	return Useful
}

// AddKnownNode grafts a non-root node received from a peer at the
// position targetId, or reports why it could not. It requires the Map
// to be Synching; requires targetId not be the root; and validates the
// incoming bytes against the position reached by walking targetId from
// the root, stopping on the first failure per the ordering below.
func (m *Map) AddKnownNode(targetID NodeID, raw []byte, filter SyncFilter) AddResult {
	if targetID.IsRoot() {
		return Invalid
	}

	m.mu.Lock()
	state := m.state
	root := m.root
	m.mu.Unlock()
	if state != Synching {
		return Duplicate
	}
	if root == nil || root.Hash().IsZero() {
		return Invalid
	}

	generation := m.cache.GetGeneration()

	// Walk from root selecting branches using targetId until we reach
	// the graft point: an empty branch, a full-below branch, a
	// resident node at the target depth, or a missing branch.
	var (
		parent   *InnerNode
		branch   int
		walkedID = RootNodeID()
	)
	current := root
	for {
		if walkedID.Depth() == targetID.Depth() {
			// Arrived at the target depth with a resident node (leaf
			// or inner) already installed: the peer is late.
			return Duplicate
		}
		inner, ok := current.(*InnerNode)
		if !ok {
			// A leaf sits above the target depth: it already resolves
			// this path, so the peer's answer is moot, not corrupt.
			return Duplicate
		}
		b := walkedID.SelectBranch(targetID.Key())
		childHash := inner.GetChildHash(b)
		if inner.IsEmptyBranch(b) {
			return Invalid
		}
		if m.backed && m.cache.TouchIfExists(childHash) {
			return Duplicate
		}
		child := inner.GetChild(b)
		if child == nil {
			child, _ = m.db.Fetch(childHash)
		}
		if child == nil {
			parent = inner
			branch = b
			walkedID = walkedID.ChildID(b)
			break
		}
		if childInner, ok := child.(*InnerNode); ok && childInner.IsFullBelow(generation) {
			return Duplicate
		}
		current = child
		walkedID = walkedID.ChildID(b)
	}

	expectedChildHash := parent.GetChildHash(branch)
	newNode, err := m.ser.Decode(raw, walkedID.Depth(), FormatWire, expectedChildHash, false)

	// 1. corruption: must exist, be valid, and hash correctly.
	if err != nil || newNode == nil || !newNode.IsValid() || newNode.Hash() != expectedChildHash {
		return Invalid
	}

	// 2. isInBounds.
	if inner, ok := newNode.(*InnerNode); ok && !inner.IsInBounds(walkedID) {
		m.setState(StateInvalid)
		return Useful
	}

	// 3. structural consistency.
	if isInconsistentNode(newNode) {
		m.setState(StateInvalid)
		return Useful
	}

	// 4. position match: misrouting is reported Useful, not Invalid --
	// the peer may simply be out of sync.
	if !positionMatches(newNode, walkedID, targetID) {
		return Useful
	}

	if m.backed {
		newNode = m.db.Canonicalize(expectedChildHash, newNode)
	}
	parent.CanonicalizeChild(branch, newNode)

	if filter != nil {
		if canonical, err := m.ser.Encode(newNode, FormatPrefix); err == nil {
			filter.GotNode(false, expectedChildHash, canonical, newNode.IsLeaf())
		}
	}
	return Useful
}
