package trie

// MissingNode is one entry of a GetMissingNodes result: a position and
// the hash the resident tree expects to find there.
type MissingNode struct {
	ID   NodeID
	Hash Hash
}

// scanFrame is one level of the scanner's explicit-stack DFS.
type scanFrame struct {
	node       *InnerNode
	id         NodeID
	firstChild int // drawn uniformly from 0..255 on entry
	currentChild int
	fullBelow  bool
}

// deferredRead records a branch whose prefetch came back Pending, to be
// resolved after the next WaitReads call.
type deferredRead struct {
	parent  *InnerNode
	branch  int
	childID NodeID
	hash    Hash
}

// GetMissingNodes returns up to max (position, hash) pairs whose nodes
// are not locally resident but are required to complete the tree
// rooted at m's root. On reaching a fully-resident root it transitions
// the Map's state from Synching to Valid before returning.
//
// filter may be nil. opts configures the soft caps (desired async
// batch) and randomness source for this call; without
// WithDesiredAsyncBatch the batch comes from the Database's
// DesiredAsyncBatch, and without WithRandSource a freshly seeded
// source is used.
func (m *Map) GetMissingNodes(max int, filter SyncFilter, opts ...Option) []MissingNode {
	result := make([]MissingNode, 0)
	if m.root == nil || m.root.Hash().IsZero() {
		return result
	}
	if m.root.IsLeaf() {
		m.setState(Valid)
		return result
	}
	rootInner, ok := m.root.(*InnerNode)
	if !ok {
		return result
	}
	generation := m.cache.GetGeneration()
	if rootInner.IsFullBelow(generation) {
		m.setState(Valid)
		return result
	}
	if max <= 0 {
		return result
	}

	o := NewOptions(opts...)
	if !o.desiredAsyncBatchSet {
		o.desiredAsyncBatch = m.db.DesiredAsyncBatch()
	}
	missingHashes := make(map[Hash]struct{})

	for max > 0 {
		deferred := make([]deferredRead, 0, o.desiredAsyncBatch+deferredReadSlack)
		stack := []*scanFrame{{
			node:       rootInner,
			id:         RootNodeID(),
			firstChild: o.randSource.Intn(256),
			fullBelow:  true,
		}}

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.currentChild >= BranchFactor {
				if top.fullBelow {
					top.node.SetFullBelowGeneration(generation)
					if m.backed {
						m.cache.Insert(top.node.Hash())
					}
				}
				stack = stack[:len(stack)-1]
				if len(stack) > 0 {
					parent := stack[len(stack)-1]
					parent.fullBelow = parent.fullBelow && top.fullBelow
				}
				if len(deferred) > o.desiredAsyncBatch {
					break
				}
				continue
			}

			branch := (top.firstChild + top.currentChild) % BranchFactor
			top.currentChild++

			if top.node.IsEmptyBranch(branch) {
				continue
			}
			childHash := top.node.GetChildHash(branch)
			childID := top.id.ChildID(branch)

			if _, already := missingHashes[childHash]; already {
				top.fullBelow = false
				continue
			}
			if m.backed && m.cache.TouchIfExists(childHash) {
				continue
			}

			child, res := m.db.Prefetch(childHash, filter)
			switch res {
			case Miss:
				result = append(result, MissingNode{ID: childID, Hash: childHash})
				missingHashes[childHash] = struct{}{}
				max--
				top.fullBelow = false
				if max <= 0 {
					return result
				}
			case Pending:
				deferred = append(deferred, deferredRead{parent: top.node, branch: branch, childID: childID, hash: childHash})
				top.fullBelow = false
			case Hit:
				if child.IsLeaf() {
					continue
				}
				childInner, ok := child.(*InnerNode)
				if !ok {
					continue
				}
				if childInner.IsFullBelow(generation) {
					continue
				}
				stack = append(stack, &scanFrame{
					node:       childInner,
					id:         childID,
					firstChild: o.randSource.Intn(256),
					fullBelow:  true,
				})
			}
		}

		if len(deferred) == 0 {
			// The traversal reached the end of the tree without
			// deferring anything: one clean pass is enough.
			if len(result) == 0 {
				m.setState(Valid)
			}
			return result
		}

		m.db.WaitReads()
		for _, d := range deferred {
			if max <= 0 {
				break
			}
			node, ok := m.db.Fetch(d.hash)
			if ok {
				if m.backed {
					node = m.db.Canonicalize(d.hash, node)
				}
				d.parent.CanonicalizeChild(d.branch, node)
				continue
			}
			if _, already := missingHashes[d.hash]; already {
				continue
			}
			missingHashes[d.hash] = struct{}{}
			result = append(result, MissingNode{ID: d.childID, Hash: d.hash})
			max--
		}
	}

	return result
}

// GetNeededHashes is a hashes-only projection of GetMissingNodes.
func (m *Map) GetNeededHashes(max int, filter SyncFilter, opts ...Option) []Hash {
	missing := m.GetMissingNodes(max, filter, opts...)
	hashes := make([]Hash, len(missing))
	for i, mn := range missing {
		hashes[i] = mn.Hash
	}
	return hashes
}
