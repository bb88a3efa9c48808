package trie

// Node is the tagged-variant type shared by inner and leaf nodes. Both
// variants carry an immutable content hash computed at construction or
// decode time.
type Node interface {
	// Hash returns the node's content hash. Immutable post-construction.
	Hash() Hash
	// IsLeaf reports whether this node is a leaf (as opposed to inner).
	IsLeaf() bool
	// IsValid checks local structural invariants (e.g. an inner node
	// with zero populated branches is invalid). It does not check the
	// hash against any externally expected value.
	IsValid() bool
}

// Item is the key/payload pair carried by a leaf node. Multiple leaf
// instances may share one Item by reference (shared ownership, per the
// canonicalization design).
type Item struct {
	Key     Hash
	Payload []byte
}

// LeafNode is a Node that terminates a path with a key/payload pair.
type LeafNode struct {
	hash Hash
	item *Item
}

// NewLeafNode builds a leaf node and computes its hash.
func NewLeafNode(item *Item) *LeafNode {
	return &LeafNode{hash: leafHash(item), item: item}
}

// newLeafNodeWithHash builds a leaf node from a hash already known to be
// correct (e.g. supplied by a trusted decode path).
func newLeafNodeWithHash(hash Hash, item *Item) *LeafNode {
	return &LeafNode{hash: hash, item: item}
}

func (l *LeafNode) Hash() Hash { return l.hash }
func (l *LeafNode) IsLeaf() bool { return true }
func (l *LeafNode) IsValid() bool { return l.item != nil }

// Item returns the leaf's key/payload pair.
func (l *LeafNode) Item() *Item { return l.item }

// branchSlot is one of an inner node's 16 children: the child hash is
// authoritative, the in-memory pointer is only a cache and may be nil
// even when the branch is populated.
type branchSlot struct {
	hash  Hash
	child Node
}

func (b branchSlot) isEmpty() bool { return b.hash.IsZero() }

// InnerNode is a Node with up to 16 children, indexed by nibble.
//
// The versioned variant additionally carries its own claimed (depth,
// key): position validation for it uses common-prefix rather than exact
// equality at several checkpoints (see positionMatches).
type InnerNode struct {
	hash      Hash
	branches  [BranchFactor]branchSlot
	versioned bool
	ownID     NodeID

	// fullBelowGeneration is the generation at which this subtree was
	// last proven fully resident; 0 means "not proven".
	fullBelowGeneration uint32
}

// NewInnerNode builds an empty inner node (all branches empty). Callers
// populate branches then call RecomputeHash.
func NewInnerNode() *InnerNode {
	return &InnerNode{}
}

// NewVersionedInnerNode builds an empty inner node that carries its own
// claimed position, used by the versioned wire/storage variant.
func NewVersionedInnerNode(id NodeID) *InnerNode {
	return &InnerNode{versioned: true, ownID: id}
}

func (n *InnerNode) Hash() Hash { return n.hash }
func (n *InnerNode) IsLeaf() bool { return false }

// IsValid reports the base structural invariant: an inner node must
// have at least one populated branch.
func (n *InnerNode) IsValid() bool { return n.BranchCount() > 0 }

// OwnID returns the node's self-claimed position (versioned variant
// only; zero value otherwise).
func (n *InnerNode) OwnID() NodeID { return n.ownID }

// Versioned reports whether this node carries its own claimed position.
func (n *InnerNode) Versioned() bool { return n.versioned }

// IsEmptyBranch reports whether branch i has no child hash.
func (n *InnerNode) IsEmptyBranch(i int) bool { return n.branches[i].isEmpty() }

// GetChildHash returns the hash at branch i (zero if empty).
func (n *InnerNode) GetChildHash(i int) Hash { return n.branches[i].hash }

// GetChild returns the cached in-memory child pointer at branch i, or
// nil if the branch is empty or the pointer has not been materialized.
func (n *InnerNode) GetChild(i int) Node { return n.branches[i].child }

// BranchCount returns the number of populated branches.
func (n *InnerNode) BranchCount() int {
	c := 0
	for i := 0; i < BranchFactor; i++ {
		if !n.branches[i].isEmpty() {
			c++
		}
	}
	return c
}

// SetBranch installs a child hash (and optionally a pointer) at branch
// i. Used while building or decoding a node, before RecomputeHash.
func (n *InnerNode) SetBranch(i int, hash Hash, child Node) {
	n.branches[i] = branchSlot{hash: hash, child: child}
}

// CanonicalizeChild installs child as the in-memory pointer for branch
// i and returns the pointer the node decided to keep. If a pointer is
// already installed for that hash, the existing one wins so that
// structurally-shared subtrees converge on one instance.
func (n *InnerNode) CanonicalizeChild(branch int, child Node) Node {
	slot := n.branches[branch]
	if slot.hash != child.Hash() {
		// Caller error: the branch hash disagrees with the node being
		// installed. Install anyway but do not pretend agreement.
		n.branches[branch] = branchSlot{hash: child.Hash(), child: child}
		return child
	}
	if slot.child != nil {
		return slot.child
	}
	n.branches[branch].child = child
	return child
}

// SetFullBelowGeneration marks the subtree rooted here as proven fully
// resident as of generation g.
func (n *InnerNode) SetFullBelowGeneration(g uint32) { n.fullBelowGeneration = g }

// IsFullBelow reports whether the subtree was proven fully resident at
// the given (current) generation.
func (n *InnerNode) IsFullBelow(generation uint32) bool {
	return n.fullBelowGeneration != 0 && n.fullBelowGeneration == generation
}

// IsInBounds checks that a candidate node's claimed position is
// consistent with the position the walk arrived at (walked). For the
// fixed-depth variant this is trivially true: the node carries no
// separate identity, so it cannot disagree. For the versioned variant
// the node's own claimed depth must be at least as deep as walked and
// its key must share walked's prefix.
func (n *InnerNode) IsInBounds(walked NodeID) bool {
	if !n.versioned {
		return true
	}
	if n.ownID.Depth() < walked.Depth() {
		return false
	}
	return n.ownID.HasCommonPrefix(walked)
}

// RecomputeHash recomputes and stores the node's hash from its current
// branch hashes (inner) or key/payload (leaf, handled by NewLeafNode).
func (n *InnerNode) RecomputeHash() {
	hashes := make([]Hash, BranchFactor)
	for i := 0; i < BranchFactor; i++ {
		hashes[i] = n.branches[i].hash
	}
	if n.versioned {
		n.hash = versionedInnerHash(n.ownID, hashes)
		return
	}
	n.hash = innerHash(hashes)
}

// positionMatches dispatches the node-variant-specific position check
// used both at graft points and in peer-serving walks: exact equality
// for the fixed-depth variant, common-prefix for the versioned variant.
func positionMatches(node Node, walked, claimed NodeID) bool {
	if inner, ok := node.(*InnerNode); ok && inner.versioned {
		return walked.HasCommonPrefix(claimed)
	}
	return walked.Equal(claimed)
}

// isInconsistentNode is a structural sanity check applied to nodes
// received from a peer, as a separate step after IsValid: an inner
// node with no populated branches is inconsistent regardless of what
// its hash claims to commit to. For inner nodes this is the same
// condition IsValid rejects. Leaves cannot be inconsistent by this
// check.
func isInconsistentNode(n Node) bool {
	inner, ok := n.(*InnerNode)
	if !ok {
		return false
	}
	return inner.BranchCount() == 0
}
