package trie

import (
	"fmt"

	"github.com/consensusdb/atrie/core/types"
)

// Hash is a 256-bit content hash or node key.
type Hash = types.Hash

const (
	// BranchFactor is the fan-out of an inner node (one slot per nibble).
	BranchFactor = 16
	// MaxDepth is the deepest a node can sit: 64 nibbles of a 256-bit key.
	MaxDepth = 64
)

// NodeID identifies a position in the trie: a depth (nibbles consumed
// from the root) and the key prefix leading there. Only the top depth
// nibbles of key are significant.
type NodeID struct {
	depth int
	key   Hash
}

// RootNodeID returns the identifier of the tree root.
func RootNodeID() NodeID {
	return NodeID{}
}

// NewNodeID builds a NodeID from an explicit depth and key prefix. depth
// must be in [0, MaxDepth].
func NewNodeID(depth int, key Hash) NodeID {
	return NodeID{depth: depth, key: key}
}

// Depth returns the number of nibbles consumed from the root.
func (id NodeID) Depth() int { return id.depth }

// Key returns the key prefix; only the top Depth() nibbles are significant.
func (id NodeID) Key() Hash { return id.key }

// IsRoot reports whether id identifies the tree root.
func (id NodeID) IsRoot() bool { return id.depth == 0 }

// SelectBranch returns the branch (0..15) that key follows at this
// node's depth.
func (id NodeID) SelectBranch(key Hash) int {
	return key.Nibble(id.depth)
}

// ChildID returns the identifier of the given branch's child.
func (id NodeID) ChildID(branch int) NodeID {
	return NodeID{depth: id.depth + 1, key: id.key.WithNibble(id.depth, branch)}
}

// HasCommonPrefix reports whether id and other agree on every nibble up
// to the shallower of the two depths. Used by the versioned node
// variant, whose own claimed position need only be consistent with —
// not identical to — the position the walk arrived at.
func (id NodeID) HasCommonPrefix(other NodeID) bool {
	min := id.depth
	if other.depth < min {
		min = other.depth
	}
	return types.CommonPrefixNibbles(id.key, other.key) >= min
}

// Equal reports exact identity: same depth, same key prefix.
func (id NodeID) Equal(other NodeID) bool {
	return id.depth == other.depth && id.key == other.key
}

// String renders the NodeID for logs and test failures.
func (id NodeID) String() string {
	return fmt.Sprintf("(%d,%s)", id.depth, id.key.Hex())
}
