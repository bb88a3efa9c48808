package trie

import (
	"encoding/binary"

	"github.com/consensusdb/atrie/crypto"
)

// innerHash computes an inner node's content hash from its 16 branch
// hashes (empty branches contribute their zero hash unchanged).
func innerHash(branches []Hash) Hash {
	buf := make([]byte, 0, BranchFactor*32)
	for _, h := range branches {
		buf = append(buf, h.Bytes()...)
	}
	return crypto.Keccak256Hash(buf)
}

// leafHash computes a leaf node's content hash from its key and payload.
func leafHash(item *Item) Hash {
	if item == nil {
		return Hash{}
	}
	return crypto.Keccak256Hash(item.Key.Bytes(), item.Payload)
}

// versionedInnerHash folds a versioned inner node's own claimed
// position into its hash so that two nodes with identical branches but
// different claimed depth/key never collide.
func versionedInnerHash(id NodeID, branches []Hash) Hash {
	var depthBuf [8]byte
	binary.BigEndian.PutUint64(depthBuf[:], uint64(id.Depth()))
	buf := make([]byte, 0, 8+32+BranchFactor*32)
	buf = append(buf, depthBuf[:]...)
	buf = append(buf, id.Key().Bytes()...)
	for _, h := range branches {
		buf = append(buf, h.Bytes()...)
	}
	return crypto.Keccak256Hash(buf)
}
