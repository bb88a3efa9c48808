// Package trie implements the synchronization core of a hash-authenticated
// 16-ary radix trie ("the Map"): a fixed-depth (64 nibble) prefix tree
// keyed by 256-bit identifiers where every inner and leaf node carries a
// content hash that commits to its subtree.
//
// The package covers node modeling and hashing, a pluggable backing-store
// adapter, a generation-tagged "full-below" completeness cache, an
// explicit-stack traversal engine, the missing-node scanner that drives
// peer-to-peer sync, node grafting (validating and installing nodes
// received from peers), and peer-serving primitives (fat-node bundles,
// fetch packs, and tree-difference visitation).
//
// It does not decide when to sync, with whom, or how to rank peers; it
// makes no timing guarantees beyond finite progress per call.
package trie
