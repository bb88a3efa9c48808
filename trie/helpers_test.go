package trie

// Test-only helpers for building small trees without going through the
// encode/decode or graft paths.

func leaf(keyByte byte, payload string) *LeafNode {
	var k Hash
	k[31] = keyByte
	return NewLeafNode(&Item{Key: k, Payload: []byte(payload)})
}

// inner builds an InnerNode from a branch->Node map and computes its hash.
func inner(children map[int]Node) *InnerNode {
	n := NewInnerNode()
	for b, c := range children {
		n.SetBranch(b, c.Hash(), c)
	}
	n.RecomputeHash()
	return n
}

func newTestMap(db Database, cache FullBelowCache) *Map {
	return NewMap(db, cache, NewRLPSerializer(), true)
}

func setRoot(m *Map, n Node) {
	m.mu.Lock()
	m.root = n
	m.mu.Unlock()
}
