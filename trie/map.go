package trie

import (
	"sync"

	"github.com/consensusdb/atrie/log"
)

// Map is the sync-core's tree handle: a root node, a monotonically
// increasing sequence number, a lifecycle state, and references to the
// shared backing store and full-below cache. Multiple Map instances
// commonly share structure (canonicalized children) after copy-on-write.
type Map struct {
	mu sync.Mutex

	root Node
	seq  uint64

	state State

	db     Database
	cache  FullBelowCache
	ser    Serializer
	backed bool // whether writes are canonicalized through db

	log *log.Logger
}

// NewMap builds an empty, Synching Map with no root installed. backed
// controls whether grafted/resolved nodes are canonicalized through db
// and recorded in the full-below cache.
func NewMap(db Database, cache FullBelowCache, ser Serializer, backed bool) *Map {
	return &Map{
		state:  Synching,
		db:     db,
		cache:  cache,
		ser:    ser,
		backed: backed,
		log:    log.Default().Module("map"),
	}
}

// State returns the Map's current lifecycle state.
func (m *Map) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Seq returns the Map's sequence number.
func (m *Map) Seq() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq
}

// Root returns the current root node, or nil if none is installed.
func (m *Map) Root() Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.root
}

// RootHash returns the current root's hash, or the zero hash if no
// root is installed.
func (m *Map) RootHash() Hash {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.root == nil {
		return Hash{}
	}
	return m.root.Hash()
}

func (m *Map) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Invalid is sticky; nothing may downgrade it.
	if m.state == StateInvalid {
		return
	}
	m.state = s
}

// resolve materializes a child by hash from the backing store,
// canonicalizing the result if the Map is backed. Used by the
// traversal engine and peer-serving walks when a branch's in-memory
// pointer has not been cached.
func (m *Map) resolve(hash Hash) Node {
	if hash.IsZero() {
		return nil
	}
	n, ok := m.db.Fetch(hash)
	if !ok {
		return nil
	}
	if m.backed {
		n = m.db.Canonicalize(hash, n)
	}
	return n
}

// VisitNodes performs a pre-order DFS over every resident node,
// including the root. Returning true from fn stops the traversal.
func (m *Map) VisitNodes(fn VisitFn) {
	visitNodes(m.Root(), m.resolve, fn)
}

// VisitLeaves forwards every resident leaf's item to fn.
func (m *Map) VisitLeaves(fn LeafVisitFn) {
	visitLeaves(m.Root(), m.resolve, fn)
}
