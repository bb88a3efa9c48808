package trie

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/VictoriaMetrics/fastcache"
)

// FullBelowCache is a process-wide, generation-tagged set of hashes
// proven to have every descendant resident locally. A generation bump
// invalidates all prior memberships without clearing the underlying
// set: TouchIfExists only returns true for entries tagged with the
// current generation.
type FullBelowCache interface {
	// GetGeneration returns the current generation.
	GetGeneration() uint32
	// TouchIfExists reports whether hash is a member of the current
	// generation, refreshing it if so.
	TouchIfExists(hash Hash) bool
	// Insert marks hash as full-below at the current generation.
	Insert(hash Hash)
}

// FastCache is a FullBelowCache backed by a fixed-size
// github.com/VictoriaMetrics/fastcache byte cache mapping hash to the
// generation it was last confirmed at. Being a bounded cache, it may
// forget entries under memory pressure; per the interface contract
// that is safe (TouchIfExists then simply misses, causing extra scan
// work) as long as it never reports true for a generation it wasn't
// told to remember.
type FastCache struct {
	cache      *fastcache.Cache
	generation uint32
}

// NewFastCache builds a FullBelowCache with the given max byte size.
// The generation counter starts at 1 for the same reason
// MemoryFullBelowCache's does: 0 is reserved for "not proven".
func NewFastCache(maxBytes int) *FastCache {
	return &FastCache{cache: fastcache.New(maxBytes), generation: 1}
}

func (c *FastCache) GetGeneration() uint32 {
	return atomic.LoadUint32(&c.generation)
}

// BumpGeneration invalidates every prior full-below memoization. Per
// §5, this happens externally to the sync core (e.g. on ledger close)
// and never inside a scanner call.
func (c *FastCache) BumpGeneration() uint32 {
	return atomic.AddUint32(&c.generation, 1)
}

func (c *FastCache) TouchIfExists(hash Hash) bool {
	got := c.cache.Get(nil, hash.Bytes())
	if len(got) != 4 {
		return false
	}
	stored := binary.BigEndian.Uint32(got)
	current := c.GetGeneration()
	if stored != current {
		return false
	}
	// Refresh: re-set so a subsequent eviction pass sees recent use.
	c.cache.Set(hash.Bytes(), got)
	return true
}

func (c *FastCache) Insert(hash Hash) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], c.GetGeneration())
	c.cache.Set(hash.Bytes(), buf[:])
}

// MemoryFullBelowCache is a simple map-backed FullBelowCache, used by
// tests that want exact (non-evicting) membership semantics.
type MemoryFullBelowCache struct {
	generation uint32
	members    map[Hash]uint32
}

// NewMemoryFullBelowCache builds an unbounded, exact FullBelowCache.
// The generation counter starts at 1, never 0: nodes use 0 to mean
// "not proven" (see InnerNode.fullBelowGeneration), so generation 0
// must never be a value TouchIfExists can match.
func NewMemoryFullBelowCache() *MemoryFullBelowCache {
	return &MemoryFullBelowCache{generation: 1, members: make(map[Hash]uint32)}
}

func (c *MemoryFullBelowCache) GetGeneration() uint32 { return c.generation }

// BumpGeneration invalidates every prior full-below memoization.
func (c *MemoryFullBelowCache) BumpGeneration() uint32 {
	c.generation++
	return c.generation
}

func (c *MemoryFullBelowCache) TouchIfExists(hash Hash) bool {
	g, ok := c.members[hash]
	if !ok || g != c.generation {
		return false
	}
	return true
}

func (c *MemoryFullBelowCache) Insert(hash Hash) {
	c.members[hash] = c.generation
}
