package trie

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/consensusdb/atrie/log"
)

// SyncFilter offers alternate node sources during a scanner or graft
// call and is notified whenever a node is successfully installed. It
// is optional: a nil filter simply means "no alternate source, no
// notification".
type SyncFilter interface {
	// TryFetch offers an alternate source for hash, bypassing the
	// backing store (e.g. a just-received response cache).
	TryFetch(hash Hash) ([]byte, bool)
	// GotNode is invoked on every successful graft. fromAck reports
	// whether the node arrived because it was requested (true) or was
	// pushed unsolicited (false); leaf distinguishes leaf from inner.
	GotNode(fromAck bool, hash Hash, raw []byte, leaf bool)
}

// Database is the backing-store adapter: synchronous fetch, async
// prefetch with batch draining, and a canonicalization cache shared
// across every Map built over it.
type Database interface {
	// Fetch synchronously loads a node by hash.
	Fetch(hash Hash) (Node, bool)
	// Prefetch is non-blocking. A Pending result registers an
	// outstanding async read that a later WaitReads call will resolve.
	Prefetch(hash Hash, filter SyncFilter) (Node, PrefetchResult)
	// WaitReads blocks until every outstanding prefetch finishes.
	WaitReads()
	// DesiredAsyncBatch recommends an in-flight prefetch count.
	DesiredAsyncBatch() int
	// Canonicalize registers node as the canonical instance for hash,
	// returning the (possibly pre-existing) canonical instance. Must
	// be linearizable per hash.
	Canonicalize(hash Hash, node Node) Node
}

type asyncResult struct {
	node Node
	ok   bool
}

// MemoryDatabase is a reference Database backed by an in-memory byte
// store, used by tests and as an example wiring. Concurrent Prefetch
// calls for the same hash are collapsed into a single read via
// singleflight, matching how multiple Map instances sharing a store
// would otherwise duplicate work.
type MemoryDatabase struct {
	mu       sync.Mutex
	store    map[Hash][]byte
	decoded  map[Hash]Node
	canon    map[Hash]Node
	inflight map[Hash]struct{}
	async    map[Hash]asyncResult

	ser     Serializer
	format  Format
	latency func() // simulated read latency hook; nil means synchronous
	batch   int
	sf      singleflight.Group
	wg      sync.WaitGroup
	log     *log.Logger
}

// NewMemoryDatabase builds an empty in-memory Database. A nil latency
// hook makes every Prefetch resolve synchronously (Hit or Miss, never
// Pending); pass a hook that blocks (e.g. time.Sleep) to exercise the
// deferred-read path.
func NewMemoryDatabase(ser Serializer, latency func()) *MemoryDatabase {
	return &MemoryDatabase{
		store:    make(map[Hash][]byte),
		decoded:  make(map[Hash]Node),
		canon:    make(map[Hash]Node),
		inflight: make(map[Hash]struct{}),
		async:    make(map[Hash]asyncResult),
		ser:      ser,
		format:   FormatPrefix,
		latency:  latency,
		batch:    defaultDesiredAsyncBatch,
		log:      log.Default().Module("database"),
	}
}

// Put installs a node's canonical bytes as if received from storage,
// used by tests and by callers seeding a Database ahead of time. It
// writes only the raw encoding, not the decoded-node cache: Fetch and
// Prefetch decode lazily, so a Put node still exercises the latency
// hook (and the Pending path) exactly like a node that arrived by any
// other route.
func (db *MemoryDatabase) Put(hash Hash, node Node) {
	raw, err := db.ser.Encode(node, db.format)
	if err != nil {
		return
	}
	db.mu.Lock()
	db.store[hash] = raw
	db.mu.Unlock()
}

// SetDesiredAsyncBatch overrides the recommended in-flight prefetch count.
func (db *MemoryDatabase) SetDesiredAsyncBatch(n int) {
	db.mu.Lock()
	db.batch = n
	db.mu.Unlock()
}

func (db *MemoryDatabase) Fetch(hash Hash) (Node, bool) {
	if hash.IsZero() {
		return nil, false
	}
	db.mu.Lock()
	if n, ok := db.decoded[hash]; ok {
		db.mu.Unlock()
		return n, true
	}
	raw, ok := db.store[hash]
	db.mu.Unlock()
	if !ok {
		return nil, false
	}
	n, err := db.ser.Decode(raw, 0, db.format, hash, false)
	if err != nil {
		return nil, false
	}
	db.mu.Lock()
	db.decoded[hash] = n
	db.mu.Unlock()
	return n, true
}

func (db *MemoryDatabase) Prefetch(hash Hash, filter SyncFilter) (Node, PrefetchResult) {
	if hash.IsZero() {
		return nil, Miss
	}

	db.mu.Lock()
	if n, ok := db.decoded[hash]; ok {
		db.mu.Unlock()
		return n, Hit
	}
	if res, ok := db.async[hash]; ok {
		delete(db.async, hash)
		db.mu.Unlock()
		if !res.ok {
			return nil, Miss
		}
		db.mu.Lock()
		db.decoded[hash] = res.node
		db.mu.Unlock()
		return res.node, Hit
	}
	if _, busy := db.inflight[hash]; busy {
		db.mu.Unlock()
		return nil, Pending
	}
	db.mu.Unlock()

	if filter != nil {
		if raw, ok := filter.TryFetch(hash); ok {
			n, err := db.ser.Decode(raw, 0, FormatWire, hash, true)
			if err == nil {
				db.mu.Lock()
				db.decoded[hash] = n
				db.mu.Unlock()
				return n, Hit
			}
			db.log.Warn("sync filter offered undecodable node", "hash", hash)
		}
	}

	if db.latency == nil {
		db.mu.Lock()
		raw, present := db.store[hash]
		db.mu.Unlock()
		if !present {
			return nil, Miss
		}
		n, err := db.ser.Decode(raw, 0, db.format, hash, false)
		if err != nil {
			return nil, Miss
		}
		db.mu.Lock()
		db.decoded[hash] = n
		db.mu.Unlock()
		return n, Hit
	}

	db.mu.Lock()
	db.inflight[hash] = struct{}{}
	db.mu.Unlock()
	db.wg.Add(1)
	go func() {
		defer db.wg.Done()
		// singleflight collapses concurrent Prefetch calls racing on
		// the same hash from different Map instances sharing this
		// Database into one underlying read.
		v, _, _ := db.sf.Do(hash.Hex(), func() (any, error) {
			db.latency()
			db.mu.Lock()
			raw, present := db.store[hash]
			db.mu.Unlock()
			if !present {
				return asyncResult{}, nil
			}
			n, err := db.ser.Decode(raw, 0, db.format, hash, false)
			return asyncResult{node: n, ok: err == nil}, nil
		})
		db.mu.Lock()
		delete(db.inflight, hash)
		db.async[hash] = v.(asyncResult)
		db.mu.Unlock()
	}()
	return nil, Pending
}

func (db *MemoryDatabase) WaitReads() {
	db.wg.Wait()
}

func (db *MemoryDatabase) DesiredAsyncBatch() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.batch
}

func (db *MemoryDatabase) Canonicalize(hash Hash, node Node) Node {
	db.mu.Lock()
	defer db.mu.Unlock()
	if existing, ok := db.canon[hash]; ok {
		return existing
	}
	db.canon[hash] = node
	return node
}
