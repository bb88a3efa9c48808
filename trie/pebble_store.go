package trie

import (
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/consensusdb/atrie/log"
)

// PebbleDatabase is a Database backed by a github.com/cockroachdb/pebble
// on-disk key-value store, used for integration tests and as an
// example of a real persistence layer. It has no asynchronous read
// path of its own (pebble reads are already fast, memory-mapped
// lookups), so Prefetch always resolves synchronously to Hit or Miss;
// WaitReads is a no-op.
type PebbleDatabase struct {
	db     *pebble.DB
	ser    Serializer
	format Format

	mu    sync.Mutex
	canon map[Hash]Node

	log *log.Logger
}

// OpenPebbleDatabase opens (or creates) a pebble store at dir.
func OpenPebbleDatabase(dir string, ser Serializer) (*PebbleDatabase, error) {
	return openPebbleDatabase(dir, &pebble.Options{}, ser)
}

// openPebbleDatabaseWithOptions opens a pebble store with caller-supplied
// pebble.Options, letting tests substitute an in-memory vfs.FS instead of
// touching disk.
func openPebbleDatabaseWithOptions(dir string, opts *pebble.Options, ser Serializer) (*PebbleDatabase, error) {
	return openPebbleDatabase(dir, opts, ser)
}

func openPebbleDatabase(dir string, opts *pebble.Options, ser Serializer) (*PebbleDatabase, error) {
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, err
	}
	return &PebbleDatabase{
		db:     db,
		ser:    ser,
		format: FormatPrefix,
		canon:  make(map[Hash]Node),
		log:    log.Default().Module("pebble"),
	}, nil
}

// Close releases the underlying pebble handle.
func (p *PebbleDatabase) Close() error {
	return p.db.Close()
}

func storeKey(hash Hash) []byte {
	key := make([]byte, 0, 1+32)
	key = append(key, 'n')
	key = append(key, hash.Bytes()...)
	return key
}

// Put persists a node's canonical encoding.
func (p *PebbleDatabase) Put(hash Hash, node Node) error {
	raw, err := p.ser.Encode(node, p.format)
	if err != nil {
		return err
	}
	return p.db.Set(storeKey(hash), raw, pebble.Sync)
}

func (p *PebbleDatabase) Fetch(hash Hash) (Node, bool) {
	if hash.IsZero() {
		return nil, false
	}
	raw, closer, err := p.db.Get(storeKey(hash))
	if err != nil {
		return nil, false
	}
	defer closer.Close()
	buf := make([]byte, len(raw))
	copy(buf, raw)
	n, err := p.ser.Decode(buf, 0, p.format, hash, false)
	if err != nil {
		return nil, false
	}
	return n, true
}

func (p *PebbleDatabase) Prefetch(hash Hash, filter SyncFilter) (Node, PrefetchResult) {
	if n, ok := p.Fetch(hash); ok {
		return n, Hit
	}
	if filter != nil {
		if raw, ok := filter.TryFetch(hash); ok {
			n, err := p.ser.Decode(raw, 0, FormatWire, hash, true)
			if err == nil {
				return n, Hit
			}
			p.log.Warn("sync filter offered undecodable node", "hash", hash)
		}
	}
	return nil, Miss
}

func (p *PebbleDatabase) WaitReads() {}

func (p *PebbleDatabase) DesiredAsyncBatch() int { return defaultDesiredAsyncBatch }

func (p *PebbleDatabase) Canonicalize(hash Hash, node Node) Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.canon[hash]; ok {
		return existing
	}
	p.canon[hash] = node
	return node
}
