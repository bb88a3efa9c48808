package trie

import (
	"math/rand"
	"sync/atomic"
)

const (
	// defaultDesiredAsyncBatch is the recommended in-flight prefetch
	// count when a Database implementation has no better estimate.
	defaultDesiredAsyncBatch = 16
	// deferredReadSlack is extra capacity reserved in the scanner's
	// deferred-read slice beyond desiredAsyncBatch, so the pushes made
	// before the scanner notices the bound do not reallocate, mirroring
	// the reserve(cap+16) headroom of the source this algorithm is
	// ported from. It plays no part in the scanner's exit test.
	deferredReadSlack = 16
)

// Options configures a scanner call's soft caps and randomness source.
// Constructed with functional options so new knobs can be added without
// breaking callers.
type Options struct {
	desiredAsyncBatch    int
	desiredAsyncBatchSet bool
	randSource           *rand.Rand
}

// Option configures an Options value.
type Option func(*Options)

// WithDesiredAsyncBatch overrides the recommended in-flight prefetch
// count used to size the deferred-read drain threshold. Without this
// option, GetMissingNodes asks the backing Database for its own
// recommendation.
func WithDesiredAsyncBatch(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.desiredAsyncBatch = n
			o.desiredAsyncBatchSet = true
		}
	}
}

// WithRandSource overrides the source of per-frame randomized branch
// order. Tests use this for deterministic traversal order; production
// callers may leave it unset. Per §9's design note, this must not be a
// process-global generator shared across goroutines without
// synchronization — the *rand.Rand supplied here is owned by one
// scanner call.
func WithRandSource(r *rand.Rand) Option {
	return func(o *Options) {
		if r != nil {
			o.randSource = r
		}
	}
}

// NewOptions builds an Options value with defaults, applying opts.
// desiredAsyncBatch starts at defaultDesiredAsyncBatch so the value is
// always usable standalone; callers that have a Database to consult
// (GetMissingNodes) check desiredAsyncBatchSet and prefer the store's
// own recommendation when the caller supplied no override.
func NewOptions(opts ...Option) Options {
	o := Options{desiredAsyncBatch: defaultDesiredAsyncBatch}
	for _, opt := range opts {
		opt(&o)
	}
	if o.randSource == nil {
		o.randSource = rand.New(rand.NewSource(newSeed()))
	}
	return o
}

// newSeed produces a per-call seed without relying on wall-clock time
// (kept out of this package's hot path; callers that need
// reproducibility should use WithRandSource instead). seedCounter is a
// package-global incremented from concurrent GetMissingNodes calls
// across independent Maps, so it must be advanced atomically.
var seedCounter uint64

func newSeed() int64 {
	return int64(atomic.AddUint64(&seedCounter, 0x9e3779b97f4a7c15))
}
