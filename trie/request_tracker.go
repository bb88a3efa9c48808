// request_tracker.go coordinates node requests across concurrent
// GetMissingNodes calls made against Map instances that share a
// backing store: the scanner itself only dedupes hashes within one
// call (missingHashes), so a caller driving several Maps against the
// same peer set needs its own cross-call dedup and priority ordering.
//
// The tracker buckets pending requests by depth (shallower nodes first,
// since resolving them unblocks the largest number of descendants) and
// tracks pending/inflight/done sets keyed by hash, the same shape the
// original scheduler used for shard-wide node requests.
package trie

import (
	"sync"
)

// RequestPriority encodes how urgently a request should be dispatched.
// Lower numeric values are higher priority.
type RequestPriority int

const (
	// PriorityRoot is the highest priority, for root nodes.
	PriorityRoot RequestPriority = 0
	// PriorityShallow is for nodes in the top 4 levels of the tree.
	PriorityShallow RequestPriority = 1
	// PriorityMedium is for nodes at depth 5-16.
	PriorityMedium RequestPriority = 2
	// PriorityDeep is for nodes deeper than 16.
	PriorityDeep RequestPriority = 3
	// PriorityRetry is for requests re-enqueued after a failed fetch.
	PriorityRetry RequestPriority = 4
)

const numPriorities = 5

// priorityForDepth returns the request priority for a node at the given depth.
func priorityForDepth(depth int) RequestPriority {
	switch {
	case depth == 0:
		return PriorityRoot
	case depth <= 4:
		return PriorityShallow
	case depth <= 16:
		return PriorityMedium
	default:
		return PriorityDeep
	}
}

// TrackedRequest is a single outstanding node request.
type TrackedRequest struct {
	ID       NodeID
	Hash     Hash
	Priority RequestPriority
}

// RequestTrackerStats is a snapshot of a RequestTracker's counters.
type RequestTrackerStats struct {
	Pending        int
	Inflight       int
	Done           int
	TotalRequested uint64
	TotalReceived  uint64
	TotalDuplicate uint64
}

// RequestTracker deduplicates and prioritizes MissingNode requests
// gathered from one or more Map.GetMissingNodes calls sharing a
// backing store, so a caller driving multiple Maps against a peer set
// does not issue the same request twice.
type RequestTracker struct {
	mu sync.Mutex

	pending  map[Hash]*TrackedRequest
	inflight map[Hash]struct{}
	done     map[Hash]struct{}
	queues   [numPriorities][]*TrackedRequest

	totalRequested uint64
	totalReceived  uint64
	totalDuplicate uint64
}

// NewRequestTracker builds an empty RequestTracker.
func NewRequestTracker() *RequestTracker {
	return &RequestTracker{
		pending:  make(map[Hash]*TrackedRequest),
		inflight: make(map[Hash]struct{}),
		done:     make(map[Hash]struct{}),
	}
}

// AddMissing enqueues every entry of a GetMissingNodes result,
// deduplicating against anything already pending, in flight, or done.
func (t *RequestTracker) AddMissing(entries []MissingNode) {
	for _, e := range entries {
		t.add(e.ID, e.Hash, priorityForDepth(e.ID.Depth()))
	}
}

func (t *RequestTracker) add(id NodeID, hash Hash, priority RequestPriority) {
	if hash.IsZero() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.done[hash]; ok {
		t.totalDuplicate++
		return
	}
	if _, ok := t.inflight[hash]; ok {
		t.totalDuplicate++
		return
	}
	if _, ok := t.pending[hash]; ok {
		t.totalDuplicate++
		return
	}

	req := &TrackedRequest{ID: id, Hash: hash, Priority: priority}
	t.pending[hash] = req
	t.queues[priority] = append(t.queues[priority], req)
	t.totalRequested++
}

// Pending returns the number of requests not yet dispatched.
func (t *RequestTracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Stats returns a snapshot of the tracker's counters.
func (t *RequestTracker) Stats() RequestTrackerStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return RequestTrackerStats{
		Pending:        len(t.pending),
		Inflight:       len(t.inflight),
		Done:           len(t.done),
		TotalRequested: t.totalRequested,
		TotalReceived:  t.totalReceived,
		TotalDuplicate: t.totalDuplicate,
	}
}

// PopRequests returns up to maxCount pending requests in priority
// order (root first, then shallow, medium and deep, with re-queued
// retries last) and marks them in flight.
func (t *RequestTracker) PopRequests(maxCount int) []*TrackedRequest {
	t.mu.Lock()
	defer t.mu.Unlock()

	var result []*TrackedRequest
	remaining := maxCount

	for pri := 0; pri < numPriorities && remaining > 0; pri++ {
		queue := t.queues[pri]

		filtered := queue[:0]
		for _, req := range queue {
			if _, ok := t.done[req.Hash]; ok {
				delete(t.pending, req.Hash)
				continue
			}
			if _, ok := t.inflight[req.Hash]; ok {
				delete(t.pending, req.Hash)
				continue
			}
			filtered = append(filtered, req)
		}

		take := remaining
		if take > len(filtered) {
			take = len(filtered)
		}
		for i := 0; i < take; i++ {
			req := filtered[i]
			t.inflight[req.Hash] = struct{}{}
			delete(t.pending, req.Hash)
			result = append(result, req)
		}
		t.queues[pri] = filtered[take:]
		remaining -= take
	}

	return result
}

// NodeArrived marks hash as delivered. Callers are expected to have
// already grafted the node (e.g. via Map.AddKnownNode) and verified its
// hash themselves; the tracker only tracks completion bookkeeping.
func (t *RequestTracker) NodeArrived(hash Hash) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inflight, hash)
	delete(t.pending, hash)
	t.done[hash] = struct{}{}
	t.totalReceived++
}

// NodeFailed moves an in-flight request back to pending at retry
// priority, for redispatch to another peer.
func (t *RequestTracker) NodeFailed(id NodeID, hash Hash) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.inflight[hash]; !ok {
		return
	}
	delete(t.inflight, hash)
	if _, ok := t.done[hash]; ok {
		return
	}
	if _, ok := t.pending[hash]; ok {
		return
	}

	req := &TrackedRequest{ID: id, Hash: hash, Priority: PriorityRetry}
	t.pending[hash] = req
	t.queues[PriorityRetry] = append(t.queues[PriorityRetry], req)
}

// IsDone reports whether every tracked request has been resolved
// (nothing pending or in flight).
func (t *RequestTracker) IsDone() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending) == 0 && len(t.inflight) == 0
}

// Reset discards all tracked state.
func (t *RequestTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = make(map[Hash]*TrackedRequest)
	t.inflight = make(map[Hash]struct{})
	t.done = make(map[Hash]struct{})
	for i := range t.queues {
		t.queues[i] = nil
	}
	t.totalRequested = 0
	t.totalReceived = 0
	t.totalDuplicate = 0
}
