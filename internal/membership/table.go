// Package membership tracks which nodes are known to the local Chord node:
// an ordered, deduplicated set of peer descriptors, plus the successor
// lookup that turns a ring position into the node responsible for it.
//
// Unlike the teacher's Membership type, which mutates a plain map guarded
// by a sync.RWMutex, the table here is a copy-on-write structure behind
// an atomic pointer. Routing decisions sit on the hot path and happen far
// more often than the table changes, so readers take a lock-free snapshot
// and writers pay the cost of rebuilding the slice — the tradeoff spec
// calls out directly: "a copy-on-write pointer swap is preferable for
// readers on the hot path."
package membership

import (
	"errors"
	"sort"
	"sync/atomic"

	"chordkv/internal/ring"
)

// ErrNoNodes is a configuration error: routing was attempted against an
// empty table.
var ErrNoNodes = errors.New("membership: table has no nodes")

// Table is safe for concurrent use by many readers and writers.
type Table struct {
	self ring.NodeDescriptor
	cur  atomic.Pointer[[]ring.NodeDescriptor]
}

// New creates a table that always contains self, per the invariant that
// the local node's own descriptor is present at all times after init.
func New(self ring.NodeDescriptor) *Table {
	t := &Table{self: self}
	initial := []ring.NodeDescriptor{self}
	t.cur.Store(&initial)
	return t
}

// Add inserts node if its ID is not already present, preserving sort
// order. Returns false if the node was already known (duplicates are
// ignored, not an error).
func (t *Table) Add(node ring.NodeDescriptor) bool {
	for {
		oldPtr := t.cur.Load()
		old := *oldPtr

		idx := sort.Search(len(old), func(i int) bool { return old[i].ID >= node.ID })
		if idx < len(old) && old[idx].ID == node.ID {
			return false
		}

		next := make([]ring.NodeDescriptor, 0, len(old)+1)
		next = append(next, old[:idx]...)
		next = append(next, node)
		next = append(next, old[idx:]...)

		if t.cur.CompareAndSwap(oldPtr, &next) {
			return true
		}
		// Lost the race with a concurrent writer; retry against the new value.
	}
}

// ReplaceAll atomically swaps the entire table with a deduplicated,
// sorted version of nodes. The local node's own descriptor is preserved
// (re-inserted if the caller's list omitted it), matching the invariant
// that self is never evicted by a broadcast.
func (t *Table) ReplaceAll(nodes []ring.NodeDescriptor) {
	seen := make(map[ring.ID]bool, len(nodes)+1)
	deduped := make([]ring.NodeDescriptor, 0, len(nodes)+1)

	sawSelf := false
	for _, n := range nodes {
		if seen[n.ID] {
			continue // reject the later one
		}
		seen[n.ID] = true
		deduped = append(deduped, n)
		if n.ID == t.self.ID {
			sawSelf = true
		}
	}
	if !sawSelf {
		deduped = append(deduped, t.self)
	}

	sort.Slice(deduped, func(i, j int) bool { return deduped[i].ID < deduped[j].ID })
	t.cur.Store(&deduped)
}

// Successor returns the node with the smallest ID >= id, wrapping to the
// smallest ID in the table if none qualifies. Fails only when the table
// is empty, which should never happen after New but is still checked
// since ReplaceAll is reachable from untrusted peer input.
func (t *Table) Successor(id ring.ID) (ring.NodeDescriptor, error) {
	ptr := t.cur.Load()
	if ptr == nil || len(*ptr) == 0 {
		return ring.NodeDescriptor{}, ErrNoNodes
	}
	nodes := *ptr

	idx := sort.Search(len(nodes), func(i int) bool { return nodes[i].ID >= id })
	if idx == len(nodes) {
		idx = 0
	}
	return nodes[idx], nil
}

// Snapshot returns a point-in-time, immutable view suitable for broadcast.
// The returned slice must not be mutated by the caller.
func (t *Table) Snapshot() []ring.NodeDescriptor {
	return *t.cur.Load()
}

// Self returns the local node's own descriptor.
func (t *Table) Self() ring.NodeDescriptor {
	return t.self
}
