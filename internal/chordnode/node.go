// Package chordnode is the operation-dispatch core of the system: it
// decides, for every store/find/delete/register/update request — whether
// it arrived from an HTTP client or from a peer over the wire — if the
// request should be served from the local store or forwarded to the
// ring's owning node.
//
// Node deliberately separates the immutable PeerDescriptor (ring.NodeDescriptor,
// held in the membership table) from the single running LocalNode
// instance (Node itself, which owns the local store; the listening socket
// is a peer.Server that dispatches into it). The reference implementation this was ported from conflates
// the two by instantiating a full node object per known peer with
// listen=False; that object-model artifact is not carried forward here.
package chordnode

import (
	"fmt"

	"chordkv/internal/membership"
	"chordkv/internal/peer"
	"chordkv/internal/ring"
	"chordkv/internal/store"
)

// Node is a single running Chord node: the component that owns the local
// store, the membership table, and the outbound peer transport, and
// dispatches every store/find/delete/register/update operation to either
// of the two.
type Node struct {
	self      ring.NodeDescriptor
	m         uint
	store     *store.Store
	table     *membership.Table
	transport *peer.Client
}

// New creates a Node. table should already contain self (membership.New
// guarantees this).
func New(self ring.NodeDescriptor, m uint, st *store.Store, table *membership.Table, transport *peer.Client) *Node {
	return &Node{self: self, m: m, store: st, table: table, transport: transport}
}

// Self returns this node's own descriptor.
func (n *Node) Self() ring.NodeDescriptor {
	return n.self
}

// Table exposes the membership table for introspection (e.g. the HTTP
// front door's /cluster/nodes endpoint).
func (n *Node) Table() *membership.Table {
	return n.table
}

// route computes the owner of key and reports whether that owner is this
// node itself. A Successor lookup only fails when the membership table is
// empty, which membership.New rules out by always seeding self — reaching
// that case means the node was built wrong, hence ErrConfiguration rather
// than propagating the lower-level membership error.
func (n *Node) route(key string) (owner ring.NodeDescriptor, local bool, err error) {
	h := ring.HashID([]byte(key), n.m)
	owner, err = n.table.Successor(h)
	if err != nil {
		return ring.NodeDescriptor{}, false, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return owner, owner.ID == n.self.ID, nil
}
