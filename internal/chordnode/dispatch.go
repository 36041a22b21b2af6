package chordnode

import (
	"context"
	"log"

	"chordkv/internal/peer"
	"chordkv/internal/ring"
)

// Dispatch handles one peer.Message regardless of whether it arrived over
// the peer wire protocol or was constructed locally by the HTTP front
// door — both entry points funnel through here, exactly as a client
// request "enters the Chord Node" in the system overview.
//
// Forwarding recursion depth is exactly one hop: on a non-local owner,
// Dispatch calls the transport once and returns whatever comes back (or
// the chosen failure policy below). It never calls itself recursively.
func (n *Node) Dispatch(ctx context.Context, msg peer.Message) peer.Message {
	switch msg.Operation {
	case peer.OpStoreKey:
		return n.dispatchStoreKey(ctx, msg)
	case peer.OpFindKey:
		return n.dispatchFindKey(ctx, msg)
	case peer.OpDeleteKey:
		return n.dispatchDeleteKey(ctx, msg)
	case peer.OpRegisterNode:
		return n.dispatchRegisterNode(ctx, msg)
	case peer.OpUpdateNodes:
		return n.dispatchUpdateNodes(msg)
	default:
		return peer.Message{Status: "error", Message: "chordnode: protocol error: unknown operation " + string(msg.Operation)}
	}
}

func (n *Node) dispatchStoreKey(ctx context.Context, msg peer.Message) peer.Message {
	owner, local, err := n.route(msg.Key)
	if err != nil {
		return peer.Message{Status: "error", Message: err.Error()}
	}

	if local {
		if err := n.store.Put([]byte(msg.Key), []byte(msg.Value)); err != nil {
			return peer.Message{Status: "error", Message: err.Error()}
		}
		return peer.Message{Status: "stored", Key: msg.Key}
	}

	resp, _ := n.transport.Send(ctx, owner.Addr(), peer.Message{
		Operation: peer.OpStoreKey,
		Key:       msg.Key,
		Value:     msg.Value,
	})
	if resp.IsEmpty() {
		// Forwarding failed after retries. Spec §8 scenario 5 records that
		// the initiating node reports success to its caller regardless —
		// an acknowledged wart, adopted here as deliberate policy rather
		// than left to chance.
		log.Printf("chordnode: forward store_key %q to %s failed, reporting local success per policy", msg.Key, owner.Addr())
		return peer.Message{Status: "stored", Key: msg.Key}
	}
	return resp
}

func (n *Node) dispatchFindKey(ctx context.Context, msg peer.Message) peer.Message {
	owner, local, err := n.route(msg.Key)
	if err != nil {
		return peer.Message{Status: "error", Message: err.Error()}
	}

	if local {
		value, ok, err := n.store.Get([]byte(msg.Key))
		if err != nil {
			return peer.Message{Status: "error", Message: err.Error()}
		}
		if !ok {
			return peer.Message{Status: "error", Message: ErrNotFound.Error()}
		}
		return peer.Message{Status: "success", Key: msg.Key, Value: string(value)}
	}

	resp, _ := n.transport.Send(ctx, owner.Addr(), peer.Message{
		Operation: peer.OpFindKey,
		Key:       msg.Key,
	})
	if resp.IsEmpty() {
		// Unlike store/delete, there is no value to fabricate on a read,
		// so a forwarding failure here is reported as an error rather
		// than papered over.
		return peer.Message{Status: "error", Message: ErrForwardingFailed.Error()}
	}
	return resp
}

func (n *Node) dispatchDeleteKey(ctx context.Context, msg peer.Message) peer.Message {
	owner, local, err := n.route(msg.Key)
	if err != nil {
		return peer.Message{Status: "error", Message: err.Error()}
	}

	if local {
		if err := n.store.Delete([]byte(msg.Key)); err != nil {
			return peer.Message{Status: "error", Message: err.Error()}
		}
		return peer.Message{Status: "deleted", Key: msg.Key}
	}

	resp, _ := n.transport.Send(ctx, owner.Addr(), peer.Message{
		Operation: peer.OpDeleteKey,
		Key:       msg.Key,
	})
	if resp.IsEmpty() {
		log.Printf("chordnode: forward delete_key %q to %s failed, reporting local success per policy", msg.Key, owner.Addr())
		return peer.Message{Status: "deleted", Key: msg.Key}
	}
	return resp
}

func (n *Node) dispatchRegisterNode(ctx context.Context, msg peer.Message) peer.Message {
	if msg.Node == nil {
		return peer.Message{Status: "error", Message: ErrConfiguration.Error() + ": missing node descriptor"}
	}

	n.table.Add(*msg.Node)
	log.Printf("chordnode: registered new node %s (id=%d)", msg.Node.Addr(), msg.Node.ID)
	n.propagate(ctx)

	return peer.Message{Status: "registered"}
}

func (n *Node) dispatchUpdateNodes(msg peer.Message) peer.Message {
	n.table.ReplaceAll(msg.Nodes)
	return peer.Message{}
}

// propagate sends the current membership snapshot to every known peer
// except self, fanning out the effect of a join to the whole cluster in
// one round.
func (n *Node) propagate(ctx context.Context) {
	snapshot := n.table.Snapshot()
	for _, peerDesc := range snapshot {
		if peerDesc.ID == n.self.ID {
			continue
		}
		go func(target ring.NodeDescriptor) {
			n.transport.Send(ctx, target.Addr(), peer.Message{
				Operation: peer.OpUpdateNodes,
				Nodes:     snapshot,
			})
		}(peerDesc)
	}
}
