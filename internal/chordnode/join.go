package chordnode

import (
	"context"
	"fmt"

	"chordkv/internal/peer"
)

// Join sends one register_node request carrying this node's own
// descriptor to seedAddr. A "registered" reply means the node is
// considered joined; anything else (including a forwarding-exhausted
// empty response) is a join failure the caller must handle — unlike
// store/find/delete, there is no safe success to fabricate here.
func (n *Node) Join(ctx context.Context, seedAddr string) error {
	resp, err := n.transport.Send(ctx, seedAddr, peer.Message{
		Operation: peer.OpRegisterNode,
		Node:      &n.self,
	})
	if err != nil {
		return fmt.Errorf("chordnode: join request to %s: %w", seedAddr, err)
	}
	if resp.Status != "registered" {
		return fmt.Errorf("chordnode: seed %s did not acknowledge join (status=%q)", seedAddr, resp.Status)
	}
	return nil
}
