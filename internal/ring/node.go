package ring

import (
	"fmt"
	"net"
	"strconv"
)

// NodeDescriptor is an immutable reference to a peer on the ring: its
// identifier, and the address a caller would dial to reach it. It never
// holds a live connection or a listening socket — that responsibility
// belongs to a single running node instance, never to a descriptor of a
// peer (see chordnode.Node).
type NodeDescriptor struct {
	ID   ID     `json:"node_id"`
	Host string `json:"ip"`
	Port int    `json:"port"`
}

// NewNodeDescriptor derives a descriptor's ID from the canonical string
// "node_<host>:<port>", matching the reference implementation this ring
// was ported from.
func NewNodeDescriptor(host string, port int, m uint) NodeDescriptor {
	canonical := fmt.Sprintf("node_%s:%d", host, port)
	return NodeDescriptor{
		ID:   HashID([]byte(canonical), m),
		Host: host,
		Port: port,
	}
}

// Addr returns the dialable host:port for this descriptor.
func (n NodeDescriptor) Addr() string {
	return net.JoinHostPort(n.Host, strconv.Itoa(n.Port))
}
