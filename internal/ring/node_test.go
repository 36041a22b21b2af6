package ring

import "testing"

func TestNewNodeDescriptorAddr(t *testing.T) {
	n := NewNodeDescriptor("127.0.0.1", 6000, DefaultM)
	if got, want := n.Addr(), "127.0.0.1:6000"; got != want {
		t.Fatalf("Addr() = %q, want %q", got, want)
	}
}

func TestNewNodeDescriptorIDMatchesCanonicalHash(t *testing.T) {
	n := NewNodeDescriptor("127.0.0.1", 6000, DefaultM)
	want := HashID([]byte("node_127.0.0.1:6000"), DefaultM)
	if n.ID != want {
		t.Fatalf("ID = %d, want %d", n.ID, want)
	}
}
