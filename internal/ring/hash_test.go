package ring

import "testing"

func TestHashIDDeterministic(t *testing.T) {
	a := HashID([]byte("node_127.0.0.1:6000"), 16)
	b := HashID([]byte("node_127.0.0.1:6000"), 16)
	if a != b {
		t.Fatalf("HashID not deterministic: %d != %d", a, b)
	}
}

func TestHashIDBounded(t *testing.T) {
	const m = 16
	id := HashID([]byte("some-arbitrary-key"), m)
	if id >= ID(1<<m) {
		t.Fatalf("HashID %d exceeds bound 2^%d", id, m)
	}
}

func TestHashIDDiffersAcrossInputs(t *testing.T) {
	a := HashID([]byte("node_127.0.0.1:6000"), 16)
	b := HashID([]byte("node_127.0.0.1:6001"), 16)
	if a == b {
		t.Fatalf("expected different ring positions for different node addresses, got %d for both", a)
	}
}

func TestHashIDRespectsM(t *testing.T) {
	for _, m := range []uint{8, 16, 32} {
		id := HashID([]byte("x"), m)
		if id >= ID(1)<<m {
			t.Fatalf("m=%d: id %d exceeds 2^%d", m, id, m)
		}
	}
}
