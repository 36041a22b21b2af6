package api

import (
	"context"
	"fmt"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"chordkv/internal/chordnode"
	"chordkv/internal/membership"
	"chordkv/internal/peer"
	"chordkv/internal/ring"
	"chordkv/internal/store"
)

// apiTestNode wires a chordnode.Node to both a real peer.Server (so
// cross-node forwarding and join propagation work over actual sockets) and
// an httptest.Server fronting the same node, mirroring how cmd/chordkvd
// wires the two listeners to one Node instance.
type apiTestNode struct {
	node    *chordnode.Node
	httpSrv *httptest.Server
	desc    ring.NodeDescriptor
}

func mustFreePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func startAPITestNode(t *testing.T) *apiTestNode {
	t.Helper()

	port := mustFreePort(t)
	self := ring.NewNodeDescriptor("127.0.0.1", port, testM)
	table := membership.New(self)

	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	node := chordnode.New(self, testM, st, table, peer.NewClient())

	peerSrv := peer.NewServer(node.Dispatch)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go peerSrv.Serve(ctx, self.Host, self.Port)
	waitForPort(t, self.Addr())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Logger(), Recovery())
	NewHandler(node).Register(router)

	httpSrv := httptest.NewServer(router)
	t.Cleanup(httpSrv.Close)

	return &apiTestNode{node: node, httpSrv: httpSrv, desc: self}
}

func waitForPort(t *testing.T, addr string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("listener at %s never came up", addr)
}

// TestClusterJoinConverges exercises spec §8 scenario 2: after B joins via
// A, both nodes' membership snapshots must contain exactly two descriptors
// with matching node_ids (invariant 2: membership views converge).
func TestClusterJoinConverges(t *testing.T) {
	a := startAPITestNode(t)
	b := startAPITestNode(t)

	status, body := doJSON(t, "POST", b.httpSrv.URL+"/cluster/join", map[string]string{"seed": a.desc.Addr()})
	require.Equal(t, 200, status)
	require.Equal(t, "joined", body["status"])

	require.Eventually(t, func() bool {
		return len(a.node.Table().Snapshot()) == 2
	}, 2*time.Second, 20*time.Millisecond, "A should learn about B via the join handshake")

	snapA := a.node.Table().Snapshot()
	snapB := b.node.Table().Snapshot()
	require.Len(t, snapA, 2)
	require.Len(t, snapB, 2)

	idsA := map[ring.ID]bool{}
	for _, n := range snapA {
		idsA[n.ID] = true
	}
	for _, n := range snapB {
		require.True(t, idsA[n.ID], "node %d known to B but not A", n.ID)
	}
}

// TestClusterPutForwardsToOwner exercises spec §8 scenario 3: a PUT on one
// node for a key owned by the other must land on the owner's store, not the
// receiving node's.
func TestClusterPutForwardsToOwner(t *testing.T) {
	a := startAPITestNode(t)
	b := startAPITestNode(t)

	status, body := doJSON(t, "POST", b.httpSrv.URL+"/cluster/join", map[string]string{"seed": a.desc.Addr()})
	require.Equal(t, 200, status)
	require.Equal(t, "joined", body["status"])

	require.Eventually(t, func() bool {
		return len(a.node.Table().Snapshot()) == 2
	}, 2*time.Second, 20*time.Millisecond)

	// Find a key A routes to B.
	var key string
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("cluster-key-%d", i)
		h := ring.HashID([]byte(candidate), testM)
		owner, err := a.node.Table().Successor(h)
		require.NoError(t, err)
		if owner.ID == b.desc.ID {
			key = candidate
			break
		}
	}

	status, body = doJSON(t, "POST", a.httpSrv.URL+"/put", map[string]string{"key": key, "value": "x"})
	require.Equal(t, 200, status)
	require.Equal(t, "success", body["status"])

	status, body = doJSON(t, "GET", b.httpSrv.URL+"/get/"+key, nil)
	require.Equal(t, 200, status)
	require.Equal(t, "x", body["value"])
}
