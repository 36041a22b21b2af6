// cmd/chordkvd is the main entrypoint for a chordkv ring node.
//
// A node can start two ways, matching the Python reference implementation's
// process contract exactly:
//
//	Seed node (no positional args):
//	    ./chordkvd
//	    ./chordkvd --peer-port 6000 --http-port 5000
//
//	Joining node (three positional args):
//	    ./chordkvd <seed_host:seed_port> <peer_port> <http_port>
//	    ./chordkvd 127.0.0.1:6000 6001 5001
//
// Flags configure everything the positional contract doesn't: the data
// directory, the bind host, and the ring's bit width (must match every
// other node in the fleet — see internal/ring).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"chordkv/internal/api"
	"chordkv/internal/chordnode"
	"chordkv/internal/membership"
	"chordkv/internal/peer"
	"chordkv/internal/ring"
	"chordkv/internal/store"
)

const (
	defaultPeerPort = 6000
	defaultHTTPPort = 5000
)

func main() {
	bindHost := flag.String("host", "127.0.0.1", "Bind host for both the peer and HTTP listeners")
	dataRoot := flag.String("data-dir", "/tmp/chordkv", "Root directory for this node's local store")
	m := flag.Uint("m", ringBits(), "Ring bit width; must be identical on every node in the fleet")
	peerPortFlag := flag.Int("peer-port", defaultPeerPort, "Peer protocol TCP port (seed mode only)")
	httpPortFlag := flag.Int("http-port", defaultHTTPPort, "HTTP API port (seed mode only)")
	flag.Parse()

	var (
		seedAddr string
		peerPort = *peerPortFlag
		httpPort = *httpPortFlag
		joining  bool
	)

	switch flag.NArg() {
	case 0:
		// Seed node: no join, defaults (or flag overrides) for both ports.
	case 3:
		seedAddr = flag.Arg(0)
		var err error
		if peerPort, err = strconv.Atoi(flag.Arg(1)); err != nil {
			log.Fatalf("FATAL: invalid peer_port %q: %v", flag.Arg(1), err)
		}
		if httpPort, err = strconv.Atoi(flag.Arg(2)); err != nil {
			log.Fatalf("FATAL: invalid http_port %q: %v", flag.Arg(2), err)
		}
		joining = true
	default:
		log.Fatalf("FATAL: expected 0 args (seed node) or 3 args (joining node: <seed_host:seed_port> <peer_port> <http_port>), got %d", flag.NArg())
	}

	if *m < 8 || *m > 64 {
		log.Fatalf("FATAL: -m must be in [8, 64], got %d", *m)
	}

	self := ring.NewNodeDescriptor(*bindHost, peerPort, *m)
	table := membership.New(self)
	transport := peer.NewClient()

	nodeDataDir := fmt.Sprintf("%s/bolt_%d", *dataRoot, peerPort)
	st, err := store.Open(nodeDataDir)
	if err != nil {
		log.Fatalf("FATAL: open store: %v", err)
	}
	defer st.Close()

	node := chordnode.New(self, *m, st, table, transport)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	peerSrv := peer.NewServer(node.Dispatch)
	peerErrs := make(chan error, 1)
	go func() {
		peerErrs <- peerSrv.Serve(ctx, *bindHost, peerPort)
	}()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(api.Logger(), api.Recovery())
	api.NewHandler(node).Register(router)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"node_id": self.ID,
			"status":  "ok",
			"nodes":   len(node.Table().Snapshot()),
		})
	})

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", *bindHost, httpPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("chordkvd: node_id=%d peer=%s:%d http=%s:%d m=%d",
			self.ID, *bindHost, peerPort, *bindHost, httpPort, *m)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("FATAL: http server: %v", err)
		}
	}()

	if joining {
		log.Printf("chordkvd: joining via seed %s", seedAddr)
		if err := node.Join(ctx, seedAddr); err != nil {
			log.Fatalf("FATAL: join failed: %v", err)
		}
		log.Printf("chordkvd: joined, table now has %d node(s)", len(node.Table().Snapshot()))
	} else {
		log.Printf("chordkvd: seed node, table has %d node(s)", len(node.Table().Snapshot()))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-peerErrs:
		if err != nil {
			log.Printf("chordkvd: peer server exited: %v", err)
		}
	}

	log.Printf("chordkvd: shutting down node_id=%d", self.ID)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("chordkvd: http shutdown error: %v", err)
	}
	cancel() // stop the peer accept loop
}

// ringBits reads CHORDKV_RING_BITS so the fleet-wide agreement spec §3
// requires can be set once in the environment instead of repeated on every
// node's command line. Falls back to ring.DefaultM if unset or invalid.
func ringBits() uint {
	v := os.Getenv("CHORDKV_RING_BITS")
	if v == "" {
		return ring.DefaultM
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		log.Printf("chordkvd: ignoring invalid CHORDKV_RING_BITS=%q: %v", v, err)
		return ring.DefaultM
	}
	return uint(n)
}
