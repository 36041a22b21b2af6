package peer

import (
	"context"
	"fmt"
	"log"
	"net"
)

// Handler dispatches one inbound Message and returns the response to
// write back. A Handler that wants the "no response expected" behavior
// spec §4.5 describes for update_nodes should return the zero Message;
// Server still frames and sends it (as the JSON object {}) so the caller's
// read unblocks promptly instead of depending on connection-close timing.
type Handler func(ctx context.Context, msg Message) Message

// Server accepts peer connections and dispatches each to a Handler.
type Server struct {
	MaxMessageSize int
	Handler        Handler
}

// NewServer creates a Server bound to handler with the default maximum
// message size.
func NewServer(handler Handler) *Server {
	return &Server{MaxMessageSize: DefaultMaxMessageSize, Handler: handler}
}

// Serve binds bindHost:bindPort and accepts connections until ctx is
// cancelled or listening fails. Each accepted connection is handled in
// its own goroutine; a handler fault is logged and answered with a
// best-effort error message, never terminating the accept loop, matching
// spec §4.4's accept_loop contract.
func (s *Server) Serve(ctx context.Context, bindHost string, bindPort int) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", bindHost, bindPort))
	if err != nil {
		return fmt.Errorf("peer: listen: %w", err)
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	log.Printf("peer: listening on %s", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("peer: accept: %w", err)
			}
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	maxSize := s.MaxMessageSize
	if maxSize == 0 {
		maxSize = DefaultMaxMessageSize
	}

	req, err := readFrame(conn, maxSize)
	if err != nil {
		log.Printf("peer: malformed request from %s: %v", conn.RemoteAddr(), err)
		_ = writeFrame(conn, Message{Status: "error", Message: "malformed request"})
		return
	}

	resp := s.dispatchSafely(ctx, req)

	if err := writeFrame(conn, resp); err != nil {
		log.Printf("peer: write response to %s: %v", conn.RemoteAddr(), err)
	}
}

// dispatchSafely recovers from a panicking handler so one bad request
// never takes down the accept loop.
func (s *Server) dispatchSafely(ctx context.Context, req Message) (resp Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("peer: handler panic: %v", r)
			resp = Message{Status: "error", Message: "internal error"}
		}
	}()
	return s.Handler(ctx, req)
}
