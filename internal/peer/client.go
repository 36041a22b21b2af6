package peer

import (
	"context"
	"log"
	"net"
	"time"
)

// Retry/timeout parameters mandated by spec §4.4, matching the original
// Python ChordNode.send_request exactly: 3 attempts, a fixed 1-second
// sleep between them, and a 5-second timeout on each attempt's full
// exchange.
const (
	maxRetries     = 3
	retryDelay     = 1 * time.Second
	attemptTimeout = 5 * time.Second
)

// Client sends peer messages to other Chord nodes.
type Client struct {
	MaxMessageSize int
}

// NewClient creates a Client with the default maximum message size.
func NewClient() *Client {
	return &Client{MaxMessageSize: DefaultMaxMessageSize}
}

// Send delivers msg to addr and returns the peer's response.
//
// On transient connect/send/recv failure it tries again, making at most
// maxRetries attempts in all with retryDelay between them. After the final failure it
// returns a zero Message and a nil error — this is the recorded behavior
// spec §4.4 mandates ("After R failures returns an empty response"), not
// an oversight: callers must check Message.IsEmpty rather than treat
// exhaustion as a Go error.
func (c *Client) Send(ctx context.Context, addr string, msg Message) (Message, error) {
	maxSize := c.MaxMessageSize
	if maxSize == 0 {
		maxSize = DefaultMaxMessageSize
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return Message{}, nil
			}
		}

		resp, err := c.sendOnce(ctx, addr, msg, maxSize)
		if err == nil {
			return resp, nil
		}
		log.Printf("peer: send to %s failed (attempt %d/%d): %v", addr, attempt+1, maxRetries, err)
	}

	log.Printf("peer: send to %s failed after %d attempts, returning empty response", addr, maxRetries)
	return Message{}, nil
}

func (c *Client) sendOnce(ctx context.Context, addr string, msg Message, maxSize int) (Message, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(attemptCtx, "tcp", addr)
	if err != nil {
		return Message{}, err
	}
	defer conn.Close()

	if deadline, ok := attemptCtx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := writeFrame(conn, msg); err != nil {
		return Message{}, err
	}

	return readFrame(conn, maxSize)
}
