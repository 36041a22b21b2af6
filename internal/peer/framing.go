package peer

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// DefaultMaxMessageSize bounds a single framed message. The spec requires
// this be configurable and recommends at least 64 KiB; the teacher's
// Python ancestor used a fixed 1 KiB recv buffer with no bound at all.
const DefaultMaxMessageSize = 64 * 1024

const lengthPrefixSize = 4

// writeFrame writes a 4-byte big-endian length prefix followed by the
// JSON-encoded msg.
func writeFrame(w io.Writer, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("peer: marshal message: %w", err)
	}

	var header [lengthPrefixSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(data)))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("peer: write length prefix: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("peer: write payload: %w", err)
	}
	return nil
}

// readFrame reads one length-prefixed JSON message, rejecting frames
// larger than maxSize before allocating a buffer for them.
func readFrame(r io.Reader, maxSize int) (Message, error) {
	var header [lengthPrefixSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Message{}, fmt.Errorf("peer: read length prefix: %w", err)
	}

	size := binary.BigEndian.Uint32(header[:])
	if int(size) > maxSize {
		return Message{}, fmt.Errorf("peer: frame of %d bytes exceeds max size %d", size, maxSize)
	}
	if size == 0 {
		return Message{}, nil
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Message{}, fmt.Errorf("peer: read payload: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(buf, &msg); err != nil {
		return Message{}, fmt.Errorf("peer: unmarshal message: %w", ErrProtocol{Err: err})
	}
	return msg, nil
}

// ErrProtocol wraps a malformed-message error so callers can distinguish
// protocol violations (spec error kind 4) from transport failures.
type ErrProtocol struct{ Err error }

func (e ErrProtocol) Error() string { return e.Err.Error() }

func (e ErrProtocol) Unwrap() error { return e.Err }
