// Package ring implements the Chord identifier space: deterministic
// placement of keys and node addresses on a modular ring.
//
// Big idea:
//
// Every key and every node gets mapped onto a single integer ring of size
// 2^m. A key is owned by the first node whose identifier is reached when
// walking the ring clockwise from the key's own position. This file
// implements only the hash function; node placement and successor lookup
// live in node.go and the membership package respectively.
package ring

import (
	"crypto/sha256"
	"encoding/binary"
)

// DefaultM is the ring's bit width used when a node is started without an
// explicit override. Every node in a cluster must agree on the same value;
// there is no handshake that verifies this, so mismatches are an
// operator error rather than something the protocol can detect.
const DefaultM = 16

// ID is a position on the Chord ring, always in [0, 2^M).
type ID uint64

// HashID reduces data to a ring position in [0, 2^m). It is deterministic:
// equal inputs and equal m always produce equal outputs, on any node,
// in any process.
//
// The reference implementation computes int(sha256(key).hexdigest(), 16) %
// 2**m — the full 256-bit digest reduced mod 2^m. Reducing a big-endian
// integer mod 2^m keeps only its low m bits, which for m<=64 live entirely
// in the digest's trailing 8 bytes, so that's the slice read here. This
// must stay bit-for-bit identical to the reference for any m in [1,64];
// reading the leading 8 bytes instead would silently produce a different
// ring altogether.
func HashID(data []byte, m uint) ID {
	sum := sha256.Sum256(data)
	v := binary.BigEndian.Uint64(sum[24:32])
	if m >= 64 {
		return ID(v)
	}
	return ID(v & (uint64(1)<<m - 1))
}
