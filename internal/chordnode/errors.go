package chordnode

import "errors"

// Error kinds returned by Dispatch and route. The wire protocol only
// carries error strings (err.Error()), but callers within this package
// and its tests compare against these sentinels directly.
var (
	ErrNotFound         = errors.New("chordnode: key not found")
	ErrForwardingFailed = errors.New("chordnode: forwarding to owner failed")
	ErrConfiguration    = errors.New("chordnode: configuration error")
)
