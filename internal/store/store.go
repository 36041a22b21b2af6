// Package store is the local-storage bridge: a thin, serializable adapter
// over an embedded ordered key-value engine.
//
// Big idea:
//
// Each Chord node owns exactly one store, rooted at a directory derived
// from its peer port. The store is the only component in this system that
// touches disk directly; everything above it (the dispatch layer, the
// HTTP front door) only ever calls Put/Get/Delete/Close.
//
// The engine underneath is bbolt, an embedded B+tree that commits every
// write in its own ACID transaction. That durability guarantee is why
// this package carries no WAL or snapshot logic of its own — layering a
// second write-ahead log on top of an engine that already is one would
// just restate "durable on return" twice.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.etcd.io/bbolt"
)

// ErrClosed is returned by any operation attempted after Close.
var ErrClosed = errors.New("store: closed")

var bucketName = []byte("kv")

// Store is the embedded key-value engine for one node. It is safe for
// concurrent use: bbolt serializes writers and allows concurrent readers
// internally, so Store itself only needs to guard its own open/closed
// lifecycle.
type Store struct {
	mu     sync.RWMutex
	db     *bbolt.DB
	closed bool
}

// Open creates or opens the store rooted at dataDir (created if missing),
// e.g. "<root>/bolt_<peerPort>/".
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dataDir, "data.db"), 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Put stores key=value, overwriting any existing value. Durable on
// return: bbolt fsyncs the transaction before Update returns nil.
func (s *Store) Put(key, value []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, value)
	})
	if err != nil {
		return fmt.Errorf("store: put: %w", err)
	}
	return nil
}

// Get returns the stored value for key, or ok=false if the key is absent.
func (s *Store) Get(key []byte) (value []byte, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}

	err = s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get(key)
		if v != nil {
			// bbolt's returned slice is only valid for the lifetime of the
			// transaction; copy it out before View returns.
			value = append([]byte(nil), v...)
			ok = true
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("store: get: %w", err)
	}
	return value, ok, nil
}

// Delete removes key. Deleting an absent key is not an error — idempotent
// by construction, since bbolt's bucket Delete is a no-op on a missing key.
func (s *Store) Delete(key []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete(key)
	})
	if err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	return nil
}

// Close releases the underlying bbolt file. Further calls to Put/Get/
// Delete fail with ErrClosed; Close itself is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
