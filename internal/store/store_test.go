package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Put([]byte("alpha"), []byte("1")))

	v, ok, err := s.Get([]byte("alpha"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("1"), v)
}

func TestPutOverwrite(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Put([]byte("k"), []byte("v1")))
	require.NoError(t, s.Put([]byte("k"), []byte("v2")))

	v, ok, err := s.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v2"), v)
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.Get([]byte("nope"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteThenGetNotFound(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Put([]byte("k"), []byte("v")))
	require.NoError(t, s.Delete([]byte("k")))

	_, ok, err := s.Get([]byte("k"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteIdempotent(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Delete([]byte("never-existed")))
	require.NoError(t, s.Delete([]byte("never-existed")))
}

func TestClosedStoreRejectsOperations(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, _, err = s.Get([]byte("k"))
	require.ErrorIs(t, err, ErrClosed)

	err = s.Put([]byte("k"), []byte("v"))
	require.ErrorIs(t, err, ErrClosed)

	err = s.Delete([]byte("k"))
	require.ErrorIs(t, err, ErrClosed)
}

func TestCloseIsIdempotent(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
