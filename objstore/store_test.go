package objstore_test

import (
	"path/filepath"
	"testing"

	"github.com/sdawka/ggit/internal/githash"
	"github.com/sdawka/ggit/internal/gitobject"
	"github.com/sdawka/ggit/objstore"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *objstore.Store {
	t.Helper()
	dir := filepath.Join(t.TempDir(), ".git")
	require.NoError(t, objstore.Init(dir))
	return objstore.Open(dir)
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := newStore(t)
	payload := []byte("hello world\n")

	id, err := s.Write(gitobject.KindBlob, payload)
	require.NoError(t, err)
	require.Equal(t, "3b18e512dba79e4c8300dd08aeb37f8e728b8dad", id.String())

	kind, got, err := s.Read(id)
	require.NoError(t, err)
	require.Equal(t, gitobject.KindBlob, kind)
	require.Equal(t, payload, got)
}

func TestWriteIsIdempotent(t *testing.T) {
	s := newStore(t)
	payload := []byte("some content")

	id1, err := s.Write(gitobject.KindBlob, payload)
	require.NoError(t, err)
	id2, err := s.Write(gitobject.KindBlob, payload)
	require.NoError(t, err)
	require.Equal(t, id1, id2)

	_, got, err := s.Read(id1)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestReadNotFound(t *testing.T) {
	s := newStore(t)
	var zero githash.ID
	_, _, err := s.Read(zero)
	require.ErrorIs(t, err, objstore.ErrNotFound)
}
