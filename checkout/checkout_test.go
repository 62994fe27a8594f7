package checkout_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sdawka/ggit/checkout"
	"github.com/sdawka/ggit/internal/githash"
	"github.com/sdawka/ggit/internal/gitobject"
	"github.com/sdawka/ggit/internal/log"
	"github.com/sdawka/ggit/objstore"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *objstore.Store {
	t.Helper()
	dir := filepath.Join(t.TempDir(), ".git")
	require.NoError(t, objstore.Init(dir))
	return objstore.Open(dir)
}

func TestCheckoutWritesTreeContents(t *testing.T) {
	s := newStore(t)

	readmeID, err := s.Write(gitobject.KindBlob, []byte("hi\n"))
	require.NoError(t, err)

	nestedID, err := s.Write(gitobject.KindBlob, []byte("nested\n"))
	require.NoError(t, err)

	subTree := &gitobject.Tree{}
	subTree.Add(gitobject.TreeEntry{Mode: gitobject.ModeFile, Name: "inner.txt", ID: nestedID})
	subTreeID, err := s.Write(gitobject.KindTree, subTree.Marshal())
	require.NoError(t, err)

	root := &gitobject.Tree{}
	root.Add(gitobject.TreeEntry{Mode: gitobject.ModeFile, Name: "README", ID: readmeID})
	root.Add(gitobject.TreeEntry{Mode: gitobject.ModeTree, Name: "sub", ID: subTreeID})
	rootID, err := s.Write(gitobject.KindTree, root.Marshal())
	require.NoError(t, err)

	commit := &gitobject.Commit{
		Tree:      rootID,
		Author:    gitobject.Identity{Name: "a", Email: "a@example.com", Timestamp: 1, Timezone: "+0000"},
		Committer: gitobject.Identity{Name: "a", Email: "a@example.com", Timestamp: 1, Timezone: "+0000"},
		Message:   "initial\n",
	}
	commitID, err := s.Write(gitobject.KindCommit, commit.Marshal())
	require.NoError(t, err)

	dest := t.TempDir()
	err = checkout.Checkout(log.Noop, s, commitID.String(), dest)
	require.NoError(t, err)

	readme, err := os.ReadFile(filepath.Join(dest, "README"))
	require.NoError(t, err)
	require.Equal(t, "hi\n", string(readme))

	nested, err := os.ReadFile(filepath.Join(dest, "sub", "inner.txt"))
	require.NoError(t, err)
	require.Equal(t, "nested\n", string(nested))
}

func TestCheckoutRejectsNonCommit(t *testing.T) {
	s := newStore(t)
	id, err := s.Write(gitobject.KindBlob, []byte("not a commit"))
	require.NoError(t, err)

	err = checkout.Checkout(log.Noop, s, id.String(), t.TempDir())
	require.Error(t, err)
}

func TestCheckoutSkipsMissingBlobAndContinues(t *testing.T) {
	s := newStore(t)

	presentID, err := s.Write(gitobject.KindBlob, []byte("present\n"))
	require.NoError(t, err)

	root := &gitobject.Tree{}
	root.Add(gitobject.TreeEntry{Mode: gitobject.ModeFile, Name: "present.txt", ID: presentID})
	// missing.txt references an id never written to the store.
	var missing githash.ID
	missing[0] = 0xAB
	root.Add(gitobject.TreeEntry{Mode: gitobject.ModeFile, Name: "missing.txt", ID: missing})
	rootID, err := s.Write(gitobject.KindTree, root.Marshal())
	require.NoError(t, err)

	commit := &gitobject.Commit{
		Tree:      rootID,
		Author:    gitobject.Identity{Name: "a", Email: "a@example.com", Timestamp: 1, Timezone: "+0000"},
		Committer: gitobject.Identity{Name: "a", Email: "a@example.com", Timestamp: 1, Timezone: "+0000"},
		Message:   "initial\n",
	}
	commitID, err := s.Write(gitobject.KindCommit, commit.Marshal())
	require.NoError(t, err)

	dest := t.TempDir()
	err = checkout.Checkout(log.Noop, s, commitID.String(), dest)
	require.NoError(t, err)

	present, err := os.ReadFile(filepath.Join(dest, "present.txt"))
	require.NoError(t, err)
	require.Equal(t, "present\n", string(present))

	_, err = os.Stat(filepath.Join(dest, "missing.txt"))
	require.True(t, os.IsNotExist(err))
}
