// Package checkout materializes a commit's tree into a working directory,
// walking down from the root tree and writing files and subdirectories.
package checkout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/sdawka/ggit/internal/githash"
	"github.com/sdawka/ggit/internal/gitobject"
	"github.com/sdawka/ggit/internal/log"
	"github.com/sdawka/ggit/objstore"
)

// concurrency bounds the number of blob writes running at once during a
// single checkout. Directory creation stays on the walking goroutine since
// a subtree's children depend on it existing first; leaf blob writes to
// distinct paths have no such ordering dependency.
const concurrency = 8

// ErrMissing is logged (not returned) when a tree or blob referenced
// during checkout is not present in the store; the entry is skipped and
// checkout continues with a partial result.
var ErrMissing = errors.New("checkout: referenced object missing from store")

// Checkout reads the commit with the given identity and writes its root
// tree's contents under destDir.
func Checkout(logger log.Logger, store *objstore.Store, commitID string, destDir string) error {
	if logger == nil {
		logger = log.Noop
	}

	id, err := githash.FromHex(commitID)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	kind, payload, err := store.Read(id)
	if err != nil {
		return fmt.Errorf("checkout: reading commit %s: %w", commitID, err)
	}
	if kind != gitobject.KindCommit {
		return fmt.Errorf("checkout: %s is a %s, not a commit", commitID, kind)
	}

	commit, err := gitobject.ParseCommit(payload)
	if err != nil {
		return fmt.Errorf("checkout: parsing commit %s: %w", commitID, err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("checkout: creating %s: %w", destDir, err)
	}

	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	walkTree(g, logger, store, commit.Tree.String(), destDir)
	return g.Wait()
}

// walkTree recursively materializes the tree with the given identity
// under dir. Individual missing or malformed entries are logged and
// skipped rather than aborting the whole checkout, per the best-effort
// completion policy. Subtrees are walked synchronously (a directory must
// exist before its children can be written into it); leaf blob writes are
// dispatched onto g, which bounds how many run concurrently.
func walkTree(g *errgroup.Group, logger log.Logger, store *objstore.Store, treeID string, dir string) {
	id, err := githash.FromHex(treeID)
	if err != nil {
		logger.Warn("checkout: invalid tree id, skipping", "id", treeID, "error", err)
		return
	}

	kind, payload, err := store.Read(id)
	if err != nil {
		logger.Warn("checkout: tree missing, skipping", "id", treeID, "error", ErrMissing)
		return
	}
	if kind != gitobject.KindTree {
		logger.Warn("checkout: expected tree, got different kind, skipping", "id", treeID, "kind", kind.String())
		return
	}

	tree, err := gitobject.ParseTree(payload)
	if err != nil {
		logger.Warn("checkout: malformed tree, skipping", "id", treeID, "error", err)
		return
	}

	for _, entry := range tree.Entries {
		entryPath := filepath.Join(dir, entry.Name)

		switch entry.Mode {
		case gitobject.ModeTree:
			if err := os.MkdirAll(entryPath, 0o755); err != nil {
				logger.Warn("checkout: creating subdirectory, skipping", "path", entryPath, "error", err)
				continue
			}
			walkTree(g, logger, store, entry.ID.String(), entryPath)

		case gitobject.ModeFile, gitobject.ModeExecutable, gitobject.ModeSymlink:
			entry, entryPath := entry, entryPath
			g.Go(func() error {
				writeBlob(logger, store, entry, entryPath)
				return nil // per-entry failures are logged, not fatal to the checkout
			})

		default:
			logger.Warn("checkout: unknown entry mode, skipping", "path", entryPath, "mode", string(entry.Mode))
		}
	}
}

func writeBlob(logger log.Logger, store *objstore.Store, entry gitobject.TreeEntry, path string) {
	kind, payload, err := store.Read(entry.ID)
	if err != nil {
		logger.Warn("checkout: blob missing, skipping", "path", path, "id", entry.ID.String(), "error", ErrMissing)
		return
	}
	if kind != gitobject.KindBlob {
		logger.Warn("checkout: expected blob, got different kind, skipping", "path", path, "kind", kind.String())
		return
	}

	// mode 120000 (symlink) is materialized as a regular file containing
	// the link target bytes; no symlink is created, to avoid
	// cross-platform link-creation issues.
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		logger.Warn("checkout: writing file, skipping", "path", path, "error", err)
		return
	}

	perm, ok := entry.Mode.Perm()
	if !ok {
		return
	}
	if err := os.Chmod(path, os.FileMode(perm)); err != nil {
		logger.Warn("checkout: chmod failed", "path", path, "error", err)
	}
}
