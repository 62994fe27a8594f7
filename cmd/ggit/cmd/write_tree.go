package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sdawka/ggit/internal/githash"
	"github.com/sdawka/ggit/internal/gitobject"
	"github.com/sdawka/ggit/objstore"
)

var writeTreeCmd = &cobra.Command{
	Use:   "write-tree",
	Short: "Create a tree object from the current working directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := objstore.Open(".git")
		id, err := buildTree(store, ".")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id.String())
		return nil
	},
}

// buildTree writes a tree object for dir's immediate children, recursing
// into subdirectories first so every child identity is known before the
// parent tree is assembled. The ".git" directory is never included.
func buildTree(store *objstore.Store, dir string) (githash.ID, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return githash.Zero, fmt.Errorf("write-tree: reading %s: %w", dir, err)
	}

	tree := &gitobject.Tree{}
	for _, entry := range entries {
		if entry.Name() == ".git" {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			childID, err := buildTree(store, path)
			if err != nil {
				return githash.Zero, err
			}
			tree.Add(gitobject.TreeEntry{Mode: gitobject.ModeTree, Name: entry.Name(), ID: childID})
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return githash.Zero, fmt.Errorf("write-tree: stat %s: %w", path, err)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return githash.Zero, fmt.Errorf("write-tree: reading %s: %w", path, err)
		}
		blobID, err := store.Write(gitobject.KindBlob, content)
		if err != nil {
			return githash.Zero, fmt.Errorf("write-tree: writing blob for %s: %w", path, err)
		}
		mode := gitobject.ModeFile
		if info.Mode()&0o111 != 0 {
			mode = gitobject.ModeExecutable
		}
		tree.Add(gitobject.TreeEntry{Mode: mode, Name: entry.Name(), ID: blobID})
	}

	return store.Write(gitobject.KindTree, tree.Marshal())
}
