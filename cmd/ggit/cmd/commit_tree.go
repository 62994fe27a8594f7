package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdawka/ggit/internal/githash"
	"github.com/sdawka/ggit/internal/gitobject"
	"github.com/sdawka/ggit/objstore"
)

var (
	commitTreeParents []string
	commitTreeMessage string
)

var commitTreeCmd = &cobra.Command{
	Use:   "commit-tree <tree>",
	Short: "Create a commit object from a tree and zero or more parents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if commitTreeMessage == "" {
			return fmt.Errorf("commit-tree: -m <message> is required")
		}

		treeID, err := githash.FromHex(args[0])
		if err != nil {
			return fmt.Errorf("commit-tree: %w", err)
		}

		parents := make([]githash.ID, len(commitTreeParents))
		for i, p := range commitTreeParents {
			id, err := githash.FromHex(p)
			if err != nil {
				return fmt.Errorf("commit-tree: parent %q: %w", p, err)
			}
			parents[i] = id
		}

		author := gitobject.Identity{
			Name:      "ggit",
			Email:     "ggit@localhost",
			Timestamp: time.Now().Unix(),
			Timezone:  "+0000",
		}
		commit := &gitobject.Commit{
			Tree:      treeID,
			Parents:   parents,
			Author:    author,
			Committer: author,
			Message:   commitTreeMessage + "\n",
		}

		store := objstore.Open(".git")
		id, err := store.Write(gitobject.KindCommit, commit.Marshal())
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), id.String())
		return nil
	},
}

func init() {
	commitTreeCmd.Flags().StringArrayVarP(&commitTreeParents, "parent", "p", nil, "parent commit id (may be repeated)")
	commitTreeCmd.Flags().StringVarP(&commitTreeMessage, "message", "m", "", "commit message")
}
