package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdawka/ggit/internal/githash"
	"github.com/sdawka/ggit/internal/gitobject"
	"github.com/sdawka/ggit/objstore"
)

var (
	hashObjectWrite bool
	hashObjectType  string
)

var hashObjectCmd = &cobra.Command{
	Use:   "hash-object <file>",
	Short: "Compute an object's identity and optionally store it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := gitobject.ParseKind(hashObjectType)
		if err != nil {
			return err
		}

		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		var id githash.ID
		if hashObjectWrite {
			store := objstore.Open(".git")
			id, err = store.Write(kind, content)
			if err != nil {
				return err
			}
		} else {
			id = gitobject.Sum(kind, content)
		}

		fmt.Fprintln(cmd.OutOrStdout(), id.String())
		return nil
	},
}

func init() {
	hashObjectCmd.Flags().BoolVarP(&hashObjectWrite, "write", "w", false, "write the object into the store")
	hashObjectCmd.Flags().StringVarP(&hashObjectType, "type", "t", "blob", "object type (blob, tree, commit, tag)")
}
