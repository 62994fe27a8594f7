package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sdawka/ggit/objstore"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Create an empty repository: .git/objects, .git/refs, and HEAD",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		gitDir := filepath.Join(dir, ".git")

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		if err := objstore.Init(gitDir); err != nil {
			return err
		}

		headPath := filepath.Join(gitDir, "HEAD")
		if _, err := os.Stat(headPath); os.IsNotExist(err) {
			if err := os.WriteFile(headPath, []byte("ref: refs/heads/main\n"), 0o644); err != nil {
				return fmt.Errorf("writing HEAD: %w", err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty Git repository in %s\n", gitDir)
		return nil
	},
}
