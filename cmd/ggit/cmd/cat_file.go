package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sdawka/ggit/internal/githash"
	"github.com/sdawka/ggit/internal/gitobject"
	"github.com/sdawka/ggit/objstore"
)

var (
	catFileType   bool
	catFileSize   bool
	catFilePretty bool
)

var catFileCmd = &cobra.Command{
	Use:   "cat-file (-t|-s|-p) <object>",
	Short: "Show the type, size, or content of a stored object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		selected := 0
		for _, set := range []bool{catFileType, catFileSize, catFilePretty} {
			if set {
				selected++
			}
		}
		if selected != 1 {
			return errors.New("cat-file: exactly one of -t, -s, -p is required")
		}

		id, err := githash.FromHex(args[0])
		if err != nil {
			return fmt.Errorf("cat-file: %w", err)
		}

		store := objstore.Open(".git")
		kind, payload, err := store.Read(id)
		if err != nil {
			return fmt.Errorf("cat-file: %w", err)
		}

		out := cmd.OutOrStdout()
		switch {
		case catFileType:
			fmt.Fprintln(out, kind.String())
		case catFileSize:
			fmt.Fprintln(out, len(payload))
		case catFilePretty:
			return prettyPrint(out, kind, payload)
		}
		return nil
	},
}

func prettyPrint(out io.Writer, kind gitobject.Kind, payload []byte) error {
	switch kind {
	case gitobject.KindBlob, gitobject.KindCommit, gitobject.KindTag:
		_, err := out.Write(payload)
		return err
	case gitobject.KindTree:
		tree, err := gitobject.ParseTree(payload)
		if err != nil {
			return fmt.Errorf("cat-file: %w", err)
		}
		for _, e := range tree.Entries {
			childKind := gitobject.KindBlob
			if e.Mode == gitobject.ModeTree {
				childKind = gitobject.KindTree
			}
			fmt.Fprintf(out, "%s %s %s\t%s\n", e.Mode, childKind, e.ID.String(), e.Name)
		}
		return nil
	default:
		return fmt.Errorf("cat-file: unsupported kind %s", kind)
	}
}

func init() {
	catFileCmd.Flags().BoolVarP(&catFileType, "type", "t", false, "show the object type")
	catFileCmd.Flags().BoolVarP(&catFileSize, "size", "s", false, "show the object size")
	catFileCmd.Flags().BoolVarP(&catFilePretty, "print", "p", false, "pretty-print the object content")
}
