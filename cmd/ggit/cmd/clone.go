package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sdawka/ggit/clone"
	"github.com/sdawka/ggit/cmd/ggit/internal/output"
	"github.com/sdawka/ggit/internal/log"
)

var cloneCmd = &cobra.Command{
	Use:   "clone <url> [<dir>]",
	Short: "Clone a repository over the smart-HTTP transport",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := args[0]
		dest := ""
		if len(args) == 2 {
			dest = args[1]
		}

		result, err := clone.Clone(cmd.Context(), log.FromContext(cmd.Context()), url, dest)
		if err != nil {
			return err
		}
		output.FormatCloneResult(result)
		return nil
	},
}
