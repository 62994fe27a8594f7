// Package output renders CLI results as colorized, human-readable text.
package output

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/sdawka/ggit/clone"
)

var (
	success = color.New(color.FgGreen)
	info    = color.New(color.FgCyan)
	dim     = color.New(color.Faint)
)

// FormatCloneResult prints a clone.Result the way `git clone` itself does:
// a short success line plus the resolved commit and branch.
func FormatCloneResult(result *clone.Result) {
	success.Printf("Cloned into %s\n", result.Dest)
	fmt.Printf("  commit: %s\n", dim.Sprint(result.CommitID.String()))
	if result.HeadRef != "" {
		fmt.Printf("  branch: %s\n", info.Sprint(result.HeadRef))
	}
	fmt.Printf("  objects: %d\n", len(result.PackStats.Written))
	if !result.PackStats.ChecksumOK {
		color.Yellow("  warning: packfile trailer checksum did not match")
	}
}
