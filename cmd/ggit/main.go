// Command ggit is a thin CLI over the clone pipeline and the plumbing
// commands the object store consumes: init, hash-object, cat-file,
// write-tree, and commit-tree.
package main

import (
	"fmt"
	"os"

	"github.com/sdawka/ggit/cmd/ggit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
