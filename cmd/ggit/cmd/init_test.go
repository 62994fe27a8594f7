package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sdawka/ggit/cmd/ggit/cmd"
)

// chdir switches to dir for the duration of the test and restores the
// original working directory on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

// runGgit invokes the shared root command with args and returns its
// combined stdout/stderr output. The command and its flag variables are
// shared, so a flag set by one call stays set for later calls.
func runGgit(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := cmd.RootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestInitCreatesRepoLayout(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := runGgit(t, "init")
	require.NoError(t, err)
	require.Contains(t, out, "Initialized empty Git repository")

	require.DirExists(t, filepath.Join(".git", "objects"))
	require.DirExists(t, filepath.Join(".git", "refs"))

	head, err := os.ReadFile(filepath.Join(".git", "HEAD"))
	require.NoError(t, err)
	require.Equal(t, "ref: refs/heads/main\n", string(head))
}
