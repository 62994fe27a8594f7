package gitobject

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sdawka/ggit/internal/githash"
)

// TreeMode is the short ASCII numeric mode recorded for a tree entry.
type TreeMode string

const (
	ModeTree       TreeMode = "40000"
	ModeFile       TreeMode = "100644"
	ModeExecutable TreeMode = "100755"
	ModeSymlink    TreeMode = "120000"
)

// TreeEntry is one (mode, name, child identity) triple.
type TreeEntry struct {
	Mode TreeMode
	Name string
	ID   githash.ID
}

// Tree is an ordered set of entries. Entries are kept sorted bytewise by
// name, with subtrees compared as if their name had a trailing slash, per
// Git's tree-entry ordering rule.
type Tree struct {
	Entries []TreeEntry
}

// sortKey returns the name used for ordering comparisons.
func sortKey(e TreeEntry) string {
	if e.Mode == ModeTree {
		return e.Name + "/"
	}
	return e.Name
}

// Add appends an entry and restores sorted order.
func (t *Tree) Add(e TreeEntry) {
	t.Entries = append(t.Entries, e)
	sort.Slice(t.Entries, func(i, j int) bool {
		return sortKey(t.Entries[i]) < sortKey(t.Entries[j])
	})
}

// Marshal encodes the tree into its canonical payload:
// "<mode> <name>\0<20 raw id bytes>" per entry, concatenated in name order.
func (t *Tree) Marshal() []byte {
	buf := new(bytes.Buffer)
	for _, e := range t.Entries {
		fmt.Fprintf(buf, "%s %s\x00", e.Mode, e.Name)
		buf.Write(e.ID[:])
	}
	return buf.Bytes()
}

// ParseTree decodes a tree payload into a Tree.
func ParseTree(payload []byte) (*Tree, error) {
	t := &Tree{}
	r := bytes.NewReader(payload)
	for r.Len() > 0 {
		modeStr, err := readUntil(r, ' ')
		if err != nil {
			return nil, fmt.Errorf("gitobject: reading tree entry mode: %w", err)
		}
		if strings.ContainsAny(modeStr, "/\x00") {
			return nil, fmt.Errorf("gitobject: invalid tree entry mode %q", modeStr)
		}
		name, err := readUntil(r, 0)
		if err != nil {
			return nil, fmt.Errorf("gitobject: reading tree entry name: %w", err)
		}
		if strings.ContainsAny(name, "/\x00") {
			return nil, fmt.Errorf("gitobject: invalid tree entry name %q", name)
		}

		var raw [githash.Size]byte
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return nil, fmt.Errorf("gitobject: reading tree entry id: %w", err)
		}

		t.Entries = append(t.Entries, TreeEntry{
			Mode: TreeMode(modeStr),
			Name: name,
			ID:   githash.ID(raw),
		})
	}
	return t, nil
}

func readUntil(r *bytes.Reader, delim byte) (string, error) {
	var sb strings.Builder
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == delim {
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
}

// ParseMode returns the tree mode for a working-tree entry, given whether
// it is a directory and whether it is executable.
func ParseMode(isDir, isExecutable bool) TreeMode {
	switch {
	case isDir:
		return ModeTree
	case isExecutable:
		return ModeExecutable
	default:
		return ModeFile
	}
}

// Perm returns the Unix permission bits a mode should be written to disk
// with during checkout.
func (m TreeMode) Perm() (uint32, bool) {
	switch m {
	case ModeFile, ModeSymlink:
		return 0o644, true
	case ModeExecutable:
		return 0o755, true
	default:
		return 0, false
	}
}
