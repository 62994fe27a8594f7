// Package gitobject implements the four stored object kinds (commit, tree,
// blob, tag) and the packfile-specific type tags layered on top of them.
package gitobject

import "fmt"

// Kind is one of the four object kinds the store understands.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindCommit
	KindTree
	KindBlob
	KindTag
)

// String returns the on-wire/on-disk textual kind, e.g. "commit".
func (k Kind) String() string {
	switch k {
	case KindCommit:
		return "commit"
	case KindTree:
		return "tree"
	case KindBlob:
		return "blob"
	case KindTag:
		return "tag"
	default:
		return fmt.Sprintf("gitobject.Kind(%d)", uint8(k))
	}
}

// ParseKind maps the textual kind read from a loose object header back to
// a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "commit":
		return KindCommit, nil
	case "tree":
		return KindTree, nil
	case "blob":
		return KindBlob, nil
	case "tag":
		return KindTag, nil
	default:
		return KindInvalid, fmt.Errorf("gitobject: unknown kind %q", s)
	}
}

// PackedType is the 3-bit object type tag used in a packfile's per-object
// header. Types 1-4 map 1:1 onto Kind; 6 and 7 identify the two delta
// dialects and do not correspond to a stored Kind until resolved.
type PackedType uint8

const (
	PackedInvalid  PackedType = 0
	PackedCommit   PackedType = 1
	PackedTree     PackedType = 2
	PackedBlob     PackedType = 3
	PackedTag      PackedType = 4
	packedReserved PackedType = 5
	PackedOfsDelta PackedType = 6
	PackedRefDelta PackedType = 7
)

// Kind converts a non-delta packed type into the corresponding Kind. It
// returns KindInvalid for delta types and the reserved type 5.
func (t PackedType) Kind() Kind {
	switch t {
	case PackedCommit:
		return KindCommit
	case PackedTree:
		return KindTree
	case PackedBlob:
		return KindBlob
	case PackedTag:
		return KindTag
	default:
		return KindInvalid
	}
}

func (t PackedType) String() string {
	switch t {
	case PackedCommit:
		return "OBJ_COMMIT"
	case PackedTree:
		return "OBJ_TREE"
	case PackedBlob:
		return "OBJ_BLOB"
	case PackedTag:
		return "OBJ_TAG"
	case PackedOfsDelta:
		return "OBJ_OFS_DELTA"
	case PackedRefDelta:
		return "OBJ_REF_DELTA"
	default:
		return fmt.Sprintf("OBJ_UNKNOWN(%d)", uint8(t))
	}
}
