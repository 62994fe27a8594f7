package gitobject

import (
	"bytes"
	"fmt"

	"github.com/sdawka/ggit/internal/githash"
)

// Frame prepends the object header "<kind> <len>\0" to payload, producing
// the exact byte sequence whose SHA-1 is the object's identity.
func Frame(kind Kind, payload []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", kind, len(payload))
	framed := make([]byte, 0, len(header)+len(payload))
	framed = append(framed, header...)
	framed = append(framed, payload...)
	return framed
}

// Sum returns the identity of (kind, payload).
func Sum(kind Kind, payload []byte) githash.ID {
	return githash.Sum(Frame(kind, payload))
}

// SplitFrame parses a framed object back into its kind and payload,
// validating that the declared length matches the actual payload length.
// It is the inverse of Frame.
func SplitFrame(framed []byte) (Kind, []byte, error) {
	nul := bytes.IndexByte(framed, 0)
	if nul < 0 {
		return KindInvalid, nil, fmt.Errorf("gitobject: malformed header, no NUL terminator")
	}
	header := framed[:nul]
	payload := framed[nul+1:]

	sp := bytes.IndexByte(header, ' ')
	if sp < 0 {
		return KindInvalid, nil, fmt.Errorf("gitobject: malformed header %q", header)
	}
	kind, err := ParseKind(string(header[:sp]))
	if err != nil {
		return KindInvalid, nil, err
	}

	var declared int
	if _, err := fmt.Sscanf(string(header[sp+1:]), "%d", &declared); err != nil {
		return KindInvalid, nil, fmt.Errorf("gitobject: malformed length %q: %w", header[sp+1:], err)
	}
	if declared != len(payload) {
		return KindInvalid, nil, fmt.Errorf("gitobject: declared length %d does not match payload length %d", declared, len(payload))
	}
	return kind, payload, nil
}
