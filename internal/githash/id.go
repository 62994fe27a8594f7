// Package githash implements the object identity used throughout the
// store and wire protocol: the 20-byte SHA-1 of an object's framed form,
// rendered as 40 lowercase hex characters on disk and on the wire.
package githash

import (
	"crypto/sha1" //nolint:gosec // identity hash is SHA-1 by wire format, not for security
	"encoding/hex"
	"errors"
)

// Size is the length in bytes of an ID.
const Size = sha1.Size

// ErrInvalidLength is returned when a hex string does not decode to
// exactly Size bytes.
var ErrInvalidLength = errors.New("githash: invalid identity length")

// ID is the 20-byte raw form of a 40-hex object identity.
type ID [Size]byte

// Zero is the all-zero identity, used as a "not present" sentinel.
var Zero ID

// Sum computes the identity of a framed object: SHA1("<kind> <len>\0" || payload).
func Sum(framed []byte) ID {
	return ID(sha1.Sum(framed)) //nolint:gosec
}

// FromHex parses a 40-character lowercase hex identity.
func FromHex(s string) (ID, error) {
	var id ID
	if len(s) != Size*2 {
		return id, ErrInvalidLength
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	copy(id[:], b)
	return id, nil
}

// MustFromHex is like FromHex but panics on error. Intended for tests and
// other contexts where the hex string is known to be valid.
func MustFromHex(s string) ID {
	id, err := FromHex(s)
	if err != nil {
		panic(err)
	}
	return id
}

// FromBytes copies 20 raw bytes into an ID.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != Size {
		return id, ErrInvalidLength
	}
	copy(id[:], b)
	return id, nil
}

// String renders the identity as 40 lowercase hex characters.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether id is the all-zero identity.
func (id ID) IsZero() bool {
	return id == Zero
}
