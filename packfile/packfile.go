// Package packfile decodes the packfile format a smart-HTTP upload-pack
// response carries: a 4-byte "PACK" signature, a version, an object
// count, that many variable-length-headed zlib-compressed objects, and a
// trailing whole-stream SHA-1 checksum. REF_DELTA objects are resolved
// against the object store they are being decoded into; OFS_DELTA objects
// are a declared gap and are skipped after their compressed bytes are
// consumed.
package packfile

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // wire-format checksum, not a security boundary
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/sdawka/ggit/internal/githash"
	"github.com/sdawka/ggit/internal/gitobject"
	"github.com/sdawka/ggit/internal/log"
	"github.com/sdawka/ggit/objstore"
)

// ErrProtocol covers malformed framing the decoder cannot recover from:
// a pack too short to hold its header and trailer, a truncated object
// header, or an unknown object type tag. An object count larger than the
// available bytes is not an error: it is logged and decoding stops early.
var ErrProtocol = errors.New("packfile: protocol error")

// ErrBaseMissing is logged (not returned) when a REF_DELTA's base is not
// present in the store at the moment of resolution.
var ErrBaseMissing = errors.New("packfile: delta base missing from store")

// ErrUnsupportedObject is logged (not returned) when an OFS_DELTA object
// is encountered; this decoder does not resolve offset deltas.
var ErrUnsupportedObject = errors.New("packfile: unsupported object type (OFS_DELTA)")

const signature = "PACK"
const trailerSize = sha1.Size

// Result is the outcome of decoding one packfile.
type Result struct {
	// Written holds the identities of every object newly persisted to
	// the store, in the order they were written.
	Written []githash.ID
	// ChecksumOK reports whether the trailing SHA-1 matched the
	// decoded prefix. A mismatch is a warning, not a fatal error.
	ChecksumOK bool
}

// Decode parses pack (the full byte sequence, trailer included) and
// writes every non-delta and resolvable REF_DELTA object into store.
func Decode(logger log.Logger, store *objstore.Store, pack []byte) (*Result, error) {
	if logger == nil {
		logger = log.Noop
	}
	if len(pack) < 12+trailerSize {
		return nil, fmt.Errorf("%w: pack too short (%d bytes)", ErrProtocol, len(pack))
	}

	if string(pack[0:4]) != signature {
		logger.Warn("packfile: missing PACK signature, continuing anyway", "got", string(pack[0:4]))
	}
	version := binary.BigEndian.Uint32(pack[4:8])
	if version != 2 {
		logger.Warn("packfile: unexpected version, continuing anyway", "version", version)
	}
	count := binary.BigEndian.Uint32(pack[8:12])

	res := &Result{}
	cursor := 12
	end := len(pack) - trailerSize

	for i := uint32(0); i < count; i++ {
		if cursor >= end {
			logger.Warn("packfile: object count exceeds available bytes, stopping early", "declared", count, "decoded", i)
			break
		}

		typ, size, headerLen, err := parseObjectHeader(pack[cursor:end])
		if err != nil {
			return nil, fmt.Errorf("%w: object %d header: %v", ErrProtocol, i, err)
		}
		cursor += headerLen

		switch typ {
		case gitobject.PackedOfsDelta:
			_, offsetLen, err := parseOfsDeltaOffset(pack[cursor:end])
			if err != nil {
				return nil, fmt.Errorf("%w: object %d ofs-delta offset: %v", ErrProtocol, i, err)
			}
			cursor += offsetLen

			_, consumed, err := inflate(pack[cursor:end], size)
			if err != nil {
				return nil, fmt.Errorf("%w: object %d body: %v", ErrProtocol, i, err)
			}
			cursor += consumed
			logger.Warn("packfile: skipping OFS_DELTA object", "index", i, "error", ErrUnsupportedObject)

		case gitobject.PackedRefDelta:
			if cursor+githash.Size > end {
				return nil, fmt.Errorf("%w: object %d truncated ref-delta base", ErrProtocol, i)
			}
			baseID, err := githash.FromBytes(pack[cursor : cursor+githash.Size])
			if err != nil {
				return nil, fmt.Errorf("%w: object %d base id: %v", ErrProtocol, i, err)
			}
			cursor += githash.Size

			delta, consumed, err := inflate(pack[cursor:end], size)
			if err != nil {
				return nil, fmt.Errorf("%w: object %d body: %v", ErrProtocol, i, err)
			}
			cursor += consumed

			baseKind, basePayload, err := store.Read(baseID)
			if err != nil {
				logger.Warn("packfile: ref-delta base missing, skipping", "index", i, "base", baseID.String(), "error", ErrBaseMissing)
				continue
			}

			payload, err := ApplyDelta(basePayload, delta)
			if err != nil {
				logger.Warn("packfile: delta application failed, skipping", "index", i, "error", err)
				continue
			}

			existed := store.Has(gitobject.Sum(baseKind, payload))
			id, err := store.Write(baseKind, payload)
			if err != nil {
				return nil, fmt.Errorf("packfile: writing resolved delta object: %w", err)
			}
			if !existed {
				res.Written = append(res.Written, id)
			}

		default:
			kind := typ.Kind()
			if kind == gitobject.KindInvalid {
				return nil, fmt.Errorf("%w: object %d unknown type %s", ErrProtocol, i, typ)
			}

			payload, consumed, err := inflate(pack[cursor:end], size)
			if err != nil {
				return nil, fmt.Errorf("%w: object %d body: %v", ErrProtocol, i, err)
			}
			cursor += consumed

			if uint64(len(payload)) != size {
				logger.Warn("packfile: inflated length disagrees with declared size, skipping", "index", i, "declared", size, "got", len(payload))
				continue
			}

			existed := store.Has(gitobject.Sum(kind, payload))
			id, err := store.Write(kind, payload)
			if err != nil {
				return nil, fmt.Errorf("packfile: writing object: %w", err)
			}
			if !existed {
				res.Written = append(res.Written, id)
			}
		}
	}

	sum := sha1.Sum(pack[:end]) //nolint:gosec
	res.ChecksumOK = bytes.Equal(sum[:], pack[end:])
	if !res.ChecksumOK {
		logger.Warn("packfile: trailer checksum mismatch", "computed", fmt.Sprintf("%x", sum), "want", fmt.Sprintf("%x", pack[end:]))
	}

	return res, nil
}

// parseObjectHeader reads a per-object variable-length header: byte 0
// carries a continuation bit, a 3-bit type, and the low 4 bits of the
// inflated size; subsequent bytes (while the continuation bit is set)
// each contribute 7 more size bits.
func parseObjectHeader(b []byte) (gitobject.PackedType, uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, 0, fmt.Errorf("truncated header")
	}
	first := b[0]
	typ := gitobject.PackedType((first >> 4) & 0x07)
	size := uint64(first & 0x0F)
	shift := uint(4)

	n := 1
	cont := first&0x80 != 0
	for cont {
		if n >= len(b) {
			return 0, 0, 0, fmt.Errorf("truncated header")
		}
		b2 := b[n]
		size |= uint64(b2&0x7F) << shift
		shift += 7
		n++
		cont = b2&0x80 != 0
	}
	return typ, size, n, nil
}

// parseOfsDeltaOffset reads the OFS_DELTA negative-offset encoding. The
// decoded value is not currently used for resolution (see package docs)
// but must still be consumed to keep the cursor aligned.
func parseOfsDeltaOffset(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, fmt.Errorf("truncated ofs-delta offset")
	}
	n := 0
	first := b[n]
	n++
	value := uint64(first & 0x7F)
	for first&0x80 != 0 {
		if n >= len(b) {
			return 0, 0, fmt.Errorf("truncated ofs-delta offset")
		}
		first = b[n]
		n++
		value = ((value + 1) << 7) | uint64(first&0x7F)
	}
	return value, n, nil
}

// inflate decompresses the zlib stream starting at b[0] in full, returning
// the inflated bytes and the exact number of compressed bytes consumed.
// Handing zlib.NewReader a *bytes.Reader lets it read one byte at a time
// via io.ByteReader instead of buffering ahead, so the remaining length
// of the reader afterward tells us precisely where the next object
// begins — reading to the stream's own EOF (rather than stopping once
// declaredSize bytes are produced) keeps that cursor accurate even when
// the declared size disagrees with the actual inflated length.
func inflate(b []byte, declaredSize uint64) ([]byte, int, error) {
	br := bytes.NewReader(b)
	zr, err := zlib.NewReader(br)
	if err != nil {
		return nil, 0, fmt.Errorf("opening zlib stream: %w", err)
	}

	out, err := io.ReadAll(zr)
	closeErr := zr.Close()
	if err != nil {
		return nil, 0, fmt.Errorf("inflating: %w", err)
	}
	if closeErr != nil {
		return nil, 0, fmt.Errorf("closing zlib stream: %w", closeErr)
	}

	consumed := len(b) - br.Len()
	return out, consumed, nil
}
