package packfile

import (
	"errors"
	"fmt"
)

// ErrDelta covers every way a delta instruction stream can be malformed:
// a source-size disagreement, an out-of-bounds copy or insert, a
// zero-size insert, or a final cursor that doesn't match the declared
// target size.
var ErrDelta = errors.New("packfile: invalid delta")

// ApplyDelta reconstructs a target payload by replaying the copy/insert
// instruction stream in delta against base.
func ApplyDelta(base, delta []byte) ([]byte, error) {
	sourceSize, rest, err := readDeltaSize(delta)
	if err != nil {
		return nil, fmt.Errorf("%w: reading source size: %v", ErrDelta, err)
	}
	if sourceSize != uint64(len(base)) {
		return nil, fmt.Errorf("%w: source size %d does not match base length %d", ErrDelta, sourceSize, len(base))
	}

	targetSize, rest, err := readDeltaSize(rest)
	if err != nil {
		return nil, fmt.Errorf("%w: reading target size: %v", ErrDelta, err)
	}

	out := make([]byte, 0, targetSize)

	for len(rest) > 0 {
		op := rest[0]
		rest = rest[1:]

		if op&0x80 != 0 {
			var offset, size uint32
			for i := uint(0); i < 4; i++ {
				if op&(1<<i) != 0 {
					if len(rest) == 0 {
						return nil, fmt.Errorf("%w: truncated copy offset", ErrDelta)
					}
					offset |= uint32(rest[0]) << (8 * i)
					rest = rest[1:]
				}
			}
			for i := uint(0); i < 3; i++ {
				if op&(1<<(4+i)) != 0 {
					if len(rest) == 0 {
						return nil, fmt.Errorf("%w: truncated copy size", ErrDelta)
					}
					size |= uint32(rest[0]) << (8 * i)
					rest = rest[1:]
				}
			}
			if size == 0 {
				size = 0x10000
			}

			start := int(offset)
			end := start + int(size)
			if start < 0 || end < start || end > len(base) {
				return nil, fmt.Errorf("%w: copy [%d:%d] out of bounds for base of length %d", ErrDelta, start, end, len(base))
			}
			out = append(out, base[start:end]...)
		} else {
			addSize := int(op & 0x7F)
			if addSize == 0 {
				return nil, fmt.Errorf("%w: zero-size insert", ErrDelta)
			}
			if len(rest) < addSize {
				return nil, fmt.Errorf("%w: insert of %d bytes exceeds remaining delta", ErrDelta, addSize)
			}
			out = append(out, rest[:addSize]...)
			rest = rest[addSize:]
		}

		if len(out) > int(targetSize) {
			return nil, fmt.Errorf("%w: output exceeds declared target size %d", ErrDelta, targetSize)
		}
	}

	if uint64(len(out)) != targetSize {
		return nil, fmt.Errorf("%w: final length %d does not match declared target size %d", ErrDelta, len(out), targetSize)
	}
	return out, nil
}

// readDeltaSize decodes a variable-length unsigned size: 7 bits per byte,
// the high bit marking continuation. It returns the decoded value and the
// remainder of b after the size bytes.
func readDeltaSize(b []byte) (uint64, []byte, error) {
	var size uint64
	var shift uint
	for i, c := range b {
		size |= uint64(c&0x7F) << shift
		if c&0x80 == 0 {
			return size, b[i+1:], nil
		}
		shift += 7
	}
	return 0, nil, fmt.Errorf("truncated size")
}
