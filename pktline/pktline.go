// Package pktline implements the length-prefixed framing used by the git
// smart-HTTP transport: a 4-hex-ASCII length prefix followed by that many
// bytes of payload, with length 0000 denoting a flush packet.
package pktline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// ErrProtocol is returned for malformed pkt-line framing: an unparsable
// length header, or fewer payload bytes available than the header
// declares.
var ErrProtocol = errors.New("pktline: protocol error")

// MaxDataSize is the largest payload a single pkt-line may carry
// (0xFFFF total line size, minus the 4-byte length header).
const MaxDataSize = 0xFFFF - lengthSize

const lengthSize = 4

// Flush is the wire form of a flush packet.
var Flush = []byte("0000")

// Encode returns the pkt-line framing of payload: the 4-hex-ASCII length
// of len(payload)+4, followed by payload itself.
func Encode(payload []byte) ([]byte, error) {
	total := len(payload) + lengthSize
	if total > 0xFFFF {
		return nil, fmt.Errorf("%w: payload too large (%d bytes)", ErrProtocol, len(payload))
	}
	out := make([]byte, 0, total)
	out = append(out, []byte(fmt.Sprintf("%04x", total))...)
	out = append(out, payload...)
	return out, nil
}

// Decoder reads a stream of pkt-lines one record at a time.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder returns a Decoder reading pkt-lines from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next reads the next pkt-line. It returns (nil, true, nil) for a flush
// packet, (payload, false, nil) for a data packet, and io.EOF when the
// underlying stream is exhausted between records.
func (d *Decoder) Next() (payload []byte, flush bool, err error) {
	var lenBuf [lengthSize]byte
	if _, err := io.ReadFull(d.r, lenBuf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, false, fmt.Errorf("%w: truncated length header", ErrProtocol)
		}
		return nil, false, err
	}

	var length int
	if _, err := fmt.Sscanf(string(lenBuf[:]), "%04x", &length); err != nil {
		return nil, false, fmt.Errorf("%w: invalid length header %q", ErrProtocol, lenBuf[:])
	}

	switch {
	case length == 0:
		return nil, true, nil
	case length < lengthSize:
		return nil, false, fmt.Errorf("%w: length %d smaller than header size", ErrProtocol, length)
	}

	data := make([]byte, length-lengthSize)
	if _, err := io.ReadFull(d.r, data); err != nil {
		return nil, false, fmt.Errorf("%w: insufficient payload: %v", ErrProtocol, err)
	}
	return data, false, nil
}

// ReadAll decodes every record up to the first flush or EOF, returning
// the payloads in order.
func ReadAll(r io.Reader) ([][]byte, error) {
	dec := NewDecoder(r)
	var lines [][]byte
	for {
		payload, flush, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
		if flush {
			return lines, nil
		}
		lines = append(lines, payload)
	}
}
