package protocol

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sdawka/ggit/pktline"
)

// RefMap maps a ref name (or "HEAD") to either a 40-hex object identity
// or a symbolic marker of the form "ref: <other-name>".
type RefMap map[string]string

const symbolic = "ref: "

// Symbolic reports whether value is a symbolic-ref marker, and if so
// returns the name it points at.
func Symbolic(value string) (target string, ok bool) {
	if strings.HasPrefix(value, symbolic) {
		return strings.TrimSuffix(strings.TrimPrefix(value, symbolic), "\n"), true
	}
	return "", false
}

// DiscoverRefs performs the initial smart-HTTP GET and parses the
// resulting ref advertisement.
func (t *Transport) DiscoverRefs(ctx context.Context) (RefMap, error) {
	body, err := t.get(ctx, "info/refs?service=git-upload-pack")
	if err != nil {
		return nil, err
	}
	return ParseRefAdvertisement(body)
}

// ParseRefAdvertisement parses a raw info/refs response body into a
// RefMap, extracting any symref= capability entries along the way.
func ParseRefAdvertisement(body []byte) (RefMap, error) {
	dec := pktline.NewDecoder(bytes.NewReader(body))

	var lines [][]byte
	for {
		payload, flush, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		if flush {
			continue
		}
		lines = append(lines, payload)
	}

	if len(lines) > 0 && bytes.HasPrefix(lines[0], []byte("# service=")) {
		lines = lines[1:]
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty ref advertisement", ErrProtocol)
	}

	refs := RefMap{}

	firstSha, firstRest, ok := splitFirstSpace(lines[0])
	if !ok {
		return nil, fmt.Errorf("%w: malformed first ref line %q", ErrProtocol, lines[0])
	}
	name, caps, _ := bytes.Cut(firstRest, []byte{0})
	name = bytes.TrimSuffix(name, []byte("\n"))
	refs[string(name)] = string(firstSha)

	for _, capTok := range bytes.Fields(caps) {
		const prefix = "symref="
		if s := string(capTok); strings.HasPrefix(s, prefix) {
			rest := strings.TrimPrefix(s, prefix)
			refName, target, found := strings.Cut(rest, ":")
			if found {
				refs[refName] = symbolic + target
			}
		}
	}

	for _, line := range lines[1:] {
		sha, name, ok := splitFirstSpace(line)
		if !ok {
			continue // tolerate a malformed non-first ref line rather than aborting discovery
		}
		// Every advertised ref line is LF-terminated; strip it so lookups
		// against capability-derived names (which never carry one) match.
		name = bytes.TrimSuffix(name, []byte("\n"))
		refs[string(name)] = string(sha)
	}

	return refs, nil
}

func splitFirstSpace(line []byte) (first, rest []byte, ok bool) {
	idx := bytes.IndexByte(line, ' ')
	if idx < 0 {
		return nil, nil, false
	}
	return line[:idx], line[idx+1:], true
}
