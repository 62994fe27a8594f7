package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sdawka/ggit/pktline"
)

// DemuxSideBand splits the side-band-64k-framed body of a git-upload-pack
// response into its pack-data stream, discarding progress messages and
// aggregating any band-3 error messages. As a pragmatic tolerance, a body
// that is already a raw PACK stream (no side-band framing at all) is
// accepted unchanged.
func DemuxSideBand(body []byte) ([]byte, error) {
	if bytes.HasPrefix(body, []byte("PACK")) {
		return body, nil
	}

	dec := pktline.NewDecoder(bytes.NewReader(body))

	var pack []byte
	var errMsgs []string
	sawPack := false

	for {
		payload, flush, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		if flush || len(payload) == 0 {
			continue
		}

		band := payload[0]
		data := payload[1:]
		switch band {
		case 1:
			pack = append(pack, data...)
			sawPack = true
		case 2:
			// human-readable progress; dropped here and not passed on to the caller
		case 3:
			errMsgs = append(errMsgs, string(data))
		default:
			if bytes.HasPrefix(payload, []byte("PACK")) {
				pack = append(pack, payload...)
				sawPack = true
			}
		}
	}

	if !sawPack {
		if len(errMsgs) > 0 {
			return nil, fmt.Errorf("%w: remote reported: %s", ErrProtocol, strings.Join(errMsgs, "; "))
		}
		return nil, fmt.Errorf("%w: no PACK signature observed in side-band stream", ErrProtocol)
	}

	return pack, nil
}
