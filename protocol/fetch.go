package protocol

import (
	"fmt"

	"github.com/sdawka/ggit/internal/githash"
	"github.com/sdawka/ggit/pktline"
)

// BuildFetchRequest emits the want/done negotiation body for a POST to
// git-upload-pack. The first want line carries the capability set this
// client declares; ofs-delta is declared even though this core cannot
// resolve OFS_DELTA objects, because remotes commonly send them
// regardless and declining the capability does not prevent that -- the
// packfile decoder's skip-with-warning policy covers the gap.
func BuildFetchRequest(wants []githash.ID) ([]byte, error) {
	if len(wants) == 0 {
		return nil, fmt.Errorf("%w: fetch request requires at least one want", ErrProtocol)
	}

	var out []byte
	for i, id := range wants {
		var line string
		if i == 0 {
			line = fmt.Sprintf("want %s multi_ack_detailed side-band-64k thin-pack ofs-delta agent=%s\n", id.String(), UserAgent)
		} else {
			line = fmt.Sprintf("want %s\n", id.String())
		}
		encoded, err := pktline.Encode([]byte(line))
		if err != nil {
			return nil, err
		}
		out = append(out, encoded...)
	}

	out = append(out, pktline.Flush...)

	done, err := pktline.Encode([]byte("done\n"))
	if err != nil {
		return nil, err
	}
	out = append(out, done...)
	out = append(out, pktline.Flush...)

	return out, nil
}
