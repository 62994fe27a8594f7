package protocol_test

import (
	"strings"
	"testing"

	"github.com/sdawka/ggit/internal/githash"
	"github.com/sdawka/ggit/protocol"
	"github.com/stretchr/testify/require"
)

func TestBuildFetchRequest(t *testing.T) {
	a := githash.MustFromHex("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	b := githash.MustFromHex("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	body, err := protocol.BuildFetchRequest([]githash.ID{a, b})
	require.NoError(t, err)

	s := string(body)
	require.True(t, strings.Contains(s, "want aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa multi_ack_detailed side-band-64k thin-pack ofs-delta agent="+protocol.UserAgent))
	require.True(t, strings.Contains(s, "want bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb\n"))
	require.True(t, strings.Contains(s, "done\n"))
	require.True(t, strings.HasSuffix(s, "0000"))
}

func TestBuildFetchRequestRequiresWants(t *testing.T) {
	_, err := protocol.BuildFetchRequest(nil)
	require.ErrorIs(t, err, protocol.ErrProtocol)
}
