package e2e_test

import (
	"bytes"
	"compress/zlib"
	"context"
	"crypto/sha1" //nolint:gosec // test fixture construction, not production code
	"encoding/binary"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sdawka/ggit/clone"
	"github.com/sdawka/ggit/internal/gitobject"
	"github.com/sdawka/ggit/internal/log"
	"github.com/sdawka/ggit/pktline"
)

// encodeObjectHeader renders the per-object variable-length packfile
// header for a non-delta object of the given type and inflated size.
func encodeObjectHeader(typ gitobject.PackedType, size int) []byte {
	var out []byte
	b := byte(typ)<<4 | byte(size&0x0F)
	size >>= 4
	for size > 0 {
		out = append(out, b|0x80)
		b = byte(size & 0x7F)
		size >>= 7
	}
	out = append(out, b)
	return out
}

func packObject(typ gitobject.PackedType, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Write(encodeObjectHeader(typ, len(payload)))
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(payload)
	Expect(err).NotTo(HaveOccurred())
	Expect(zw.Close()).To(Succeed())
	return buf.Bytes()
}

func buildPack(objects ...[]byte) []byte {
	var body bytes.Buffer
	body.WriteString("PACK")
	var versionCount [8]byte
	binary.BigEndian.PutUint32(versionCount[0:4], 2)
	binary.BigEndian.PutUint32(versionCount[4:8], uint32(len(objects)))
	body.Write(versionCount[:])
	for _, o := range objects {
		body.Write(o)
	}
	sum := sha1.Sum(body.Bytes()) //nolint:gosec
	body.Write(sum[:])
	return body.Bytes()
}

var _ = Describe("Clone", func() {
	It("clones a single-commit repository with one file", func() {
		blob := []byte("hi\n")
		blobID := gitobject.Sum(gitobject.KindBlob, blob)

		tree := &gitobject.Tree{}
		tree.Add(gitobject.TreeEntry{Mode: gitobject.ModeFile, Name: "README", ID: blobID})
		treePayload := tree.Marshal()
		treeID := gitobject.Sum(gitobject.KindTree, treePayload)

		commit := &gitobject.Commit{
			Tree:      treeID,
			Author:    gitobject.Identity{Name: "tester", Email: "tester@example.com", Timestamp: 1700000000, Timezone: "+0000"},
			Committer: gitobject.Identity{Name: "tester", Email: "tester@example.com", Timestamp: 1700000000, Timezone: "+0000"},
			Message:   "initial commit\n",
		}
		commitPayload := commit.Marshal()
		commitID := gitobject.Sum(gitobject.KindCommit, commitPayload)

		pack := buildPack(
			packObject(gitobject.PackedCommit, commitPayload),
			packObject(gitobject.PackedTree, treePayload),
			packObject(gitobject.PackedBlob, blob),
		)

		mux := http.NewServeMux()
		mux.HandleFunc("/info/refs", func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Query().Get("service")).To(Equal("git-upload-pack"))

			var body bytes.Buffer
			service, err := pktline.Encode([]byte("# service=git-upload-pack\n"))
			Expect(err).NotTo(HaveOccurred())
			body.Write(service)
			body.Write(pktline.Flush)

			first := fmt.Sprintf("%s refs/heads/main\x00multi_ack side-band-64k symref=HEAD:refs/heads/main agent=git/2.40", commitID.String())
			line, err := pktline.Encode([]byte(first))
			Expect(err).NotTo(HaveOccurred())
			body.Write(line)
			body.Write(pktline.Flush)

			w.Header().Set("Content-Type", "application/x-git-upload-pack-advertisement")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body.Bytes())
		})
		mux.HandleFunc("/git-upload-pack", func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Header.Get("Content-Type")).To(Equal("application/x-git-upload-pack-request"))

			var body bytes.Buffer
			payload := append([]byte{1}, pack...)
			line, err := pktline.Encode(payload)
			Expect(err).NotTo(HaveOccurred())
			body.Write(line)
			body.Write(pktline.Flush)

			w.Header().Set("Content-Type", "application/x-git-upload-pack-result")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body.Bytes())
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		dest := filepath.Join(GinkgoT().TempDir(), "cloned-repo")

		result, err := clone.Clone(context.Background(), log.Noop, server.URL, dest)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.CommitID).To(Equal(commitID))
		Expect(result.HeadRef).To(Equal("refs/heads/main"))
		Expect(result.PackStats.ChecksumOK).To(BeTrue())

		readme, err := os.ReadFile(filepath.Join(dest, "README"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(readme)).To(Equal("hi\n"))

		head, err := os.ReadFile(filepath.Join(dest, ".git", "HEAD"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(head)).To(Equal("ref: refs/heads/main\n"))

		ref, err := os.ReadFile(filepath.Join(dest, ".git", "refs", "heads", "main"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(ref)).To(Equal(commitID.String() + "\n"))
	})

	It("rejects cloning into an existing directory", func() {
		dest := GinkgoT().TempDir()
		_, err := clone.Clone(context.Background(), log.Noop, "https://example.invalid/repo.git", dest)
		Expect(err).To(MatchError(clone.ErrPreconditionFailed))
	})
})
