// Package clone orchestrates a full repository clone: ref discovery, a
// fetch negotiation, packfile decode, ref and HEAD materialization, and a
// working-tree checkout, in that order.
package clone

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sdawka/ggit/checkout"
	"github.com/sdawka/ggit/internal/githash"
	"github.com/sdawka/ggit/internal/log"
	"github.com/sdawka/ggit/objstore"
	"github.com/sdawka/ggit/packfile"
	"github.com/sdawka/ggit/protocol"
)

// ErrPreconditionFailed is returned when the destination directory
// already exists.
var ErrPreconditionFailed = errors.New("clone: destination already exists")

// ErrNoBranch is returned when the remote's ref advertisement does not
// resolve to any usable commit.
var ErrNoBranch = errors.New("clone: remote advertised no usable ref")

// Result summarizes a completed clone.
type Result struct {
	Dest      string
	HeadRef   string
	CommitID  githash.ID
	PackStats *packfile.Result
}

// Clone clones repoURL into destDir. If destDir is empty, it is derived
// from the last path segment of repoURL (with a trailing ".git" dropped).
func Clone(ctx context.Context, logger log.Logger, repoURL, destDir string) (*Result, error) {
	if logger == nil {
		logger = log.Noop
	}

	if destDir == "" {
		destDir = deriveDirName(repoURL)
	}

	if _, err := os.Stat(destDir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrPreconditionFailed, destDir)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("clone: checking destination: %w", err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("clone: creating destination: %w", err)
	}

	gitDir := filepath.Join(destDir, ".git")
	if err := objstore.Init(gitDir); err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}
	store := objstore.Open(gitDir)

	transport, err := protocol.NewTransport(repoURL)
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}

	logger.Info("clone: discovering refs", "url", repoURL)
	refs, err := transport.DiscoverRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}

	headRef, commitID, err := resolveTarget(refs)
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}

	logger.Info("clone: fetching pack", "want", commitID.String())
	reqBody, err := protocol.BuildFetchRequest([]githash.ID{commitID})
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}

	respBody, err := transport.UploadPack(ctx, reqBody)
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}

	pack, err := protocol.DemuxSideBand(respBody)
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}

	packStats, err := packfile.Decode(logger, store, pack)
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}
	if !packStats.ChecksumOK {
		logger.Warn("clone: packfile checksum mismatch, continuing")
	}
	logger.Info("clone: decoded pack", "objects", len(packStats.Written))

	// All pack objects are now persisted: only after this point do we
	// write any ref, and only after every ref is written do we repoint
	// HEAD, so a reader never observes a ref without its objects. A
	// detached HEAD (headRef == "") names no branch, so there is no ref
	// to write at all.
	if headRef != "" {
		if err := writeRef(gitDir, headRef, commitID); err != nil {
			return nil, fmt.Errorf("clone: %w", err)
		}
	}
	if err := writeHead(gitDir, headRef, commitID); err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}

	logger.Info("clone: checking out working tree", "commit", commitID.String())
	if err := checkout.Checkout(logger, store, commitID.String(), destDir); err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}

	return &Result{
		Dest:      destDir,
		HeadRef:   headRef,
		CommitID:  commitID,
		PackStats: packStats,
	}, nil
}

// deriveDirName derives a destination directory from the last non-empty
// path segment of a repository URL, dropping a trailing ".git".
func deriveDirName(repoURL string) string {
	trimmed := strings.TrimSuffix(repoURL, "/")
	segment := trimmed
	if idx := strings.LastIndexByte(trimmed, '/'); idx >= 0 {
		segment = trimmed[idx+1:]
	}
	segment = strings.TrimSuffix(segment, ".git")
	if segment == "" {
		segment = "repo"
	}
	return segment
}

// resolveTarget follows HEAD's symbolic-ref marker (if present) to the
// branch it names. When the advertisement carries no symref capability,
// HEAD is a direct identity: the clone is detached, ref is returned
// empty, and no branch is named.
func resolveTarget(refs protocol.RefMap) (ref string, id githash.ID, err error) {
	head, ok := refs["HEAD"]
	if !ok {
		return "", githash.Zero, ErrNoBranch
	}

	if target, ok := protocol.Symbolic(head); ok {
		sha, ok := refs[target]
		if !ok {
			return "", githash.Zero, fmt.Errorf("%w: symref target %s not advertised", ErrNoBranch, target)
		}
		id, err := githash.FromHex(sha)
		if err != nil {
			return "", githash.Zero, fmt.Errorf("%w: %v", ErrNoBranch, err)
		}
		return target, id, nil
	}

	// HEAD advertised a literal commit id: detached, no named branch.
	id, err = githash.FromHex(head)
	if err != nil {
		return "", githash.Zero, fmt.Errorf("%w: %v", ErrNoBranch, err)
	}
	return "", id, nil
}

func writeRef(gitDir, ref string, id githash.ID) error {
	p := filepath.Join(gitDir, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("creating ref directory: %w", err)
	}
	if err := os.WriteFile(p, []byte(id.String()+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing ref %s: %w", ref, err)
	}
	return nil
}

// writeHead points .git/HEAD at ref, or at id directly (detached) when
// ref is empty.
func writeHead(gitDir, ref string, id githash.ID) error {
	p := filepath.Join(gitDir, "HEAD")
	content := "ref: " + ref + "\n"
	if ref == "" {
		content = id.String() + "\n"
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing HEAD: %w", err)
	}
	return nil
}
