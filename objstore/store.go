// Package objstore implements the content-addressed object database: a
// mapping from 40-character identity to (kind, payload), stored as loose
// objects under .git/objects/<2-hex>/<38-hex>.
package objstore

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sdawka/ggit/internal/gitobject"
	"github.com/sdawka/ggit/internal/githash"
	"github.com/sdawka/ggit/internal/log"
)

// ErrNotFound is returned by Read when no object with the given identity
// is stored.
var ErrNotFound = errors.New("objstore: object not found")

// ErrCorruptObject is returned by Read when a loose object's header is
// malformed or its declared length disagrees with its payload.
var ErrCorruptObject = errors.New("objstore: corrupt object")

// Store is a loose-object database rooted at a ".git" directory.
type Store struct {
	gitDir string
}

// Open returns a Store rooted at gitDir (the ".git" directory, already
// expected to exist with an objects/ subdirectory).
func Open(gitDir string) *Store {
	return &Store{gitDir: gitDir}
}

// Init creates the on-disk layout Open expects: .git/objects and .git/refs.
func Init(gitDir string) error {
	if err := os.MkdirAll(filepath.Join(gitDir, "objects"), 0o755); err != nil {
		return fmt.Errorf("objstore: creating objects dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(gitDir, "refs"), 0o755); err != nil {
		return fmt.Errorf("objstore: creating refs dir: %w", err)
	}
	return nil
}

func (s *Store) path(id githash.ID) string {
	hex := id.String()
	return filepath.Join(s.gitDir, "objects", hex[:2], hex[2:])
}

// Write computes the identity of (kind, payload) and persists it as a
// loose object, unless a file for that identity already exists (writes
// are idempotent by construction: the content is already correct).
func (s *Store) Write(kind gitobject.Kind, payload []byte) (githash.ID, error) {
	framed := gitobject.Frame(kind, payload)
	id := githash.Sum(framed)

	p := s.path(id)
	if _, err := os.Stat(p); err == nil {
		return id, nil
	} else if !os.IsNotExist(err) {
		return id, fmt.Errorf("objstore: stat %s: %w", p, err)
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return id, fmt.Errorf("objstore: creating object dir: %w", err)
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(framed); err != nil {
		_ = zw.Close()
		return id, fmt.Errorf("objstore: compressing object: %w", err)
	}
	if err := zw.Close(); err != nil {
		return id, fmt.Errorf("objstore: compressing object: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return id, fmt.Errorf("objstore: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(compressed.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return id, fmt.Errorf("objstore: writing object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return id, fmt.Errorf("objstore: writing object: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return id, fmt.Errorf("objstore: finalizing object: %w", err)
	}

	return id, nil
}

// Read inflates and parses the loose object with the given identity.
func (s *Store) Read(id githash.ID) (gitobject.Kind, []byte, error) {
	p := s.path(id)
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return gitobject.KindInvalid, nil, ErrNotFound
		}
		return gitobject.KindInvalid, nil, fmt.Errorf("objstore: opening %s: %w", p, err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return gitobject.KindInvalid, nil, fmt.Errorf("%w: %v", ErrCorruptObject, err)
	}
	defer zr.Close()

	framed, err := io.ReadAll(zr)
	if err != nil {
		return gitobject.KindInvalid, nil, fmt.Errorf("%w: %v", ErrCorruptObject, err)
	}

	kind, payload, err := gitobject.SplitFrame(framed)
	if err != nil {
		return gitobject.KindInvalid, nil, fmt.Errorf("%w: %v", ErrCorruptObject, err)
	}
	return kind, payload, nil
}

// Has reports whether an object with the given identity is present,
// without inflating its body.
func (s *Store) Has(id githash.ID) bool {
	_, err := os.Stat(s.path(id))
	return err == nil
}

// WriteLogged is Write but logs a failed write through logger instead of
// only returning it, matching the
// best-effort-completion policy callers in the clone pipeline rely on.
func (s *Store) WriteLogged(logger log.Logger, kind gitobject.Kind, payload []byte) (githash.ID, error) {
	id, err := s.Write(kind, payload)
	if err != nil {
		logger.Warn("objstore: write failed", "kind", kind.String(), "error", err)
	}
	return id, err
}
