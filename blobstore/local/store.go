// Package local implements a content-addressed blob store on the local
// filesystem. Objects land under <root>/objects/<aa>/<digest> with a JSON
// metadata sidecar; writes stream through a temp file and are finalized
// with an atomic rename, so a partial write is never retrievable.
package local

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"hash"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/PavLouis/PWA-Movies/blobstore"
)

const metaSuffix = ".meta.json"

type store struct {
	root string
}

// New creates a local blob store rooted at root.
func New(root string) (blobstore.Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, "tmp"), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create blob tmp dir")
	}
	if err := os.MkdirAll(filepath.Join(abs, "objects"), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create blob objects dir")
	}
	return &store{root: abs}, nil
}

func (s *store) OpenWrite(_ context.Context, name, contentType string) (blobstore.Writer, error) {
	tmp, err := os.CreateTemp(filepath.Join(s.root, "tmp"), "put-*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temp file")
	}

	return &writer{
		store:       s,
		name:        name,
		contentType: contentType,
		tmp:         tmp,
		digest:      sha256.New(),
	}, nil
}

func (s *store) OpenRead(_ context.Context, id string) (io.ReadCloser, *blobstore.Object, error) {
	meta, err := s.readMeta(id)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(s.objectPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, blobstore.ErrNotFound
		}
		return nil, nil, errors.Wrap(err, "failed to open object")
	}

	return f, meta, nil
}

func (s *store) Delete(_ context.Context, id string) error {
	if _, err := s.readMeta(id); err != nil {
		return err
	}

	if err := os.Remove(s.objectPath(id)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to delete object")
	}
	if err := os.Remove(s.metaPath(id)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to delete object metadata")
	}

	return nil
}

func (s *store) objectPath(id string) string {
	if len(id) < 2 {
		return filepath.Join(s.root, "objects", "xx", id)
	}
	return filepath.Join(s.root, "objects", id[:2], id)
}

func (s *store) metaPath(id string) string {
	return s.objectPath(id) + metaSuffix
}

func (s *store) readMeta(id string) (*blobstore.Object, error) {
	raw, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to read object metadata")
	}

	var meta blobstore.Object
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, errors.Wrap(err, "failed to decode object metadata")
	}

	return &meta, nil
}

type writer struct {
	store       *store
	name        string
	contentType string

	tmp    *os.File
	digest hash.Hash
	size   int64
	closed bool
}

func (w *writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, blobstore.ErrClosed
	}

	n, err := w.tmp.Write(p)
	w.digest.Write(p[:n])
	w.size += int64(n)
	return n, err
}

func (w *writer) Commit() (string, error) {
	if w.closed {
		return "", blobstore.ErrClosed
	}
	w.closed = true

	tmpPath := w.tmp.Name()
	if err := w.tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", errors.Wrap(err, "failed to flush object")
	}

	id := hex.EncodeToString(w.digest.Sum(nil))
	dst := w.store.objectPath(id)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		_ = os.Remove(tmpPath)
		return "", errors.Wrap(err, "failed to create object dir")
	}

	// Identical content is already stored; content addressing makes this a
	// dedup rather than a conflict.
	if _, err := os.Stat(dst); err == nil {
		_ = os.Remove(tmpPath)
		return id, nil
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return "", errors.Wrap(err, "failed to finalize object")
	}

	if err := w.writeMeta(id); err != nil {
		_ = os.Remove(dst)
		return "", err
	}

	return id, nil
}

func (w *writer) writeMeta(id string) error {
	meta := blobstore.Object{
		ID:          id,
		Name:        w.name,
		ContentType: w.contentType,
		Size:        w.size,
		CreatedAt:   time.Now().UTC(),
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		return errors.Wrap(err, "failed to encode object metadata")
	}

	tmp, err := os.CreateTemp(filepath.Join(w.store.root, "tmp"), "meta-*")
	if err != nil {
		return errors.Wrap(err, "failed to create metadata temp file")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "failed to write object metadata")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "failed to flush object metadata")
	}

	if err := os.Rename(tmpPath, w.store.metaPath(id)); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrap(err, "failed to finalize object metadata")
	}

	return nil
}

func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	tmpPath := w.tmp.Name()
	_ = w.tmp.Close()
	_ = os.Remove(tmpPath)
	return nil
}
