package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/PavLouis/PWA-Movies/blobstore"
	"github.com/PavLouis/PWA-Movies/model"
)

type object struct {
	meta blobstore.Object
	data []byte
}

type store struct {
	mu      sync.RWMutex
	objects map[string]object
}

func NewInMemory() blobstore.Store {
	return &store{
		objects: make(map[string]object),
	}
}

func (s *store) OpenWrite(_ context.Context, name, contentType string) (blobstore.Writer, error) {
	return &writer{
		store:       s,
		name:        name,
		contentType: contentType,
	}, nil
}

func (s *store) OpenRead(_ context.Context, id string) (io.ReadCloser, *blobstore.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[id]
	if !ok {
		return nil, nil, blobstore.ErrNotFound
	}

	// Copy so readers never observe mutations of internal state.
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	meta := obj.meta

	return io.NopCloser(bytes.NewReader(data)), &meta, nil
}

func (s *store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[id]; !ok {
		return blobstore.ErrNotFound
	}

	delete(s.objects, id)
	return nil
}

type writer struct {
	store       *store
	name        string
	contentType string

	buf    bytes.Buffer
	closed bool
}

func (w *writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, blobstore.ErrClosed
	}
	return w.buf.Write(p)
}

func (w *writer) Commit() (string, error) {
	if w.closed {
		return "", blobstore.ErrClosed
	}
	w.closed = true

	id := model.MustGenerateID()
	data := make([]byte, w.buf.Len())
	copy(data, w.buf.Bytes())

	w.store.mu.Lock()
	defer w.store.mu.Unlock()

	w.store.objects[id] = object{
		meta: blobstore.Object{
			ID:          id,
			Name:        w.name,
			ContentType: w.contentType,
			Size:        int64(len(data)),
			CreatedAt:   time.Now(),
		},
		data: data,
	}

	return id, nil
}

func (w *writer) Close() error {
	w.closed = true
	w.buf.Reset()
	return nil
}
