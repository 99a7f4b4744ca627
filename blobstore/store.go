package blobstore

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNotFound is returned when an id does not reference a finalized object.
	ErrNotFound = errors.New("object not found")

	// ErrClosed is returned when a writer is used after Commit or Close.
	ErrClosed = errors.New("writer is closed")
)

// Object describes a finalized blob. Objects are immutable once committed.
type Object struct {
	ID          string
	Name        string
	ContentType string
	Size        int64
	CreatedAt   time.Time
}

// Writer is a single-use sink for one object's bytes.
//
// Commit finalizes the object and returns its store-assigned id. Close
// releases resources; closing an uncommitted writer aborts the write and
// the partial object is never retrievable. Close after Commit is a no-op,
// so `defer w.Close()` is safe on every path.
type Writer interface {
	io.Writer

	Commit() (string, error)
	Close() error
}

// Store persists immutable binary objects keyed by opaque ids.
//
// Implementations must support arbitrarily many concurrent independent
// reads and writes. Objects are write-once; there is no in-place mutation.
type Store interface {
	// OpenWrite returns a sink scoped to a single new object.
	OpenWrite(ctx context.Context, name, contentType string) (Writer, error)

	// OpenRead returns the object's content as a finite, non-restartable
	// byte stream, along with its metadata. Returns ErrNotFound if id does
	// not reference a finalized object.
	OpenRead(ctx context.Context, id string) (io.ReadCloser, *Object, error)

	// Delete removes a finalized object. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
}

// Put streams r into the store and returns the finalized object id.
//
// Resources are released on every exit path, including mid-stream failures.
func Put(ctx context.Context, s Store, name, contentType string, r io.Reader) (string, error) {
	w, err := s.OpenWrite(ctx, name, contentType)
	if err != nil {
		return "", err
	}
	defer w.Close()

	if _, err := io.Copy(w, r); err != nil {
		return "", err
	}

	return w.Commit()
}

// ReadAll materializes the full object into memory.
//
// The transform pipeline needs random access, not just a stream, so image
// reads go through this rather than handing the raw stream to callers.
func ReadAll(ctx context.Context, s Store, id string) ([]byte, *Object, error) {
	rc, obj, err := s.OpenRead(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, nil, err
	}

	return data, obj, nil
}
