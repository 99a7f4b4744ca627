package tests

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PavLouis/PWA-Movies/blobstore"
)

func RunStoreTests(t *testing.T, s blobstore.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s blobstore.Store){
		testRoundTrip,
		testReadUnknown,
		testDelete,
		testAbortedWrite,
		testWriterClosedAfterCommit,
		testConcurrentRoundTrips,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s blobstore.Store) {
	ctx := context.Background()

	content := make([]byte, 64<<10)
	_, err := rand.Read(content)
	require.NoError(t, err)

	id, err := blobstore.Put(ctx, s, "poster.png", "image/png", bytes.NewReader(content))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rc, obj, err := s.OpenRead(ctx, id)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	assert.Equal(t, id, obj.ID)
	assert.Equal(t, "poster.png", obj.Name)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.EqualValues(t, len(content), obj.Size)
}

func testReadUnknown(t *testing.T, s blobstore.Store) {
	ctx := context.Background()

	_, _, err := s.OpenRead(ctx, "does-not-exist")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func testDelete(t *testing.T, s blobstore.Store) {
	ctx := context.Background()

	id, err := blobstore.Put(ctx, s, "gone.jpg", "image/jpeg", bytes.NewReader([]byte("bytes")))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, id))

	_, _, err = s.OpenRead(ctx, id)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	err = s.Delete(ctx, id)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func testAbortedWrite(t *testing.T, s blobstore.Store) {
	ctx := context.Background()

	w, err := s.OpenWrite(ctx, "partial.png", "image/png")
	require.NoError(t, err)

	_, err = w.Write([]byte("half an ima"))
	require.NoError(t, err)

	// Closing without Commit aborts; the partial object must never become
	// retrievable.
	require.NoError(t, w.Close())

	_, err = w.Commit()
	assert.ErrorIs(t, err, blobstore.ErrClosed)

	_, err = w.Write([]byte("more"))
	assert.ErrorIs(t, err, blobstore.ErrClosed)
}

func testWriterClosedAfterCommit(t *testing.T, s blobstore.Store) {
	ctx := context.Background()

	w, err := s.OpenWrite(ctx, "once.png", "image/png")
	require.NoError(t, err)

	_, err = w.Write([]byte("whole image"))
	require.NoError(t, err)

	id, err := w.Commit()
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// Close after Commit is a no-op and the object stays retrievable.
	require.NoError(t, w.Close())

	_, _, err = s.OpenRead(ctx, id)
	require.NoError(t, err)

	_, err = w.Commit()
	assert.ErrorIs(t, err, blobstore.ErrClosed)
}

func testConcurrentRoundTrips(t *testing.T, s blobstore.Store) {
	ctx := context.Background()

	const writers = 8

	var wg sync.WaitGroup
	ids := make([]string, writers)
	contents := make([][]byte, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			content := []byte(fmt.Sprintf("object-%d-content", i))
			id, err := blobstore.Put(ctx, s, fmt.Sprintf("obj-%d", i), "application/octet-stream", bytes.NewReader(content))
			assert.NoError(t, err)

			ids[i] = id
			contents[i] = content
		}(i)
	}
	wg.Wait()

	for i := 0; i < writers; i++ {
		data, _, err := blobstore.ReadAll(ctx, s, ids[i])
		require.NoError(t, err)
		assert.Equal(t, contents[i], data)
	}
}
