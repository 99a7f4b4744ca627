package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PavLouis/PWA-Movies/blobstore/tests"
)

func TestBlobStore_Local(t *testing.T) {
	root := t.TempDir()

	testStore, err := New(filepath.Join(root, "blobs"))
	require.NoError(t, err)

	teardown := func() {
		objects := filepath.Join(root, "blobs", "objects")
		require.NoError(t, os.RemoveAll(objects))
		require.NoError(t, os.MkdirAll(objects, 0o755))
	}
	tests.RunStoreTests(t, testStore, teardown)
}

func TestBlobStore_Local_NoTempLeftovers(t *testing.T) {
	root := t.TempDir()

	s, err := New(root)
	require.NoError(t, err)

	w, err := s.OpenWrite(context.Background(), "leak.png", "image/png")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(filepath.Join(root, "tmp"))
	require.NoError(t, err)
	require.Empty(t, entries, "aborted write left temp files behind")
}
