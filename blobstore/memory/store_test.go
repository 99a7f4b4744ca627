package memory

import (
	"testing"

	"github.com/PavLouis/PWA-Movies/blobstore/tests"
)

func TestBlobStore_Memory(t *testing.T) {
	testStore := NewInMemory()
	teardown := func() {
		testStore.(*store).mu.Lock()
		defer testStore.(*store).mu.Unlock()
		testStore.(*store).objects = make(map[string]object)
	}
	tests.RunStoreTests(t, testStore, teardown)
}
