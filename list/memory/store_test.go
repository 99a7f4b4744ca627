package memory

import (
	"testing"

	"github.com/PavLouis/PWA-Movies/list/tests"
)

func TestList_MemoryStore(t *testing.T) {
	testStore := NewInMemory()
	tests.RunStoreTests(t, testStore, testStore.(*store).Reset)
}
