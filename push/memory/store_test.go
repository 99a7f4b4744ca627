package memory

import (
	"testing"

	"github.com/PavLouis/PWA-Movies/push/tests"
)

func TestPush_MemoryStore(t *testing.T) {
	testStore := NewMemory()
	tests.RunStoreTests(t, testStore, testStore.Reset)
}
