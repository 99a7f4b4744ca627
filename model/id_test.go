package model

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, err := GenerateID()
		require.NoError(t, err)
		require.NotEmpty(t, id)

		// IDs decode back to the 16 raw UUID bytes.
		raw, err := base58.Decode(id)
		require.NoError(t, err)
		assert.Len(t, raw, 16)

		_, dup := seen[id]
		assert.False(t, dup, "duplicate id generated")
		seen[id] = struct{}{}
	}
}
