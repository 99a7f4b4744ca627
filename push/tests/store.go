package tests

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PavLouis/PWA-Movies/push"
)

func RunStoreTests(t *testing.T, s push.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s push.Store){
		testUpsertAndGet,
		testUpsertReplacesInPlace,
		testEndpointTaken,
		testDelete,
		testListExcluding,
	} {
		tf(t, s)
		teardown()
	}
}

func testUpsertAndGet(t *testing.T, s push.Store) {
	ctx := context.Background()

	// Initially absent
	_, err := s.Get(ctx, "user1")
	assert.ErrorIs(t, err, push.ErrNotFound)

	sub, err := s.Upsert(ctx, "user1", "https://push.example.com/ep1", push.Keys{P256DH: "p", Auth: "a"})
	require.NoError(t, err)
	require.NotEmpty(t, sub.ID)

	got, err := s.Get(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)
	assert.Equal(t, "user1", got.UserID)
	assert.Equal(t, "https://push.example.com/ep1", got.Endpoint)
	assert.Equal(t, push.Keys{P256DH: "p", Auth: "a"}, got.Keys)
}

func testUpsertReplacesInPlace(t *testing.T, s push.Store) {
	ctx := context.Background()

	first, err := s.Upsert(ctx, "user1", "https://push.example.com/ep1", push.Keys{P256DH: "p1", Auth: "a1"})
	require.NoError(t, err)

	second, err := s.Upsert(ctx, "user1", "https://push.example.com/ep2", push.Keys{P256DH: "p2", Auth: "a2"})
	require.NoError(t, err)

	// Same subscription, new endpoint and keys
	assert.Equal(t, first.ID, second.ID)

	got, err := s.Get(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, "https://push.example.com/ep2", got.Endpoint)
	assert.Equal(t, push.Keys{P256DH: "p2", Auth: "a2"}, got.Keys)

	// Still exactly one subscription for the user
	others, err := s.ListExcluding(ctx, "someone-else")
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func testEndpointTaken(t *testing.T, s push.Store) {
	ctx := context.Background()

	_, err := s.Upsert(ctx, "user1", "https://push.example.com/shared", push.Keys{P256DH: "p", Auth: "a"})
	require.NoError(t, err)

	_, err = s.Upsert(ctx, "user2", "https://push.example.com/shared", push.Keys{P256DH: "p", Auth: "a"})
	assert.ErrorIs(t, err, push.ErrEndpointTaken)

	// Re-registering the same endpoint for the same user is fine.
	_, err = s.Upsert(ctx, "user1", "https://push.example.com/shared", push.Keys{P256DH: "p", Auth: "a"})
	assert.NoError(t, err)
}

func testDelete(t *testing.T, s push.Store) {
	ctx := context.Background()

	sub, err := s.Upsert(ctx, "user1", "https://push.example.com/ep1", push.Keys{P256DH: "p", Auth: "a"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, sub.ID))

	_, err = s.Get(ctx, "user1")
	assert.ErrorIs(t, err, push.ErrNotFound)

	// Deleting an already pruned subscription is a no-op.
	assert.NoError(t, s.Delete(ctx, sub.ID))
}

func testListExcluding(t *testing.T, s push.Store) {
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		userID := fmt.Sprintf("user%d", i)
		_, err := s.Upsert(ctx, userID, fmt.Sprintf("https://push.example.com/ep%d", i), push.Keys{P256DH: "p", Auth: "a"})
		require.NoError(t, err)
	}

	subs, err := s.ListExcluding(ctx, "user2")
	require.NoError(t, err)
	require.Len(t, subs, 4)
	for _, sub := range subs {
		assert.NotEqual(t, "user2", sub.UserID)
	}

	// Excluding an unknown user returns everyone.
	subs, err = s.ListExcluding(ctx, "stranger")
	require.NoError(t, err)
	assert.Len(t, subs, 5)
}
