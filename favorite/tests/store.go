package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PavLouis/PWA-Movies/favorite"
	"github.com/PavLouis/PWA-Movies/model"
)

func RunStoreTests(t *testing.T, s favorite.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s favorite.Store){
		testAddAndRemove,
		testGetAll,
		testCount,
	} {
		tf(t, s)
		teardown()
	}
}

func testAddAndRemove(t *testing.T, s favorite.Store) {
	ctx := context.Background()
	movieID := model.MustGenerateID()

	exists, err := s.Exists(ctx, "fan", movieID)
	require.NoError(t, err)
	assert.False(t, exists)

	f := &favorite.Favorite{UserID: "fan", MovieID: movieID, CreatedAt: time.Now()}
	require.NoError(t, s.Add(ctx, f))

	err = s.Add(ctx, f)
	assert.ErrorIs(t, err, favorite.ErrAlreadyExists)

	exists, err = s.Exists(ctx, "fan", movieID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.Remove(ctx, "fan", movieID))

	err = s.Remove(ctx, "fan", movieID)
	assert.ErrorIs(t, err, favorite.ErrNotFound)

	exists, err = s.Exists(ctx, "fan", movieID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func testGetAll(t *testing.T, s favorite.Store) {
	ctx := context.Background()

	favorites, err := s.GetAll(ctx, "fan")
	require.NoError(t, err)
	assert.Empty(t, favorites)

	movieA := model.MustGenerateID()
	movieB := model.MustGenerateID()
	require.NoError(t, s.Add(ctx, &favorite.Favorite{UserID: "fan", MovieID: movieA, CreatedAt: time.Now()}))
	require.NoError(t, s.Add(ctx, &favorite.Favorite{UserID: "fan", MovieID: movieB, CreatedAt: time.Now()}))
	require.NoError(t, s.Add(ctx, &favorite.Favorite{UserID: "other", MovieID: movieA, CreatedAt: time.Now()}))

	favorites, err = s.GetAll(ctx, "fan")
	require.NoError(t, err)
	require.Len(t, favorites, 2)
	for _, f := range favorites {
		assert.Equal(t, "fan", f.UserID)
	}
}

func testCount(t *testing.T, s favorite.Store) {
	ctx := context.Background()

	count, err := s.Count(ctx, "fan")
	require.NoError(t, err)
	assert.Zero(t, count)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Add(ctx, &favorite.Favorite{
			UserID:    "fan",
			MovieID:   model.MustGenerateID(),
			CreatedAt: time.Now(),
		}))
	}

	count, err = s.Count(ctx, "fan")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
