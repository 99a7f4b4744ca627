package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PavLouis/PWA-Movies/model"
	"github.com/PavLouis/PWA-Movies/movie"
	"github.com/PavLouis/PWA-Movies/movie/memory"
	"github.com/PavLouis/PWA-Movies/movie/tests"
)

func TestMovie_CacheStore(t *testing.T) {
	backing := memory.NewInMemory()
	testStore := NewInCache(backing, time.Minute)

	// The decorator must behave exactly like the store it wraps, except
	// for serving repeated reads from cache. Deleting through the decorator
	// invalidates cached entries along the way.
	teardown := func() {
		backingMovies, err := backing.GetAllMovies(context.Background())
		require.NoError(t, err)
		for _, m := range backingMovies {
			require.NoError(t, testStore.DeleteMovie(context.Background(), m.ID))
		}
	}
	tests.RunStoreTests(t, testStore, teardown)
}

func TestMovie_CacheServesFromCache(t *testing.T) {
	ctx := context.Background()
	backing := memory.NewInMemory()
	cached := NewInCache(backing, time.Minute)

	m := &movie.Movie{ID: model.MustGenerateID(), Title: "Cached", CreatedAt: time.Now()}
	require.NoError(t, cached.CreateMovie(ctx, m))

	// Warm the cache, then remove from the backing store directly.
	_, err := cached.GetMovie(ctx, m.ID)
	require.NoError(t, err)
	require.NoError(t, backing.DeleteMovie(ctx, m.ID))

	got, err := cached.GetMovie(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cached", got.Title)
}

func TestMovie_CacheInvalidatesOnDelete(t *testing.T) {
	ctx := context.Background()
	cached := NewInCache(memory.NewInMemory(), time.Minute)

	m := &movie.Movie{ID: model.MustGenerateID(), Title: "Gone", CreatedAt: time.Now()}
	require.NoError(t, cached.CreateMovie(ctx, m))

	_, err := cached.GetMovie(ctx, m.ID)
	require.NoError(t, err)

	require.NoError(t, cached.DeleteMovie(ctx, m.ID))

	_, err = cached.GetMovie(ctx, m.ID)
	assert.ErrorIs(t, err, movie.ErrNotFound)
}

func TestMovie_CacheReturnsCopies(t *testing.T) {
	ctx := context.Background()
	cached := NewInCache(memory.NewInMemory(), time.Minute)

	m := &movie.Movie{ID: model.MustGenerateID(), Title: "Original", CreatedAt: time.Now()}
	require.NoError(t, cached.CreateMovie(ctx, m))

	first, err := cached.GetMovie(ctx, m.ID)
	require.NoError(t, err)
	first.Title = "Mutated"

	second, err := cached.GetMovie(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", second.Title)
}
