package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PavLouis/PWA-Movies/model"
	"github.com/PavLouis/PWA-Movies/movie"
)

func RunStoreTests(t *testing.T, s movie.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s movie.Store){
		testCreateAndGet,
		testGetAll,
		testDelete,
		testMovieWithoutImage,
	} {
		tf(t, s)
		teardown()
	}
}

func newTestMovie(title string) *movie.Movie {
	return &movie.Movie{
		ID:          model.MustGenerateID(),
		Title:       title,
		ReleaseYear: 1982,
		Description: "A shape-shifting alien terrorizes an Antarctic research station.",
		Genre:       "Horror",
		VoteAverage: 8.2,
		Image: &movie.ImageRef{
			BlobID:      model.MustGenerateID(),
			Filename:    "poster.png",
			ContentType: "image/png",
			Width:       1200,
			Height:      800,
			BlurHash:    "LEHV6nWB2yk8pyo0adR*.7kCMdnj",
		},
		CreatedAt: time.Now(),
	}
}

func testCreateAndGet(t *testing.T, s movie.Store) {
	ctx := context.Background()

	_, err := s.GetMovie(ctx, "unknown")
	assert.ErrorIs(t, err, movie.ErrNotFound)

	m := newTestMovie("The Thing")
	require.NoError(t, s.CreateMovie(ctx, m))

	got, err := s.GetMovie(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, m.Title, got.Title)
	assert.Equal(t, m.ReleaseYear, got.ReleaseYear)
	assert.Equal(t, m.Description, got.Description)
	assert.Equal(t, m.Genre, got.Genre)
	assert.Equal(t, m.VoteAverage, got.VoteAverage)
	require.NotNil(t, got.Image)
	assert.Equal(t, *m.Image, *got.Image)
	assert.False(t, got.CreatedAt.IsZero())
}

func testGetAll(t *testing.T, s movie.Store) {
	ctx := context.Background()

	movies, err := s.GetAllMovies(ctx)
	require.NoError(t, err)
	assert.Empty(t, movies)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateMovie(ctx, newTestMovie(fmt.Sprintf("Movie %d", i))))
	}

	movies, err = s.GetAllMovies(ctx)
	require.NoError(t, err)
	assert.Len(t, movies, 3)
}

func testDelete(t *testing.T, s movie.Store) {
	ctx := context.Background()

	m := newTestMovie("Gone")
	require.NoError(t, s.CreateMovie(ctx, m))

	require.NoError(t, s.DeleteMovie(ctx, m.ID))

	_, err := s.GetMovie(ctx, m.ID)
	assert.ErrorIs(t, err, movie.ErrNotFound)

	err = s.DeleteMovie(ctx, m.ID)
	assert.ErrorIs(t, err, movie.ErrNotFound)
}

func testMovieWithoutImage(t *testing.T, s movie.Store) {
	ctx := context.Background()

	m := newTestMovie("No Poster")
	m.Image = nil
	require.NoError(t, s.CreateMovie(ctx, m))

	got, err := s.GetMovie(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Image)
}
