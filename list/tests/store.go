package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PavLouis/PWA-Movies/list"
	"github.com/PavLouis/PWA-Movies/model"
)

func RunStoreTests(t *testing.T, s list.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s list.Store){
		testListCrud,
		testListVisibility,
		testListMovies,
		testComments,
		testCommentPagination,
		testLikes,
	} {
		tf(t, s)
		teardown()
	}
}

func newTestList(userID, title string, isPublic bool) *list.List {
	return &list.List{
		ID:          model.MustGenerateID(),
		UserID:      userID,
		Title:       title,
		Description: "Films worth a rainy sunday.",
		IsPublic:    isPublic,
		CreatedAt:   time.Now(),
	}
}

func testListCrud(t *testing.T, s list.Store) {
	ctx := context.Background()

	_, err := s.GetList(ctx, "unknown")
	assert.ErrorIs(t, err, list.ErrListNotFound)

	l := newTestList("owner", "Sunday classics", true)
	require.NoError(t, s.CreateList(ctx, l))

	got, err := s.GetList(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.ID, got.ID)
	assert.Equal(t, l.UserID, got.UserID)
	assert.Equal(t, l.Title, got.Title)
	assert.Equal(t, l.Description, got.Description)
	assert.True(t, got.IsPublic)
	assert.False(t, got.CreatedAt.IsZero())

	got.Title = "Monday classics"
	got.IsPublic = false
	require.NoError(t, s.UpdateList(ctx, got))

	got, err = s.GetList(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Monday classics", got.Title)
	assert.False(t, got.IsPublic)

	err = s.UpdateList(ctx, newTestList("owner", "Never created", true))
	assert.ErrorIs(t, err, list.ErrListNotFound)

	require.NoError(t, s.DeleteList(ctx, l.ID))
	_, err = s.GetList(ctx, l.ID)
	assert.ErrorIs(t, err, list.ErrListNotFound)

	err = s.DeleteList(ctx, l.ID)
	assert.ErrorIs(t, err, list.ErrListNotFound)
}

func testListVisibility(t *testing.T, s list.Store) {
	ctx := context.Background()

	require.NoError(t, s.CreateList(ctx, newTestList("alice", "Public A", true)))
	require.NoError(t, s.CreateList(ctx, newTestList("alice", "Private A", false)))
	require.NoError(t, s.CreateList(ctx, newTestList("bob", "Public B", true)))

	public, err := s.GetPublicLists(ctx)
	require.NoError(t, err)
	assert.Len(t, public, 2)
	for _, l := range public {
		assert.True(t, l.IsPublic)
	}

	mine, err := s.GetUserLists(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, l := range mine {
		assert.Equal(t, "alice", l.UserID)
	}
}

func testListMovies(t *testing.T, s list.Store) {
	ctx := context.Background()

	l := newTestList("owner", "With movies", true)
	require.NoError(t, s.CreateList(ctx, l))

	movieA := model.MustGenerateID()
	movieB := model.MustGenerateID()

	require.NoError(t, s.AddMovie(ctx, l.ID, movieA))
	require.NoError(t, s.AddMovie(ctx, l.ID, movieB))

	err := s.AddMovie(ctx, l.ID, movieA)
	assert.ErrorIs(t, err, list.ErrMovieInList)

	ids, err := s.GetMovieIDs(ctx, l.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{movieA, movieB}, ids)

	require.NoError(t, s.RemoveMovie(ctx, l.ID, movieA))

	err = s.RemoveMovie(ctx, l.ID, movieA)
	assert.ErrorIs(t, err, list.ErrMovieNotInList)

	ids, err = s.GetMovieIDs(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{movieB}, ids)

	// Deleting the list drops its movie entries too.
	require.NoError(t, s.DeleteList(ctx, l.ID))
	ids, err = s.GetMovieIDs(ctx, l.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func testComments(t *testing.T, s list.Store) {
	ctx := context.Background()

	_, err := s.GetComment(ctx, "unknown")
	assert.ErrorIs(t, err, list.ErrCommentNotFound)

	l := newTestList("owner", "Commented", true)
	require.NoError(t, s.CreateList(ctx, l))

	c := &list.Comment{
		ID:        model.MustGenerateID(),
		ListID:    l.ID,
		UserID:    "commenter",
		Content:   "Great picks!",
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.AddComment(ctx, c))

	got, err := s.GetComment(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Content, got.Content)
	assert.Equal(t, c.UserID, got.UserID)
	assert.Equal(t, c.ListID, got.ListID)

	got.Content = "Edited"
	require.NoError(t, s.UpdateComment(ctx, got))

	got, err = s.GetComment(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited", got.Content)

	require.NoError(t, s.DeleteComment(ctx, c.ID))
	err = s.DeleteComment(ctx, c.ID)
	assert.ErrorIs(t, err, list.ErrCommentNotFound)
}

func testCommentPagination(t *testing.T, s list.Store) {
	ctx := context.Background()

	l := newTestList("owner", "Busy list", true)
	require.NoError(t, s.CreateList(ctx, l))

	base := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.AddComment(ctx, &list.Comment{
			ID:        model.MustGenerateID(),
			ListID:    l.ID,
			UserID:    "commenter",
			Content:   fmt.Sprintf("Comment %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	page, total, err := s.GetComments(ctx, l.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 2)

	page, total, err = s.GetComments(ctx, l.ID, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 1)

	page, total, err = s.GetComments(ctx, l.ID, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, page)
}

func testLikes(t *testing.T, s list.Store) {
	ctx := context.Background()

	l := newTestList("owner", "Liked list", true)
	require.NoError(t, s.CreateList(ctx, l))

	_, err := s.GetLike(ctx, "fan", l.ID)
	assert.ErrorIs(t, err, list.ErrLikeNotFound)

	require.NoError(t, s.UpsertLike(ctx, &list.Like{UserID: "fan", ListID: l.ID, Liked: true, CreatedAt: time.Now()}))
	require.NoError(t, s.UpsertLike(ctx, &list.Like{UserID: "otherfan", ListID: l.ID, Liked: true, CreatedAt: time.Now()}))

	got, err := s.GetLike(ctx, "fan", l.ID)
	require.NoError(t, err)
	assert.True(t, got.Liked)

	count, err := s.CountLikes(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Untoggling keeps the record but drops it from the count.
	require.NoError(t, s.UpsertLike(ctx, &list.Like{UserID: "fan", ListID: l.ID, Liked: false, CreatedAt: time.Now()}))

	got, err = s.GetLike(ctx, "fan", l.ID)
	require.NoError(t, err)
	assert.False(t, got.Liked)

	count, err = s.CountLikes(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	liked, err := s.GetLikedLists(ctx, "otherfan")
	require.NoError(t, err)
	assert.Equal(t, []string{l.ID}, liked)

	liked, err = s.GetLikedLists(ctx, "fan")
	require.NoError(t, err)
	assert.Empty(t, liked)
}
