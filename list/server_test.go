package list_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PavLouis/PWA-Movies/auth"
	"github.com/PavLouis/PWA-Movies/list"
	listmemory "github.com/PavLouis/PWA-Movies/list/memory"
	"github.com/PavLouis/PWA-Movies/model"
	"github.com/PavLouis/PWA-Movies/movie"
	moviememory "github.com/PavLouis/PWA-Movies/movie/memory"
	"github.com/PavLouis/PWA-Movies/push"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingDispatcher struct {
	targets  []string
	payloads []*push.Payload
}

func (r *recordingDispatcher) SendToUser(_ context.Context, userID string, payload *push.Payload) error {
	r.targets = append(r.targets, userID)
	r.payloads = append(r.payloads, payload)
	return nil
}

func (r *recordingDispatcher) Broadcast(_ context.Context, _ string, payload *push.Payload) error {
	r.payloads = append(r.payloads, payload)
	return nil
}

type env struct {
	router     *gin.Engine
	lists      list.Store
	movies     movie.Store
	dispatcher *recordingDispatcher
}

func setup(t *testing.T) *env {
	t.Helper()

	e := &env{
		lists:      listmemory.NewInMemory(),
		movies:     moviememory.NewInMemory(),
		dispatcher: &recordingDispatcher{},
	}

	server := list.NewServer(zap.NewNop(), e.lists, e.movies, push.NewNotifier(e.dispatcher))

	e.router = gin.New()
	server.RegisterRoutes(e.router)

	authed := e.router.Group("/", func(c *gin.Context) {
		if userID := c.GetHeader("X-Test-User"); userID != "" {
			auth.SetUserID(c, userID)
		}
		c.Next()
	})
	server.RegisterAuthedRoutes(authed)

	return e
}

func (e *env) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) createList(t *testing.T, owner, title string, isPublic bool) *list.List {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/reclist", owner, gin.H{
		"title":       title,
		"description": "some films",
		"isPublic":    isPublic,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var l list.List
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &l))
	return &l
}

func TestCreateList(t *testing.T) {
	e := setup(t)

	l := e.createList(t, "alice", "Sunday classics", true)
	assert.Equal(t, "alice", l.UserID)
	assert.Equal(t, "Sunday classics", l.Title)
	assert.True(t, l.IsPublic)

	rec := e.do(t, http.MethodPost, "/api/reclist", "alice", gin.H{"title": "No description"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPublicLists(t *testing.T) {
	e := setup(t)

	e.createList(t, "alice", "Public", true)
	e.createList(t, "alice", "Private", false)

	rec := e.do(t, http.MethodGet, "/api/reclist", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var lists []*list.List
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lists))
	require.Len(t, lists, 1)
	assert.Equal(t, "Public", lists[0].Title)
}

func TestGetUserLists(t *testing.T) {
	e := setup(t)

	e.createList(t, "alice", "Mine public", true)
	e.createList(t, "alice", "Mine private", false)
	e.createList(t, "bob", "Not mine", true)

	rec := e.do(t, http.MethodGet, "/api/me/reclists", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var lists []*list.List
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lists))
	require.Len(t, lists, 2)
	for _, l := range lists {
		assert.Equal(t, "alice", l.UserID)
	}
}

func TestGetList_Visibility(t *testing.T) {
	e := setup(t)

	private := e.createList(t, "alice", "Private", false)

	rec := e.do(t, http.MethodGet, "/api/reclist/"+private.ID, "bob", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/reclist/"+private.ID, "alice", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/reclist/unknown", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetList_ResolvesMovies(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	m := &movie.Movie{ID: model.MustGenerateID(), Title: "The Thing"}
	require.NoError(t, e.movies.CreateMovie(ctx, m))

	l := e.createList(t, "alice", "With movies", true)

	rec := e.do(t, http.MethodPost, "/api/reclist/"+l.ID+"/movies", "alice", gin.H{"movieId": m.ID})
	require.Equal(t, http.StatusCreated, rec.Code)

	// A movie id pointing at a deleted catalog entry is skipped, not an error.
	rec = e.do(t, http.MethodPost, "/api/reclist/"+l.ID+"/movies", "alice", gin.H{"movieId": "deleted-movie"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/reclist/"+l.ID, "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Title  string         `json:"title"`
		Movies []*movie.Movie `json:"movies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "With movies", resp.Title)
	require.Len(t, resp.Movies, 1)
	assert.Equal(t, "The Thing", resp.Movies[0].Title)
}

func TestAddMovie(t *testing.T) {
	e := setup(t)

	l := e.createList(t, "alice", "Mine", true)

	rec := e.do(t, http.MethodPost, "/api/reclist/"+l.ID+"/movies", "bob", gin.H{"movieId": "m1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/reclist/"+l.ID+"/movies", "alice", gin.H{"movieId": "m1"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/reclist/"+l.ID+"/movies", "alice", gin.H{"movieId": "m1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/reclist/"+l.ID+"/movies/m1", "alice", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/reclist/"+l.ID+"/movies/m1", "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateList(t *testing.T) {
	e := setup(t)

	l := e.createList(t, "alice", "Before", false)

	rec := e.do(t, http.MethodPut, "/api/reclist/"+l.ID, "bob", gin.H{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodPut, "/api/reclist/"+l.ID, "alice", gin.H{"title": "After", "isPublic": true})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated list.List
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "After", updated.Title)
	assert.True(t, updated.IsPublic)
	// Unmentioned fields keep their value.
	assert.Equal(t, "some films", updated.Description)
}

func TestDeleteList(t *testing.T) {
	e := setup(t)

	l := e.createList(t, "alice", "Doomed", true)

	rec := e.do(t, http.MethodDelete, "/api/reclist/"+l.ID, "bob", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/reclist/"+l.ID, "alice", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/reclist/"+l.ID, "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddComment(t *testing.T) {
	e := setup(t)

	l := e.createList(t, "alice", "Commented", true)

	rec := e.do(t, http.MethodPost, "/api/list-comments/"+l.ID, "bob", gin.H{"content": "Great picks!"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var comment list.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comment))
	assert.Equal(t, "bob", comment.UserID)
	assert.Equal(t, "Great picks!", comment.Content)

	// The owner is notified about the foreign comment.
	require.Len(t, e.dispatcher.targets, 1)
	assert.Equal(t, "alice", e.dispatcher.targets[0])
	assert.Equal(t, push.TypeComment, e.dispatcher.payloads[0].Type)
	assert.Contains(t, e.dispatcher.payloads[0].Body, "Commented")
	assert.Equal(t, l.ID, e.dispatcher.payloads[0].Data.ListID)

	// Owners commenting their own list stay silent.
	rec = e.do(t, http.MethodPost, "/api/list-comments/"+l.ID, "alice", gin.H{"content": "Thanks!"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, e.dispatcher.targets, 1)

	rec = e.do(t, http.MethodPost, "/api/list-comments/"+l.ID, "bob", gin.H{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/list-comments/unknown", "bob", gin.H{"content": "Hello?"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetComments_Pagination(t *testing.T) {
	e := setup(t)

	l := e.createList(t, "alice", "Busy", true)
	for i := 0; i < 5; i++ {
		rec := e.do(t, http.MethodPost, "/api/list-comments/"+l.ID, "bob", gin.H{"content": "Comment"})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := e.do(t, http.MethodGet, "/api/list-comments/"+l.ID+"?page=2&limit=2", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Comments      []*list.Comment `json:"comments"`
		CurrentPage   int             `json:"currentPage"`
		TotalPages    int             `json:"totalPages"`
		TotalComments int             `json:"totalComments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Comments, 2)
	assert.Equal(t, 2, resp.CurrentPage)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 5, resp.TotalComments)
}

func TestEditComment(t *testing.T) {
	e := setup(t)

	l := e.createList(t, "alice", "Edited", true)
	rec := e.do(t, http.MethodPost, "/api/list-comments/"+l.ID, "bob", gin.H{"content": "Original"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var comment list.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comment))

	path := "/api/list-comments/" + l.ID + "/comments/" + comment.ID

	// Only the author can edit; even the list owner gets a 404.
	rec = e.do(t, http.MethodPut, path, "alice", gin.H{"content": "Hijacked"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodPut, path, "bob", gin.H{"content": "Edited"})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated list.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Edited", updated.Content)
}

func TestDeleteComment(t *testing.T) {
	e := setup(t)

	l := e.createList(t, "alice", "Moderated", true)

	addComment := func() string {
		rec := e.do(t, http.MethodPost, "/api/list-comments/"+l.ID, "bob", gin.H{"content": "Hi"})
		require.Equal(t, http.StatusCreated, rec.Code)
		var comment list.Comment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comment))
		return comment.ID
	}

	// A bystander may not delete.
	id := addComment()
	rec := e.do(t, http.MethodDelete, "/api/list-comments/"+l.ID+"/comments/"+id, "carol", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The author may.
	rec = e.do(t, http.MethodDelete, "/api/list-comments/"+l.ID+"/comments/"+id, "bob", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// So may the list owner.
	id = addComment()
	rec = e.do(t, http.MethodDelete, "/api/list-comments/"+l.ID+"/comments/"+id, "alice", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/list-comments/"+l.ID+"/comments/"+id, "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func toggle(t *testing.T, e *env, listID, userID string) bool {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/list-likes/"+listID, userID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Liked bool `json:"liked"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Liked
}

func TestToggleLike_NotificationPolicy(t *testing.T) {
	e := setup(t)

	l := e.createList(t, "alice", "Liked", true)

	// First like notifies with the first-time suffix.
	assert.True(t, toggle(t, e, l.ID, "bob"))
	require.Len(t, e.dispatcher.payloads, 1)
	assert.Equal(t, push.TypeLike, e.dispatcher.payloads[0].Type)
	assert.True(t, strings.HasSuffix(e.dispatcher.payloads[0].Body, "for the first time !"), e.dispatcher.payloads[0].Body)
	assert.Equal(t, []string{"alice"}, e.dispatcher.targets)

	// Untoggling is silent.
	assert.False(t, toggle(t, e, l.ID, "bob"))
	assert.Len(t, e.dispatcher.payloads, 1)

	// Re-liking notifies again, without the first-time suffix.
	assert.True(t, toggle(t, e, l.ID, "bob"))
	require.Len(t, e.dispatcher.payloads, 2)
	assert.False(t, strings.HasSuffix(e.dispatcher.payloads[1].Body, "for the first time !"))

	// Self-likes never notify.
	assert.True(t, toggle(t, e, l.ID, "alice"))
	assert.Len(t, e.dispatcher.payloads, 2)

	rec := e.do(t, http.MethodPost, "/api/list-likes/unknown", "bob", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLikeStatusAndCount(t *testing.T) {
	e := setup(t)

	l := e.createList(t, "alice", "Counted", true)

	rec := e.do(t, http.MethodGet, "/api/list-likes/"+l.ID, "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"liked": false}`, rec.Body.String())

	toggle(t, e, l.ID, "bob")
	toggle(t, e, l.ID, "carol")

	rec = e.do(t, http.MethodGet, "/api/list-likes/"+l.ID, "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"liked": true}`, rec.Body.String())

	rec = e.do(t, http.MethodGet, "/api/list-likes/"+l.ID+"/count", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count": 2}`, rec.Body.String())
}

func TestGetLikedLists_OnlyPublic(t *testing.T) {
	e := setup(t)

	public := e.createList(t, "alice", "Public", true)
	private := e.createList(t, "alice", "Private", false)

	toggle(t, e, public.ID, "bob")
	toggle(t, e, private.ID, "bob")

	rec := e.do(t, http.MethodGet, "/api/me/liked-lists", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var lists []*list.List
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lists))
	require.Len(t, lists, 1)
	assert.Equal(t, public.ID, lists[0].ID)
}
