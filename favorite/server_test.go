package favorite_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PavLouis/PWA-Movies/auth"
	"github.com/PavLouis/PWA-Movies/favorite"
	favoritememory "github.com/PavLouis/PWA-Movies/favorite/memory"
	"github.com/PavLouis/PWA-Movies/model"
	"github.com/PavLouis/PWA-Movies/movie"
	moviememory "github.com/PavLouis/PWA-Movies/movie/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type env struct {
	router *gin.Engine
	movies movie.Store
}

func setup(t *testing.T) *env {
	t.Helper()

	e := &env{movies: moviememory.NewInMemory()}

	server := favorite.NewServer(zap.NewNop(), favoritememory.NewInMemory(), e.movies)

	e.router = gin.New()
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
	req.Header.Set("X-Test-User", userID)

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) addMovie(t *testing.T, title string) *movie.Movie {
	t.Helper()

	m := &movie.Movie{ID: model.MustGenerateID(), Title: title}
	require.NoError(t, e.movies.CreateMovie(context.Background(), m))
	return m
}

func TestAddFavourite(t *testing.T) {
	e := setup(t)
	m := e.addMovie(t, "The Thing")

	rec := e.do(t, http.MethodPost, "/api/favourites", "fan", gin.H{"movieId": m.ID})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/favourites", "fan", gin.H{"movieId": m.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/favourites", "fan", gin.H{"movieId": "unknown"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/favourites", "fan", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveFavourite(t *testing.T) {
	e := setup(t)
	m := e.addMovie(t, "The Thing")

	rec := e.do(t, http.MethodPost, "/api/favourites", "fan", gin.H{"movieId": m.ID})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/favourites/"+m.ID, "fan", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/favourites/"+m.ID, "fan", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetFavourites(t *testing.T) {
	e := setup(t)
	keep := e.addMovie(t, "Keep")
	gone := e.addMovie(t, "Gone")

	for _, m := range []*movie.Movie{keep, gone} {
		rec := e.do(t, http.MethodPost, "/api/favourites", "fan", gin.H{"movieId": m.ID})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	// Favourites of since-deleted movies are skipped.
	require.NoError(t, e.movies.DeleteMovie(context.Background(), gone.ID))

	rec := e.do(t, http.MethodGet, "/api/favourites", "fan", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var movies []*movie.Movie
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movies))
	require.Len(t, movies, 1)
	assert.Equal(t, "Keep", movies[0].Title)

	// Favourites are scoped per user.
	rec = e.do(t, http.MethodGet, "/api/favourites", "other", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestFavouriteState(t *testing.T) {
	e := setup(t)
	m := e.addMovie(t, "The Thing")

	rec := e.do(t, http.MethodGet, "/api/favourites/"+m.ID, "fan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"state": false}`, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/favourites", "fan", gin.H{"movieId": m.ID})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/favourites/"+m.ID, "fan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"state": true}`, rec.Body.String())
}

func TestFavouriteCount(t *testing.T) {
	e := setup(t)

	for i := 0; i < 3; i++ {
		m := e.addMovie(t, "Movie")
		rec := e.do(t, http.MethodPost, "/api/favourites", "fan", gin.H{"movieId": m.ID})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := e.do(t, http.MethodGet, "/api/favourites-count", "fan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count": 3}`, rec.Body.String())
}
