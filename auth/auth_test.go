package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(secret string) *gin.Engine {
	router := gin.New()
	router.GET("/whoami", Middleware(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserID(c)})
	})
	return router
}

func get(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(secret, "user-1", "testuser")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	rec := get(newRouter(secret), "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"userId": "user-1"}`, rec.Body.String())
}

func TestMiddleware_MissingHeader(t *testing.T) {
	rec := get(newRouter(secret), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_NotBearer(t *testing.T) {
	token, err := GenerateToken(secret, "user-1", "testuser")
	require.NoError(t, err)

	rec := get(newRouter(secret), "Basic "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_InvalidToken(t *testing.T) {
	rec := get(newRouter(secret), "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_WrongSecret(t *testing.T) {
	token, err := GenerateToken("other-secret", "user-1", "testuser")
	require.NoError(t, err)

	rec := get(newRouter(secret), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
