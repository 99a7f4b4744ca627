package favorite

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PavLouis/PWA-Movies/auth"
	"github.com/PavLouis/PWA-Movies/movie"
)

type Server struct {
	log    *zap.Logger
	store  Store
	movies movie.Store
}

func NewServer(log *zap.Logger, store Store, movies movie.Store) *Server {
	return &Server{
		log:    log,
		store:  store,
		movies: movies,
	}
}

// RegisterAuthedRoutes mounts the favourite routes; all of them act on the
// authenticated user's own favourites. The count route gets its own path
// segment so it can't collide with the :movieId wildcard.
func (s *Server) RegisterAuthedRoutes(r gin.IRoutes) {
	r.POST("/api/favourites", s.Add)
	r.DELETE("/api/favourites/:movieId", s.Remove)
	r.GET("/api/favourites", s.GetAll)
	r.GET("/api/favourites-count", s.Count)
	r.GET("/api/favourites/:movieId", s.GetState)
}

type addRequest struct {
	MovieID string `json:"movieId"`
}

func (s *Server) Add(c *gin.Context) {
	ctx := c.Request.Context()

	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.MovieID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "movieId is required"})
		return
	}

	// Only catalog movies can be favourited.
	if _, err := s.movies.GetMovie(ctx, req.MovieID); err != nil {
		if errors.Is(err, movie.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Movie not found"})
			return
		}
		s.log.Error("Failed to fetch movie", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add favourite"})
		return
	}

	f := &Favorite{
		UserID:    auth.UserID(c),
		MovieID:   req.MovieID,
		CreatedAt: time.Now(),
	}

	if err := s.store.Add(ctx, f); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Movie already in favourites"})
			return
		}
		s.log.Error("Failed to add favourite", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add favourite"})
		return
	}

	c.JSON(http.StatusCreated, f)
}

func (s *Server) Remove(c *gin.Context) {
	err := s.store.Remove(c.Request.Context(), auth.UserID(c), c.Param("movieId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Favourite not found"})
			return
		}
		s.log.Error("Failed to remove favourite", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove favourite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Favourite removed successfully"})
}

// GetAll returns the caller's favourited movies, resolved against the
// catalog. Favourites pointing at deleted movies are skipped.
func (s *Server) GetAll(c *gin.Context) {
	ctx := c.Request.Context()

	favorites, err := s.store.GetAll(ctx, auth.UserID(c))
	if err != nil {
		s.log.Error("Failed to fetch favourites", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch favourites"})
		return
	}

	movies := make([]*movie.Movie, 0, len(favorites))
	for _, f := range favorites {
		m, err := s.movies.GetMovie(ctx, f.MovieID)
		if errors.Is(err, movie.ErrNotFound) {
			continue
		}
		if err != nil {
			s.log.Error("Failed to resolve favourite movie", zap.Error(err), zap.String("movie_id", f.MovieID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch favourites"})
			return
		}
		movies = append(movies, m)
	}

	c.JSON(http.StatusOK, movies)
}

func (s *Server) GetState(c *gin.Context) {
	exists, err := s.store.Exists(c.Request.Context(), auth.UserID(c), c.Param("movieId"))
	if err != nil {
		s.log.Error("Failed to check favourite", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check favourite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": exists})
}

func (s *Server) Count(c *gin.Context) {
	count, err := s.store.Count(c.Request.Context(), auth.UserID(c))
	if err != nil {
		s.log.Error("Failed to count favourites", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count favourites"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
