package list

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PavLouis/PWA-Movies/auth"
	"github.com/PavLouis/PWA-Movies/model"
	"github.com/PavLouis/PWA-Movies/movie"
	"github.com/PavLouis/PWA-Movies/push"
)

type Server struct {
	log      *zap.Logger
	store    Store
	movies   movie.Store
	notifier *push.Notifier
}

func NewServer(log *zap.Logger, store Store, movies movie.Store, notifier *push.Notifier) *Server {
	return &Server{
		log:      log,
		store:    store,
		movies:   movies,
		notifier: notifier,
	}
}

// RegisterRoutes mounts the routes that need no authentication.
func (s *Server) RegisterRoutes(r gin.IRoutes) {
	r.GET("/api/reclist", s.GetPublicLists)
	r.GET("/api/list-likes/:id/count", s.GetLikeCount)
}

// RegisterAuthedRoutes mounts the routes that act on behalf of a user. The
// caller-scoped reads live under /api/me so they never collide with the :id
// wildcards in the router tree.
func (s *Server) RegisterAuthedRoutes(r gin.IRoutes) {
	r.POST("/api/reclist", s.CreateList)
	r.GET("/api/me/reclists", s.GetUserLists)
	r.GET("/api/reclist/:id", s.GetList)
	r.PUT("/api/reclist/:id", s.UpdateList)
	r.DELETE("/api/reclist/:id", s.DeleteList)
	r.POST("/api/reclist/:id/movies", s.AddMovie)
	r.DELETE("/api/reclist/:id/movies/:movieId", s.RemoveMovie)

	r.POST("/api/list-comments/:id", s.AddComment)
	r.GET("/api/list-comments/:id", s.GetComments)
	r.PUT("/api/list-comments/:id/comments/:commentId", s.EditComment)
	r.DELETE("/api/list-comments/:id/comments/:commentId", s.DeleteComment)

	r.POST("/api/list-likes/:id", s.ToggleLike)
	r.GET("/api/list-likes/:id", s.GetLikeStatus)
	r.GET("/api/me/liked-lists", s.GetLikedLists)
}

type createListRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
}

func (s *Server) CreateList(c *gin.Context) {
	var req createListRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" || req.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}

	l := &List{
		ID:          model.MustGenerateID(),
		UserID:      auth.UserID(c),
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		CreatedAt:   time.Now(),
	}

	if err := s.store.CreateList(c.Request.Context(), l); err != nil {
		s.log.Error("Failed to create list", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create list"})
		return
	}

	c.JSON(http.StatusCreated, l)
}

func (s *Server) GetPublicLists(c *gin.Context) {
	lists, err := s.store.GetPublicLists(c.Request.Context())
	if err != nil {
		s.log.Error("Failed to fetch lists", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch lists"})
		return
	}

	c.JSON(http.StatusOK, lists)
}

func (s *Server) GetUserLists(c *gin.Context) {
	lists, err := s.store.GetUserLists(c.Request.Context(), auth.UserID(c))
	if err != nil {
		s.log.Error("Failed to fetch user lists", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user lists"})
		return
	}

	c.JSON(http.StatusOK, lists)
}

type listResponse struct {
	*List
	Movies []*movie.Movie `json:"movies"`
}

// GetList returns a list and its resolved movies. Private lists are only
// served to their owner.
func (s *Server) GetList(c *gin.Context) {
	ctx := c.Request.Context()

	l, err := s.store.GetList(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrListNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
			return
		}
		s.log.Error("Failed to fetch list", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch list"})
		return
	}

	if !l.IsPublic && l.UserID != auth.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	ids, err := s.store.GetMovieIDs(ctx, l.ID)
	if err != nil {
		s.log.Error("Failed to fetch list movies", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch list"})
		return
	}

	movies := make([]*movie.Movie, 0, len(ids))
	for _, id := range ids {
		m, err := s.movies.GetMovie(ctx, id)
		if errors.Is(err, movie.ErrNotFound) {
			// The movie was deleted from the catalog after being listed.
			continue
		}
		if err != nil {
			s.log.Error("Failed to resolve list movie", zap.Error(err), zap.String("movie_id", id))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch list"})
			return
		}
		movies = append(movies, m)
	}

	c.JSON(http.StatusOK, &listResponse{List: l, Movies: movies})
}

type updateListRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"isPublic"`
}

func (s *Server) UpdateList(c *gin.Context) {
	ctx := c.Request.Context()

	l, ok := s.getOwnedList(c)
	if !ok {
		return
	}

	var req updateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Title != nil {
		l.Title = *req.Title
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.IsPublic != nil {
		l.IsPublic = *req.IsPublic
	}

	if err := s.store.UpdateList(ctx, l); err != nil {
		s.log.Error("Failed to update list", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update list"})
		return
	}

	c.JSON(http.StatusOK, l)
}

func (s *Server) DeleteList(c *gin.Context) {
	l, ok := s.getOwnedList(c)
	if !ok {
		return
	}

	if err := s.store.DeleteList(c.Request.Context(), l.ID); err != nil {
		s.log.Error("Failed to delete list", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete list"})
		return
	}

	c.Status(http.StatusNoContent)
}

type addMovieRequest struct {
	MovieID string `json:"movieId"`
}

func (s *Server) AddMovie(c *gin.Context) {
	l, ok := s.getOwnedList(c)
	if !ok {
		return
	}

	var req addMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.MovieID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "movieId is required"})
		return
	}

	if err := s.store.AddMovie(c.Request.Context(), l.ID, req.MovieID); err != nil {
		if errors.Is(err, ErrMovieInList) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Movie already in list"})
			return
		}
		s.log.Error("Failed to add movie to list", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add movie to list"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"msg": "Movie added to the list !"})
}

func (s *Server) RemoveMovie(c *gin.Context) {
	l, ok := s.getOwnedList(c)
	if !ok {
		return
	}

	err := s.store.RemoveMovie(c.Request.Context(), l.ID, c.Param("movieId"))
	if err != nil {
		if errors.Is(err, ErrMovieNotInList) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found in list"})
			return
		}
		s.log.Error("Failed to remove movie from list", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove movie from list"})
		return
	}

	c.Status(http.StatusNoContent)
}

// getOwnedList loads the list from the :id param and enforces ownership,
// writing the error response itself when it returns ok=false.
func (s *Server) getOwnedList(c *gin.Context) (*List, bool) {
	l, err := s.store.GetList(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrListNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
			return nil, false
		}
		s.log.Error("Failed to fetch list", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch list"})
		return nil, false
	}

	if l.UserID != auth.UserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return nil, false
	}

	return l, true
}

type addCommentRequest struct {
	Content string `json:"content"`
}

func (s *Server) AddComment(c *gin.Context) {
	ctx := c.Request.Context()
	userID := auth.UserID(c)

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment content is required"})
		return
	}

	l, err := s.store.GetList(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrListNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
			return
		}
		s.log.Error("Failed to fetch list", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding comment"})
		return
	}

	comment := &Comment{
		ID:        model.MustGenerateID(),
		ListID:    l.ID,
		UserID:    userID,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}

	if err := s.store.AddComment(ctx, comment); err != nil {
		s.log.Error("Failed to add comment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding comment"})
		return
	}

	if err := s.notifier.ListCommented(ctx, l.UserID, userID, l.ID, l.Title); err != nil {
		s.log.Warn("Failed to notify list owner about comment", zap.Error(err))
	}

	c.JSON(http.StatusCreated, comment)
}

func (s *Server) GetComments(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}

	comments, total, err := s.store.GetComments(c.Request.Context(), c.Param("id"), limit, (page-1)*limit)
	if err != nil {
		s.log.Error("Failed to fetch comments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments":      comments,
		"currentPage":   page,
		"totalPages":    (total + limit - 1) / limit,
		"totalComments": total,
	})
}

func (s *Server) EditComment(c *gin.Context) {
	ctx := c.Request.Context()

	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment content is required"})
		return
	}

	comment, err := s.store.GetComment(ctx, c.Param("commentId"))
	if err != nil && !errors.Is(err, ErrCommentNotFound) {
		s.log.Error("Failed to fetch comment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating comment"})
		return
	}

	// A foreign comment is indistinguishable from a missing one to the
	// caller, matching the lookup-by-author semantics.
	if err != nil || comment.UserID != auth.UserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found or unauthorized"})
		return
	}

	comment.Content = req.Content
	if err := s.store.UpdateComment(ctx, comment); err != nil {
		s.log.Error("Failed to update comment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating comment"})
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (s *Server) DeleteComment(c *gin.Context) {
	ctx := c.Request.Context()
	userID := auth.UserID(c)

	comment, err := s.store.GetComment(ctx, c.Param("commentId"))
	if err != nil {
		if errors.Is(err, ErrCommentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return
		}
		s.log.Error("Failed to fetch comment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting comment"})
		return
	}

	// The comment author and the list owner may both delete.
	if comment.UserID != userID {
		l, err := s.store.GetList(ctx, comment.ListID)
		if err != nil || l.UserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized to delete this comment"})
			return
		}
	}

	if err := s.store.DeleteComment(ctx, comment.ID); err != nil {
		s.log.Error("Failed to delete comment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

// ToggleLike flips the caller's like state for a list. The owner is notified
// only on transitions into the liked state; the very first like gets a
// distinct body.
func (s *Server) ToggleLike(c *gin.Context) {
	ctx := c.Request.Context()
	userID := auth.UserID(c)

	l, err := s.store.GetList(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrListNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
			return
		}
		s.log.Error("Failed to fetch list", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error toggling like"})
		return
	}

	like, err := s.store.GetLike(ctx, userID, l.ID)
	firstTime := false
	switch {
	case errors.Is(err, ErrLikeNotFound):
		like = &Like{UserID: userID, ListID: l.ID, Liked: true, CreatedAt: time.Now()}
		firstTime = true
	case err != nil:
		s.log.Error("Failed to fetch like", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error toggling like"})
		return
	default:
		like.Liked = !like.Liked
	}

	if err := s.store.UpsertLike(ctx, like); err != nil {
		s.log.Error("Failed to save like", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error toggling like"})
		return
	}

	if err := s.notifier.ListLiked(ctx, l.UserID, userID, l.ID, l.Title, like.Liked, firstTime); err != nil {
		s.log.Warn("Failed to notify list owner about like", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"liked": like.Liked})
}

func (s *Server) GetLikeStatus(c *gin.Context) {
	like, err := s.store.GetLike(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrLikeNotFound) {
			c.JSON(http.StatusOK, gin.H{"liked": false})
			return
		}
		s.log.Error("Failed to fetch like", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error getting like status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": like.Liked})
}

func (s *Server) GetLikeCount(c *gin.Context) {
	count, err := s.store.CountLikes(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.log.Error("Failed to count likes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error getting like count"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// GetLikedLists returns the public lists the caller currently likes.
func (s *Server) GetLikedLists(c *gin.Context) {
	ctx := c.Request.Context()

	ids, err := s.store.GetLikedLists(ctx, auth.UserID(c))
	if err != nil {
		s.log.Error("Failed to fetch liked lists", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error getting liked lists"})
		return
	}

	lists := make([]*List, 0, len(ids))
	for _, id := range ids {
		l, err := s.store.GetList(ctx, id)
		if errors.Is(err, ErrListNotFound) {
			continue
		}
		if err != nil {
			s.log.Error("Failed to resolve liked list", zap.Error(err), zap.String("list_id", id))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error getting liked lists"})
			return
		}
		if l.IsPublic {
			lists = append(lists, l)
		}
	}

	c.JSON(http.StatusOK, lists)
}
