package movie

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PavLouis/PWA-Movies/auth"
	"github.com/PavLouis/PWA-Movies/blobstore"
	"github.com/PavLouis/PWA-Movies/image"
	"github.com/PavLouis/PWA-Movies/model"
	"github.com/PavLouis/PWA-Movies/push"
)

// Transcoded posters are immutable, so clients may cache them for a year.
const imageCacheControl = "public, max-age=31536000"

type Server struct {
	log      *zap.Logger
	store    Store
	blobs    blobstore.Store
	notifier *push.Notifier
}

func NewServer(log *zap.Logger, store Store, blobs blobstore.Store, notifier *push.Notifier) *Server {
	return &Server{
		log:      log,
		store:    store,
		blobs:    blobs,
		notifier: notifier,
	}
}

// RegisterRoutes mounts the read-only movie routes.
func (s *Server) RegisterRoutes(r gin.IRoutes) {
	r.GET("/movies", s.GetAllMovies)
	r.GET("/movies/:id", s.GetMovie)
	r.GET("/movies/:id/image", s.GetMovieImage)
}

// RegisterAuthedRoutes mounts the routes that mutate the catalog.
func (s *Server) RegisterAuthedRoutes(r gin.IRoutes) {
	r.POST("/movies", s.Upload)
	r.DELETE("/movies/:id", s.DeleteMovie)
}

// Upload creates a movie from multipart metadata plus a poster image. The
// poster streams into the blob store; the record referencing the finalized
// object is persisted afterwards, then subscribers are notified.
func (s *Server) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image is required"})
		return
	}
	defer file.Close()

	title := c.PostForm("title")
	releaseYear := c.PostForm("releaseYear")
	description := c.PostForm("description")
	genre := c.PostForm("genre")
	voteAverage := c.PostForm("voteAverage")

	if title == "" || releaseYear == "" || description == "" || genre == "" || voteAverage == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}

	year, err := strconv.Atoi(releaseYear)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "releaseYear must be a number"})
		return
	}

	score, err := strconv.ParseFloat(voteAverage, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "voteAverage must be a number"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	filename := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), header.Filename)

	blobID, err := blobstore.Put(ctx, s.blobs, filename, contentType, file)
	if err != nil {
		s.log.Error("Failed to store poster image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	// The poster is already durable; everything below cleans it up again on
	// failure so a rejected upload leaves no orphaned object.
	data, _, err := blobstore.ReadAll(ctx, s.blobs, blobID)
	if err != nil {
		s.deleteBlob(ctx, blobID)
		s.log.Error("Failed to read back poster image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	info, err := image.GetInfo(data)
	if err != nil {
		s.deleteBlob(ctx, blobID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image is not a valid image file"})
		return
	}

	m := &Movie{
		ID:          model.MustGenerateID(),
		Title:       title,
		ReleaseYear: year,
		Description: description,
		Genre:       genre,
		VoteAverage: score,
		Image: &ImageRef{
			BlobID:      blobID,
			Filename:    filename,
			ContentType: contentType,
			Width:       info.Width,
			Height:      info.Height,
			BlurHash:    info.BlurHash,
		},
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateMovie(ctx, m); err != nil {
		s.deleteBlob(ctx, blobID)
		s.log.Error("Failed to create movie record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create movie"})
		return
	}

	if err := s.notifier.MovieAdded(ctx, auth.UserID(c), m.ID, m.Title); err != nil {
		// Delivery is best effort and never affects the upload outcome.
		s.log.Warn("Failed to notify subscribers about new movie", zap.Error(err))
	}

	c.JSON(http.StatusCreated, m)
}

func (s *Server) GetAllMovies(c *gin.Context) {
	movies, err := s.store.GetAllMovies(c.Request.Context())
	if err != nil {
		s.log.Error("Failed to list movies", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list movies"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"movies": movies})
}

func (s *Server) GetMovie(c *gin.Context) {
	m, err := s.store.GetMovie(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
			return
		}
		s.log.Error("Failed to get movie", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get movie"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"movie": m})
}

// GetMovieImage streams the poster out of the blob store, transcodes it and
// returns the result. Transcoding happens on every read; a missing record or
// object is 404 while a present-but-corrupt object is 500.
func (s *Server) GetMovieImage(c *gin.Context) {
	ctx := c.Request.Context()

	m, err := s.store.GetMovie(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Movie or image not found"})
			return
		}
		s.log.Error("Failed to get movie", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing image"})
		return
	}
	if m.Image == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Movie or image not found"})
		return
	}

	data, _, err := blobstore.ReadAll(ctx, s.blobs, m.Image.BlobID)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Movie or image not found"})
			return
		}
		s.log.Error("Failed to read poster image", zap.Error(err), zap.String("blob_id", m.Image.BlobID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing image"})
		return
	}

	processed, err := image.Transform(data)
	if err != nil {
		s.log.Error("Failed to transform poster image", zap.Error(err), zap.String("blob_id", m.Image.BlobID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing image"})
		return
	}

	c.Header("Cache-Control", imageCacheControl)
	c.Data(http.StatusOK, image.TransformedContentType, processed)
}

// DeleteMovie removes the record, then its poster object. The two deletes
// are sequential, not transactional: when the second fails the object is
// orphaned, which is logged rather than masked.
func (s *Server) DeleteMovie(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	m, err := s.store.GetMovie(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
			return
		}
		s.log.Error("Failed to get movie", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete movie"})
		return
	}

	if err := s.store.DeleteMovie(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
			return
		}
		s.log.Error("Failed to delete movie record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete movie"})
		return
	}

	if m.Image != nil {
		if err := s.blobs.Delete(ctx, m.Image.BlobID); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
			s.log.Error("Poster object orphaned, record already deleted",
				zap.Error(err),
				zap.String("movie_id", id),
				zap.String("blob_id", m.Image.BlobID),
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Movie and image deleted successfully"})
}

func (s *Server) deleteBlob(ctx context.Context, blobID string) {
	if err := s.blobs.Delete(ctx, blobID); err != nil {
		s.log.Warn("Failed to clean up poster image", zap.Error(err), zap.String("blob_id", blobID))
	}
}
