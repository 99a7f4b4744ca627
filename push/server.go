package push

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PavLouis/PWA-Movies/auth"
)

// Server exposes subscription registration over HTTP.
type Server struct {
	log   *zap.Logger
	store Store
}

func NewServer(log *zap.Logger, store Store) *Server {
	return &Server{
		log:   log,
		store: store,
	}
}

// RegisterRoutes mounts the push routes on an authenticated router group.
func (s *Server) RegisterRoutes(r gin.IRoutes) {
	r.POST("/push-subscription", s.AddSubscription)
}

type subscriptionRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256DH string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// AddSubscription registers the caller's delivery endpoint, replacing any
// previous one (upsert keyed by the authenticated user).
func (s *Server) AddSubscription(c *gin.Context) {
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription body"})
		return
	}

	if req.Endpoint == "" || req.Keys.P256DH == "" || req.Keys.Auth == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint and keys are required"})
		return
	}

	userID := auth.UserID(c)

	_, err := s.store.Upsert(c.Request.Context(), userID, req.Endpoint, Keys{
		P256DH: req.Keys.P256DH,
		Auth:   req.Keys.Auth,
	})
	if err != nil {
		if errors.Is(err, ErrEndpointTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Endpoint already registered"})
			return
		}
		s.log.Error("Failed to save push subscription", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Subscription failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Subscription saved"})
}
