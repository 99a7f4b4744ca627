package user

import (
	"errors"
	"net/http"
	"regexp"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/PavLouis/PWA-Movies/auth"
	"github.com/PavLouis/PWA-Movies/model"
)

const bcryptCost = 10

var (
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

type Server struct {
	log       *zap.Logger
	store     Store
	jwtSecret string
}

func NewServer(log *zap.Logger, store Store, jwtSecret string) *Server {
	return &Server{
		log:       log,
		store:     store,
		jwtSecret: jwtSecret,
	}
}

// RegisterRoutes mounts the unauthenticated account routes.
func (s *Server) RegisterRoutes(r gin.IRoutes) {
	r.POST("/api/auth/register", s.Register)
	r.POST("/api/auth/login", s.Login)
}

// RegisterAuthedRoutes mounts the profile routes.
func (s *Server) RegisterAuthedRoutes(r gin.IRoutes) {
	r.GET("/api/users/profile", s.GetProfile)
	r.PUT("/api/users/profile", s.UpdateProfile)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserResponse(u *User) *userResponse {
	return &userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// Register creates an account and logs the new user straight in.
func (s *Server) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	fieldErrors := map[string]string{}
	if len(req.Username) < 3 || len(req.Username) > 30 || !usernamePattern.MatchString(req.Username) {
		fieldErrors["username"] = "Username must be 3-30 characters of letters, numbers, and underscores"
	}
	if !emailPattern.MatchString(req.Email) {
		fieldErrors["email"] = "Please enter a valid email"
	}
	if err := validatePassword(req.Password); err != "" {
		fieldErrors["password"] = err
	}
	if len(fieldErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	u := &User{
		ID:           model.MustGenerateID(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrUsernameTaken) {
			c.JSON(http.StatusForbidden, gin.H{"message": "User already exists"})
			return
		}
		s.log.Error("Failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	token, err := auth.GenerateToken(s.jwtSecret, u.ID, u.Username)
	if err != nil {
		s.log.Error("Failed to sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": toUserResponse(u)})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	// A wrong password and an unknown email answer identically so the
	// endpoint doesn't leak which emails are registered.
	u, err := s.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
			return
		}
		s.log.Error("Failed to fetch user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(s.jwtSecret, u.ID, u.Username)
	if err != nil {
		s.log.Error("Failed to sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": toUserResponse(u)})
}

func (s *Server) GetProfile(c *gin.Context) {
	u, err := s.store.GetUser(c.Request.Context(), auth.UserID(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		s.log.Error("Failed to fetch user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(u))
}

type updateProfileRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UpdateProfile applies a partial profile update. Changing the password
// requires proving knowledge of the current one.
func (s *Server) UpdateProfile(c *gin.Context) {
	ctx := c.Request.Context()

	u, err := s.store.GetUser(ctx, auth.UserID(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		s.log.Error("Failed to fetch user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	fieldErrors := map[string]string{}
	if req.Username != "" && (len(req.Username) < 3 || len(req.Username) > 30 || !usernamePattern.MatchString(req.Username)) {
		fieldErrors["username"] = "Username must be 3-30 characters of letters, numbers, and underscores"
	}
	if req.Email != "" && !emailPattern.MatchString(req.Email) {
		fieldErrors["email"] = "Please provide a valid email address"
	}
	if req.NewPassword != "" {
		if err := validatePassword(req.NewPassword); err != "" {
			fieldErrors["newPassword"] = err
		}
	}
	if len(fieldErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
		return
	}

	if req.NewPassword != "" {
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)) != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Current password is incorrect"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
		if err != nil {
			s.log.Error("Failed to hash password", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		u.PasswordHash = string(hash)
	}

	if req.Username != "" {
		u.Username = req.Username
	}
	if req.Email != "" {
		u.Email = req.Email
	}

	if err := s.store.UpdateUser(ctx, u); err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email already in use"})
		case errors.Is(err, ErrUsernameTaken):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Username already taken"})
		default:
			s.log.Error("Failed to update user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    toUserResponse(u),
	})
}

func validatePassword(password string) string {
	if len(password) < 8 {
		return "Password must be at least 8 characters long"
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}

	switch {
	case !lower:
		return "Password must contain at least one lowercase letter"
	case !upper:
		return "Password must contain at least one uppercase letter"
	case !digit:
		return "Password must contain at least one number"
	case !special:
		return "Password must contain at least one special character"
	}

	return ""
}
