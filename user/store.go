package user

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already taken")
	ErrUsernameTaken = errors.New("username already taken")
)

// User is a registered account. PasswordHash is a bcrypt hash and never
// leaves the server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Clone creates a deep copy
func (u *User) Clone() *User {
	cloned := *u
	return &cloned
}

// Store is an interface for user account operations
type Store interface {
	// CreateUser creates a new user.
	//
	// ErrEmailTaken or ErrUsernameTaken is returned on a conflict.
	CreateUser(ctx context.Context, user *User) error

	// GetUser returns a user by id.
	//
	// ErrNotFound is returned if the user doesn't exist.
	GetUser(ctx context.Context, id string) (*User, error)

	// GetUserByEmail returns a user by email.
	//
	// ErrNotFound is returned if the user doesn't exist.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByUsername returns a user by username.
	//
	// ErrNotFound is returned if the user doesn't exist.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// UpdateUser overwrites the user's mutable fields.
	//
	// ErrNotFound is returned if the user doesn't exist; ErrEmailTaken or
	// ErrUsernameTaken on a conflict with another user.
	UpdateUser(ctx context.Context, user *User) error
}
