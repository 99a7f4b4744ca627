package favorite

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("favourite not found")
	ErrAlreadyExists = errors.New("favourite already exists")
)

// Favorite marks a movie as a favourite of a user.
type Favorite struct {
	UserID    string    `json:"userId"`
	MovieID   string    `json:"movieId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone creates a deep copy
func (f *Favorite) Clone() *Favorite {
	cloned := *f
	return &cloned
}

// Store is an interface for favourite operations
type Store interface {
	// Add records a favourite.
	//
	// ErrAlreadyExists is returned if the user already favourited the movie.
	Add(ctx context.Context, favorite *Favorite) error

	// Remove deletes a favourite.
	//
	// ErrNotFound is returned if the favourite doesn't exist.
	Remove(ctx context.Context, userID, movieID string) error

	// GetAll returns the user's favourites, newest first.
	GetAll(ctx context.Context, userID string) ([]*Favorite, error)

	// Exists reports whether the user has favourited the movie.
	Exists(ctx context.Context, userID, movieID string) (bool, error)

	// Count returns the number of favourites the user has.
	Count(ctx context.Context, userID string) (int, error)
}
