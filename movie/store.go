package movie

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("movie not found")

// ImageRef points a movie at its poster blob, together with the display
// metadata computed at upload time.
type ImageRef struct {
	BlobID      string `json:"fileId"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Width       int32  `json:"width,omitempty"`
	Height      int32  `json:"height,omitempty"`
	BlurHash    string `json:"blurHash,omitempty"`
}

// Movie holds the catalog metadata for one film.
//
// Invariant: a populated Image reference always points at a live blob; the
// blob is deleted together with the record (two sequential calls, see the
// server's Delete handler).
type Movie struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ReleaseYear int       `json:"releaseYear"`
	Description string    `json:"description"`
	Genre       string    `json:"genre"`
	VoteAverage float64   `json:"voteAverage"`
	Image       *ImageRef `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Clone creates a deep copy
func (m *Movie) Clone() *Movie {
	cloned := *m
	if m.Image != nil {
		imageCopy := *m.Image
		cloned.Image = &imageCopy
	}
	return &cloned
}

// Store is an interface for movie record operations
type Store interface {
	CreateMovie(ctx context.Context, movie *Movie) error
	GetMovie(ctx context.Context, id string) (*Movie, error)
	GetAllMovies(ctx context.Context) ([]*Movie, error)
	DeleteMovie(ctx context.Context, id string) error
}
