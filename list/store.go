package list

import (
	"context"
	"errors"
	"time"
)

var (
	ErrListNotFound    = errors.New("list not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrLikeNotFound    = errors.New("like not found")
	ErrMovieInList     = errors.New("movie already in list")
	ErrMovieNotInList  = errors.New("movie not in list")
)

// List is a user-curated movie recommendation list. Private lists are only
// visible to their owner.
type List struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Clone creates a deep copy
func (l *List) Clone() *List {
	cloned := *l
	return &cloned
}

// Comment is a user comment on a list.
type Comment struct {
	ID        string    `json:"id"`
	ListID    string    `json:"listId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone creates a deep copy
func (c *Comment) Clone() *Comment {
	cloned := *c
	return &cloned
}

// Like records a user's like state for a list. The record survives untoggling
// so a later re-like is distinguishable from a first like.
type Like struct {
	UserID    string    `json:"userId"`
	ListID    string    `json:"listId"`
	Liked     bool      `json:"liked"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone creates a deep copy
func (l *Like) Clone() *Like {
	cloned := *l
	return &cloned
}

// Store is an interface for recommendation list operations
type Store interface {
	// CreateList creates a new list.
	CreateList(ctx context.Context, list *List) error

	// GetList returns a list by id.
	//
	// ErrListNotFound is returned if the list doesn't exist.
	GetList(ctx context.Context, id string) (*List, error)

	// GetPublicLists returns every public list.
	GetPublicLists(ctx context.Context) ([]*List, error)

	// GetUserLists returns every list owned by the user, public or not.
	GetUserLists(ctx context.Context, userID string) ([]*List, error)

	// UpdateList overwrites the list's mutable fields.
	//
	// ErrListNotFound is returned if the list doesn't exist.
	UpdateList(ctx context.Context, list *List) error

	// DeleteList deletes the list and its movie entries.
	//
	// ErrListNotFound is returned if the list doesn't exist.
	DeleteList(ctx context.Context, id string) error

	// AddMovie adds a movie to a list.
	//
	// ErrMovieInList is returned if the movie is already in the list.
	AddMovie(ctx context.Context, listID, movieID string) error

	// RemoveMovie removes a movie from a list.
	//
	// ErrMovieNotInList is returned if the movie isn't in the list.
	RemoveMovie(ctx context.Context, listID, movieID string) error

	// GetMovieIDs returns the ids of the movies in a list, most recently
	// added first.
	GetMovieIDs(ctx context.Context, listID string) ([]string, error)

	// AddComment creates a new comment.
	AddComment(ctx context.Context, comment *Comment) error

	// GetComment returns a comment by id.
	//
	// ErrCommentNotFound is returned if the comment doesn't exist.
	GetComment(ctx context.Context, id string) (*Comment, error)

	// GetComments returns one page of a list's comments, newest first, along
	// with the total comment count for the list.
	GetComments(ctx context.Context, listID string, limit, offset int) ([]*Comment, int, error)

	// UpdateComment overwrites the comment's content.
	//
	// ErrCommentNotFound is returned if the comment doesn't exist.
	UpdateComment(ctx context.Context, comment *Comment) error

	// DeleteComment deletes a comment.
	//
	// ErrCommentNotFound is returned if the comment doesn't exist.
	DeleteComment(ctx context.Context, id string) error

	// GetLike returns a user's like record for a list.
	//
	// ErrLikeNotFound is returned if the user never liked the list.
	GetLike(ctx context.Context, userID, listID string) (*Like, error)

	// UpsertLike creates or replaces a like record, keyed by (user, list).
	UpsertLike(ctx context.Context, like *Like) error

	// CountLikes returns the number of users currently liking the list.
	CountLikes(ctx context.Context, listID string) (int, error)

	// GetLikedLists returns the ids of the lists the user currently likes.
	GetLikedLists(ctx context.Context, userID string) ([]string, error)
}
