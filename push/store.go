package push

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a user has no live subscription.
	ErrNotFound = errors.New("subscription not found")

	// ErrEndpointTaken is returned when another user already registered the
	// same delivery endpoint.
	ErrEndpointTaken = errors.New("endpoint is registered to another user")
)

// Keys are the encryption keys the Web Push protocol requires per endpoint.
type Keys struct {
	P256DH string
	Auth   string
}

// Subscription binds a user to a single push delivery endpoint.
type Subscription struct {
	ID        string
	UserID    string
	Endpoint  string
	Keys      Keys
	CreatedAt time.Time
}

// Store keeps per-user delivery endpoints.
//
// A user holds at most one live subscription at any time.
type Store interface {
	// Upsert creates a subscription for the user, or replaces the endpoint
	// and keys of the existing one in place (the subscription id is kept).
	//
	// Returns ErrEndpointTaken if the endpoint belongs to a different user.
	Upsert(ctx context.Context, userID, endpoint string, keys Keys) (*Subscription, error)

	// Get returns the user's subscription, or ErrNotFound.
	Get(ctx context.Context, userID string) (*Subscription, error)

	// Delete removes a subscription by id. Deleting an absent subscription
	// is a no-op so concurrent pruning never fails.
	Delete(ctx context.Context, id string) error

	// ListExcluding returns every subscription except the given user's,
	// for broadcast fan-out.
	ListExcluding(ctx context.Context, userID string) ([]*Subscription, error)
}
