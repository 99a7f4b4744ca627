package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PavLouis/PWA-Movies/model"
	"github.com/PavLouis/PWA-Movies/user"
)

func RunStoreTests(t *testing.T, s user.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s user.Store){
		testCreateAndGet,
		testUniqueness,
		testUpdate,
	} {
		tf(t, s)
		teardown()
	}
}

func newTestUser(username, email string) *user.User {
	return &user.User{
		ID:           model.MustGenerateID(),
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$GFL9aZkO6neJtqOPJzmFAuErCITFjhpwBwev.FFKxRdYe24n0lhVW",
		CreatedAt:    time.Now(),
	}
}

func testCreateAndGet(t *testing.T, s user.Store) {
	ctx := context.Background()

	_, err := s.GetUser(ctx, "unknown")
	assert.ErrorIs(t, err, user.ErrNotFound)
	_, err = s.GetUserByEmail(ctx, "unknown@test.com")
	assert.ErrorIs(t, err, user.ErrNotFound)
	_, err = s.GetUserByUsername(ctx, "unknown")
	assert.ErrorIs(t, err, user.ErrNotFound)

	u := newTestUser("testuser", "test@test.com")
	require.NoError(t, s.CreateUser(ctx, u))

	byID, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	byEmail, err := s.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	byUsername, err := s.GetUserByUsername(ctx, u.Username)
	require.NoError(t, err)

	for _, got := range []*user.User{byID, byEmail, byUsername} {
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, u.Username, got.Username)
		assert.Equal(t, u.Email, got.Email)
		assert.Equal(t, u.PasswordHash, got.PasswordHash)
	}
}

func testUniqueness(t *testing.T, s user.Store) {
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, newTestUser("testuser", "test@test.com")))

	err := s.CreateUser(ctx, newTestUser("different", "test@test.com"))
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	err = s.CreateUser(ctx, newTestUser("testuser", "different@test.com"))
	assert.ErrorIs(t, err, user.ErrUsernameTaken)
}

func testUpdate(t *testing.T, s user.Store) {
	ctx := context.Background()

	err := s.UpdateUser(ctx, newTestUser("ghost", "ghost@test.com"))
	assert.ErrorIs(t, err, user.ErrNotFound)

	u := newTestUser("testuser", "test@test.com")
	other := newTestUser("other", "other@test.com")
	require.NoError(t, s.CreateUser(ctx, u))
	require.NoError(t, s.CreateUser(ctx, other))

	u.Username = "renamed"
	u.PasswordHash = "$2a$10$changed"
	require.NoError(t, s.UpdateUser(ctx, u))

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Username)
	assert.Equal(t, "$2a$10$changed", got.PasswordHash)

	// Colliding with another user's email or username is rejected.
	u.Email = other.Email
	err = s.UpdateUser(ctx, u)
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	u.Email = "test@test.com"
	u.Username = other.Username
	err = s.UpdateUser(ctx, u)
	assert.ErrorIs(t, err, user.ErrUsernameTaken)
}
