package memory

import (
	"context"
	"sync"

	"github.com/PavLouis/PWA-Movies/user"
)

type store struct {
	mu    sync.RWMutex
	users map[string]*user.User
}

func NewInMemory() user.Store {
	return &store{
		users: make(map[string]*user.User),
	}
}

func (s *store) CreateUser(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
		if existing.Username == u.Username {
			return user.ErrUsernameTaken
		}
	}

	s.users[u.ID] = u.Clone()
	return nil
}

func (s *store) GetUser(_ context.Context, id string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}

	return u.Clone(), nil
}

func (s *store) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u.Clone(), nil
		}
	}

	return nil, user.ErrNotFound
}

func (s *store) GetUserByUsername(_ context.Context, username string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return u.Clone(), nil
		}
	}

	return nil, user.ErrNotFound
}

func (s *store) UpdateUser(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		return user.ErrNotFound
	}

	for id, existing := range s.users {
		if id == u.ID {
			continue
		}
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
		if existing.Username == u.Username {
			return user.ErrUsernameTaken
		}
	}

	s.users[u.ID] = u.Clone()
	return nil
}

func (s *store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[string]*user.User)
}
