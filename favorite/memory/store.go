package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/PavLouis/PWA-Movies/favorite"
)

type key struct {
	userID  string
	movieID string
}

type store struct {
	mu        sync.RWMutex
	favorites map[key]*favorite.Favorite
}

func NewInMemory() favorite.Store {
	return &store{
		favorites: make(map[key]*favorite.Favorite),
	}
}

func (s *store) Add(_ context.Context, f *favorite.Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{userID: f.UserID, movieID: f.MovieID}
	if _, ok := s.favorites[k]; ok {
		return favorite.ErrAlreadyExists
	}

	s.favorites[k] = f.Clone()
	return nil
}

func (s *store) Remove(_ context.Context, userID, movieID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{userID: userID, movieID: movieID}
	if _, ok := s.favorites[k]; !ok {
		return favorite.ErrNotFound
	}

	delete(s.favorites, k)
	return nil
}

func (s *store) GetAll(_ context.Context, userID string) ([]*favorite.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	favorites := make([]*favorite.Favorite, 0)
	for _, f := range s.favorites {
		if f.UserID == userID {
			favorites = append(favorites, f.Clone())
		}
	}

	sort.Slice(favorites, func(i, j int) bool {
		return favorites[i].CreatedAt.After(favorites[j].CreatedAt)
	})

	return favorites, nil
}

func (s *store) Exists(_ context.Context, userID, movieID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.favorites[key{userID: userID, movieID: movieID}]
	return ok, nil
}

func (s *store) Count(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, f := range s.favorites {
		if f.UserID == userID {
			count++
		}
	}

	return count, nil
}

func (s *store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.favorites = make(map[key]*favorite.Favorite)
}
