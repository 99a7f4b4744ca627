package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/PavLouis/PWA-Movies/movie"
)

type store struct {
	mu     sync.RWMutex
	movies map[string]*movie.Movie
}

func NewInMemory() movie.Store {
	return &store{
		movies: make(map[string]*movie.Movie),
	}
}

func (s *store) CreateMovie(_ context.Context, m *movie.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.movies[m.ID] = m.Clone()
	return nil
}

func (s *store) GetMovie(_ context.Context, id string) (*movie.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.movies[id]
	if !ok {
		return nil, movie.ErrNotFound
	}

	return m.Clone(), nil
}

func (s *store) GetAllMovies(_ context.Context) ([]*movie.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	movies := make([]*movie.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		movies = append(movies, m.Clone())
	}

	sort.Slice(movies, func(i, j int) bool {
		return movies[i].CreatedAt.Before(movies[j].CreatedAt)
	})

	return movies, nil
}

func (s *store) DeleteMovie(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.movies[id]; !ok {
		return movie.ErrNotFound
	}

	delete(s.movies, id)
	return nil
}

func (s *store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.movies = make(map[string]*movie.Movie)
}
