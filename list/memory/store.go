package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/PavLouis/PWA-Movies/list"
)

type likeKey struct {
	userID string
	listID string
}

type movieEntry struct {
	movieID string
	addedAt time.Time
}

type store struct {
	mu       sync.RWMutex
	lists    map[string]*list.List
	movies   map[string][]movieEntry
	comments map[string]*list.Comment
	likes    map[likeKey]*list.Like
}

func NewInMemory() list.Store {
	return &store{
		lists:    make(map[string]*list.List),
		movies:   make(map[string][]movieEntry),
		comments: make(map[string]*list.Comment),
		likes:    make(map[likeKey]*list.Like),
	}
}

func (s *store) CreateList(_ context.Context, l *list.List) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists[l.ID] = l.Clone()
	return nil
}

func (s *store) GetList(_ context.Context, id string) (*list.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lists[id]
	if !ok {
		return nil, list.ErrListNotFound
	}

	return l.Clone(), nil
}

func (s *store) GetPublicLists(_ context.Context) ([]*list.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterLists(func(l *list.List) bool { return l.IsPublic }), nil
}

func (s *store) GetUserLists(_ context.Context, userID string) ([]*list.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterLists(func(l *list.List) bool { return l.UserID == userID }), nil
}

// filterLists requires the read lock to be held.
func (s *store) filterLists(keep func(*list.List) bool) []*list.List {
	lists := make([]*list.List, 0)
	for _, l := range s.lists {
		if keep(l) {
			lists = append(lists, l.Clone())
		}
	}

	sort.Slice(lists, func(i, j int) bool {
		return lists[i].CreatedAt.Before(lists[j].CreatedAt)
	})

	return lists
}

func (s *store) UpdateList(_ context.Context, l *list.List) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[l.ID]; !ok {
		return list.ErrListNotFound
	}

	s.lists[l.ID] = l.Clone()
	return nil
}

func (s *store) DeleteList(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[id]; !ok {
		return list.ErrListNotFound
	}

	delete(s.lists, id)
	delete(s.movies, id)
	return nil
}

func (s *store) AddMovie(_ context.Context, listID, movieID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.movies[listID] {
		if entry.movieID == movieID {
			return list.ErrMovieInList
		}
	}

	s.movies[listID] = append(s.movies[listID], movieEntry{movieID: movieID, addedAt: time.Now()})
	return nil
}

func (s *store) RemoveMovie(_ context.Context, listID, movieID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.movies[listID]
	for i, entry := range entries {
		if entry.movieID == movieID {
			s.movies[listID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}

	return list.ErrMovieNotInList
}

func (s *store) GetMovieIDs(_ context.Context, listID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]movieEntry, len(s.movies[listID]))
	copy(entries, s.movies[listID])

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].addedAt.After(entries[j].addedAt)
	})

	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.movieID
	}

	return ids, nil
}

func (s *store) AddComment(_ context.Context, c *list.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.comments[c.ID] = c.Clone()
	return nil
}

func (s *store) GetComment(_ context.Context, id string) (*list.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, list.ErrCommentNotFound
	}

	return c.Clone(), nil
}

func (s *store) GetComments(_ context.Context, listID string, limit, offset int) ([]*list.Comment, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*list.Comment, 0)
	for _, c := range s.comments {
		if c.ListID == listID {
			all = append(all, c.Clone())
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if offset >= total {
		return []*list.Comment{}, total, nil
	}

	end := offset + limit
	if end > total {
		end = total
	}

	return all[offset:end], total, nil
}

func (s *store) UpdateComment(_ context.Context, c *list.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[c.ID]; !ok {
		return list.ErrCommentNotFound
	}

	s.comments[c.ID] = c.Clone()
	return nil
}

func (s *store) DeleteComment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return list.ErrCommentNotFound
	}

	delete(s.comments, id)
	return nil
}

func (s *store) GetLike(_ context.Context, userID, listID string) (*list.Like, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.likes[likeKey{userID: userID, listID: listID}]
	if !ok {
		return nil, list.ErrLikeNotFound
	}

	return l.Clone(), nil
}

func (s *store) UpsertLike(_ context.Context, l *list.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.likes[likeKey{userID: l.UserID, listID: l.ListID}] = l.Clone()
	return nil
}

func (s *store) CountLikes(_ context.Context, listID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, l := range s.likes {
		if l.ListID == listID && l.Liked {
			count++
		}
	}

	return count, nil
}

func (s *store) GetLikedLists(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	liked := make([]*list.Like, 0)
	for _, l := range s.likes {
		if l.UserID == userID && l.Liked {
			liked = append(liked, l)
		}
	}

	sort.Slice(liked, func(i, j int) bool {
		return liked[i].CreatedAt.Before(liked[j].CreatedAt)
	})

	ids := make([]string, len(liked))
	for i, l := range liked {
		ids[i] = l.ListID
	}

	return ids, nil
}

func (s *store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists = make(map[string]*list.List)
	s.movies = make(map[string][]movieEntry)
	s.comments = make(map[string]*list.Comment)
	s.likes = make(map[likeKey]*list.Like)
}
