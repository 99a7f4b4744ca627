package cache

import (
	"context"
	"time"

	"github.com/ReneKroon/ttlcache"

	"github.com/PavLouis/PWA-Movies/movie"
)

// Cache is a read-through TTL cache over a movie store. Single-record reads
// dominate (every image request resolves the record first), so only GetMovie
// is cached; the transcoded image bytes themselves are never cached.
type Cache struct {
	db    movie.Store
	cache *ttlcache.Cache
}

func NewInCache(db movie.Store, ttl time.Duration) movie.Store {
	cache := ttlcache.NewCache()
	cache.SetTTL(ttl)
	return &Cache{
		db:    db,
		cache: cache,
	}
}

func (c *Cache) GetMovie(ctx context.Context, id string) (*movie.Movie, error) {
	cached, ok := c.cache.Get(id)
	if !ok {
		m, err := c.db.GetMovie(ctx, id)
		if err != nil {
			return nil, err
		}

		c.cache.Set(id, m.Clone())
		return m, nil
	}

	return cached.(*movie.Movie).Clone(), nil
}

func (c *Cache) CreateMovie(ctx context.Context, m *movie.Movie) error {
	c.cache.Remove(m.ID)
	return c.db.CreateMovie(ctx, m)
}

func (c *Cache) GetAllMovies(ctx context.Context) ([]*movie.Movie, error) {
	return c.db.GetAllMovies(ctx)
}

func (c *Cache) DeleteMovie(ctx context.Context, id string) error {
	c.cache.Remove(id)
	return c.db.DeleteMovie(ctx, id)
}
