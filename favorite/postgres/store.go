package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	pg "github.com/PavLouis/PWA-Movies/database/postgres"
	"github.com/PavLouis/PWA-Movies/favorite"
)

const tableName = "favourites"

const schema = `
CREATE TABLE IF NOT EXISTS ` + tableName + ` (
	user_id    TEXT NOT NULL,
	movie_id   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),

	CONSTRAINT ` + tableName + `_pkey PRIMARY KEY (user_id, movie_id)
);`

type favoriteModel struct {
	UserID    string    `db:"user_id"`
	MovieID   string    `db:"movie_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (m *favoriteModel) toFavorite() *favorite.Favorite {
	return &favorite.Favorite{
		UserID:    m.UserID,
		MovieID:   m.MovieID,
		CreatedAt: m.CreatedAt,
	}
}

type store struct {
	db *sqlx.DB
}

func NewInPostgres(db *sqlx.DB) favorite.Store {
	return &store{db: db}
}

// MigrateTables creates the favourite tables if they do not exist.
func MigrateTables(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (s *store) reset() {
	if _, err := s.db.Exec(`DELETE FROM ` + tableName); err != nil {
		panic(err)
	}
}

func (s *store) Add(ctx context.Context, f *favorite.Favorite) error {
	query := `INSERT INTO ` + tableName + ` (user_id, movie_id) VALUES ($1, $2)`

	_, err := s.db.ExecContext(ctx, query, f.UserID, f.MovieID)
	if pg.IsUniqueViolation(err, tableName+"_pkey") {
		return favorite.ErrAlreadyExists
	}
	return err
}

func (s *store) Remove(ctx context.Context, userID, movieID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM `+tableName+` WHERE user_id = $1 AND movie_id = $2`, userID, movieID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return favorite.ErrNotFound
	}

	return nil
}

func (s *store) GetAll(ctx context.Context, userID string) ([]*favorite.Favorite, error) {
	var models []favoriteModel
	err := s.db.SelectContext(ctx, &models,
		`SELECT * FROM `+tableName+` WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}

	favorites := make([]*favorite.Favorite, len(models))
	for i := range models {
		favorites[i] = models[i].toFavorite()
	}

	return favorites, nil
}

func (s *store) Exists(ctx context.Context, userID, movieID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM `+tableName+` WHERE user_id = $1 AND movie_id = $2)`, userID, movieID)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (s *store) Count(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM `+tableName+` WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}

	return count, nil
}
