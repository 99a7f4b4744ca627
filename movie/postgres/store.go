package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/PavLouis/PWA-Movies/movie"
)

const tableName = "movies"

const schema = `
CREATE TABLE IF NOT EXISTS ` + tableName + ` (
	id                 TEXT PRIMARY KEY,
	title              TEXT NOT NULL,
	release_year       INT NOT NULL,
	description        TEXT NOT NULL,
	genre              TEXT NOT NULL,
	vote_average       DOUBLE PRECISION NOT NULL,
	image_blob_id      TEXT,
	image_filename     TEXT,
	image_content_type TEXT,
	image_width        INT,
	image_height       INT,
	image_blurhash     TEXT,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const allColumns = `id, title, release_year, description, genre, vote_average,
	image_blob_id, image_filename, image_content_type, image_width, image_height, image_blurhash,
	created_at`

type movieModel struct {
	ID               string         `db:"id"`
	Title            string         `db:"title"`
	ReleaseYear      int            `db:"release_year"`
	Description      string         `db:"description"`
	Genre            string         `db:"genre"`
	VoteAverage      float64        `db:"vote_average"`
	ImageBlobID      sql.NullString `db:"image_blob_id"`
	ImageFilename    sql.NullString `db:"image_filename"`
	ImageContentType sql.NullString `db:"image_content_type"`
	ImageWidth       sql.NullInt32  `db:"image_width"`
	ImageHeight      sql.NullInt32  `db:"image_height"`
	ImageBlurHash    sql.NullString `db:"image_blurhash"`
	CreatedAt        time.Time      `db:"created_at"`
}

func (m *movieModel) toMovie() *movie.Movie {
	res := &movie.Movie{
		ID:          m.ID,
		Title:       m.Title,
		ReleaseYear: m.ReleaseYear,
		Description: m.Description,
		Genre:       m.Genre,
		VoteAverage: m.VoteAverage,
		CreatedAt:   m.CreatedAt,
	}

	if m.ImageBlobID.Valid {
		res.Image = &movie.ImageRef{
			BlobID:      m.ImageBlobID.String,
			Filename:    m.ImageFilename.String,
			ContentType: m.ImageContentType.String,
			Width:       m.ImageWidth.Int32,
			Height:      m.ImageHeight.Int32,
			BlurHash:    m.ImageBlurHash.String,
		}
	}

	return res
}

type store struct {
	db *sqlx.DB
}

func NewInPostgres(db *sqlx.DB) movie.Store {
	return &store{db: db}
}

// MigrateTables creates the movie tables if they do not exist.
func MigrateTables(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (s *store) reset() {
	if _, err := s.db.Exec(`DELETE FROM ` + tableName); err != nil {
		panic(err)
	}
}

func (s *store) CreateMovie(ctx context.Context, m *movie.Movie) error {
	query := `
		INSERT INTO ` + tableName + ` (id, title, release_year, description, genre, vote_average,
			image_blob_id, image_filename, image_content_type, image_width, image_height, image_blurhash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	var (
		blobID, filename, contentType, blurHash sql.NullString
		width, height                           sql.NullInt32
	)
	if m.Image != nil {
		blobID = sql.NullString{String: m.Image.BlobID, Valid: true}
		filename = sql.NullString{String: m.Image.Filename, Valid: true}
		contentType = sql.NullString{String: m.Image.ContentType, Valid: true}
		blurHash = sql.NullString{String: m.Image.BlurHash, Valid: true}
		width = sql.NullInt32{Int32: m.Image.Width, Valid: true}
		height = sql.NullInt32{Int32: m.Image.Height, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		m.ID, m.Title, m.ReleaseYear, m.Description, m.Genre, m.VoteAverage,
		blobID, filename, contentType, width, height, blurHash)
	return err
}

func (s *store) GetMovie(ctx context.Context, id string) (*movie.Movie, error) {
	var m movieModel
	err := s.db.GetContext(ctx, &m, `SELECT `+allColumns+` FROM `+tableName+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, movie.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return m.toMovie(), nil
}

func (s *store) GetAllMovies(ctx context.Context) ([]*movie.Movie, error) {
	var models []movieModel
	err := s.db.SelectContext(ctx, &models, `SELECT `+allColumns+` FROM `+tableName+` ORDER BY created_at`)
	if err != nil {
		return nil, err
	}

	movies := make([]*movie.Movie, len(models))
	for i := range models {
		movies[i] = models[i].toMovie()
	}

	return movies, nil
}

func (s *store) DeleteMovie(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+tableName+` WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return movie.ErrNotFound
	}

	return nil
}
