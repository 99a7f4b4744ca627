package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	pg "github.com/PavLouis/PWA-Movies/database/postgres"
	"github.com/PavLouis/PWA-Movies/list"
)

const (
	listsTableName    = "rec_lists"
	moviesTableName   = "rec_list_movies"
	commentsTableName = "list_comments"
	likesTableName    = "list_likes"
)

const schema = `
CREATE TABLE IF NOT EXISTS ` + listsTableName + ` (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	is_public   BOOL NOT NULL DEFAULT false,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS ` + moviesTableName + ` (
	list_id  TEXT NOT NULL,
	movie_id TEXT NOT NULL,
	added_at TIMESTAMPTZ NOT NULL DEFAULT now(),

	CONSTRAINT ` + moviesTableName + `_pkey PRIMARY KEY (list_id, movie_id)
);

CREATE TABLE IF NOT EXISTS ` + commentsTableName + ` (
	id         TEXT PRIMARY KEY,
	list_id    TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS ` + likesTableName + ` (
	user_id    TEXT NOT NULL,
	list_id    TEXT NOT NULL,
	liked      BOOL NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),

	CONSTRAINT ` + likesTableName + `_pkey PRIMARY KEY (user_id, list_id)
);`

type listModel struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	IsPublic    bool      `db:"is_public"`
	CreatedAt   time.Time `db:"created_at"`
}

func (m *listModel) toList() *list.List {
	return &list.List{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		IsPublic:    m.IsPublic,
		CreatedAt:   m.CreatedAt,
	}
}

type commentModel struct {
	ID        string    `db:"id"`
	ListID    string    `db:"list_id"`
	UserID    string    `db:"user_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

func (m *commentModel) toComment() *list.Comment {
	return &list.Comment{
		ID:        m.ID,
		ListID:    m.ListID,
		UserID:    m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

type likeModel struct {
	UserID    string    `db:"user_id"`
	ListID    string    `db:"list_id"`
	Liked     bool      `db:"liked"`
	CreatedAt time.Time `db:"created_at"`
}

func (m *likeModel) toLike() *list.Like {
	return &list.Like{
		UserID:    m.UserID,
		ListID:    m.ListID,
		Liked:     m.Liked,
		CreatedAt: m.CreatedAt,
	}
}

type store struct {
	db *sqlx.DB
}

func NewInPostgres(db *sqlx.DB) list.Store {
	return &store{db: db}
}

// MigrateTables creates the list tables if they do not exist.
func MigrateTables(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (s *store) reset() {
	for _, table := range []string{listsTableName, moviesTableName, commentsTableName, likesTableName} {
		if _, err := s.db.Exec(`DELETE FROM ` + table); err != nil {
			panic(err)
		}
	}
}

func (s *store) CreateList(ctx context.Context, l *list.List) error {
	query := `
		INSERT INTO ` + listsTableName + ` (id, user_id, title, description, is_public)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.ExecContext(ctx, query, l.ID, l.UserID, l.Title, l.Description, l.IsPublic)
	return err
}

func (s *store) GetList(ctx context.Context, id string) (*list.List, error) {
	var m listModel
	err := s.db.GetContext(ctx, &m, `SELECT * FROM `+listsTableName+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, list.ErrListNotFound
	}
	if err != nil {
		return nil, err
	}

	return m.toList(), nil
}

func (s *store) GetPublicLists(ctx context.Context) ([]*list.List, error) {
	var models []listModel
	err := s.db.SelectContext(ctx, &models, `SELECT * FROM `+listsTableName+` WHERE is_public ORDER BY created_at`)
	if err != nil {
		return nil, err
	}

	return toLists(models), nil
}

func (s *store) GetUserLists(ctx context.Context, userID string) ([]*list.List, error) {
	var models []listModel
	err := s.db.SelectContext(ctx, &models, `SELECT * FROM `+listsTableName+` WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}

	return toLists(models), nil
}

func toLists(models []listModel) []*list.List {
	lists := make([]*list.List, len(models))
	for i := range models {
		lists[i] = models[i].toList()
	}
	return lists
}

func (s *store) UpdateList(ctx context.Context, l *list.List) error {
	query := `
		UPDATE ` + listsTableName + `
		SET title = $2, description = $3, is_public = $4
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, l.ID, l.Title, l.Description, l.IsPublic)
	if err != nil {
		return err
	}

	return requireAffected(res, list.ErrListNotFound)
}

func (s *store) DeleteList(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+listsTableName+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if err := requireAffected(res, list.ErrListNotFound); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `DELETE FROM `+moviesTableName+` WHERE list_id = $1`, id)
	return err
}

func (s *store) AddMovie(ctx context.Context, listID, movieID string) error {
	query := `INSERT INTO ` + moviesTableName + ` (list_id, movie_id) VALUES ($1, $2)`

	_, err := s.db.ExecContext(ctx, query, listID, movieID)
	if pg.IsUniqueViolation(err, moviesTableName+"_pkey") {
		return list.ErrMovieInList
	}
	return err
}

func (s *store) RemoveMovie(ctx context.Context, listID, movieID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM `+moviesTableName+` WHERE list_id = $1 AND movie_id = $2`, listID, movieID)
	if err != nil {
		return err
	}

	return requireAffected(res, list.ErrMovieNotInList)
}

func (s *store) GetMovieIDs(ctx context.Context, listID string) ([]string, error) {
	ids := []string{}
	err := s.db.SelectContext(ctx, &ids,
		`SELECT movie_id FROM `+moviesTableName+` WHERE list_id = $1 ORDER BY added_at DESC`, listID)
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (s *store) AddComment(ctx context.Context, c *list.Comment) error {
	query := `
		INSERT INTO ` + commentsTableName + ` (id, list_id, user_id, content)
		VALUES ($1, $2, $3, $4)`

	_, err := s.db.ExecContext(ctx, query, c.ID, c.ListID, c.UserID, c.Content)
	return err
}

func (s *store) GetComment(ctx context.Context, id string) (*list.Comment, error) {
	var m commentModel
	err := s.db.GetContext(ctx, &m, `SELECT * FROM `+commentsTableName+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, list.ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}

	return m.toComment(), nil
}

func (s *store) GetComments(ctx context.Context, listID string, limit, offset int) ([]*list.Comment, int, error) {
	var total int
	err := s.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM `+commentsTableName+` WHERE list_id = $1`, listID)
	if err != nil {
		return nil, 0, err
	}

	var models []commentModel
	err = s.db.SelectContext(ctx, &models,
		`SELECT * FROM `+commentsTableName+` WHERE list_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		listID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	comments := make([]*list.Comment, len(models))
	for i := range models {
		comments[i] = models[i].toComment()
	}

	return comments, total, nil
}

func (s *store) UpdateComment(ctx context.Context, c *list.Comment) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+commentsTableName+` SET content = $2 WHERE id = $1`, c.ID, c.Content)
	if err != nil {
		return err
	}

	return requireAffected(res, list.ErrCommentNotFound)
}

func (s *store) DeleteComment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+commentsTableName+` WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return requireAffected(res, list.ErrCommentNotFound)
}

func (s *store) GetLike(ctx context.Context, userID, listID string) (*list.Like, error) {
	var m likeModel
	err := s.db.GetContext(ctx, &m,
		`SELECT * FROM `+likesTableName+` WHERE user_id = $1 AND list_id = $2`, userID, listID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, list.ErrLikeNotFound
	}
	if err != nil {
		return nil, err
	}

	return m.toLike(), nil
}

func (s *store) UpsertLike(ctx context.Context, l *list.Like) error {
	query := `
		INSERT INTO ` + likesTableName + ` (user_id, list_id, liked)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT ` + likesTableName + `_pkey
		DO UPDATE SET liked = $3`

	_, err := s.db.ExecContext(ctx, query, l.UserID, l.ListID, l.Liked)
	return err
}

func (s *store) CountLikes(ctx context.Context, listID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM `+likesTableName+` WHERE list_id = $1 AND liked`, listID)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (s *store) GetLikedLists(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := s.db.SelectContext(ctx, &ids,
		`SELECT list_id FROM `+likesTableName+` WHERE user_id = $1 AND liked ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func requireAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}

	return nil
}
