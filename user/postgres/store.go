package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	pg "github.com/PavLouis/PWA-Movies/database/postgres"
	"github.com/PavLouis/PWA-Movies/user"
)

const tableName = "users"

const schema = `
CREATE TABLE IF NOT EXISTS ` + tableName + ` (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL,
	email         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),

	CONSTRAINT ` + tableName + `_username_key UNIQUE (username),
	CONSTRAINT ` + tableName + `_email_key UNIQUE (email)
);`

type userModel struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (m *userModel) toUser() *user.User {
	return &user.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

type store struct {
	db *sqlx.DB
}

func NewInPostgres(db *sqlx.DB) user.Store {
	return &store{db: db}
}

// MigrateTables creates the user tables if they do not exist.
func MigrateTables(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (s *store) reset() {
	if _, err := s.db.Exec(`DELETE FROM ` + tableName); err != nil {
		panic(err)
	}
}

func (s *store) CreateUser(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO ` + tableName + ` (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)`

	_, err := s.db.ExecContext(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash)
	return mapConflict(err)
}

func (s *store) GetUser(ctx context.Context, id string) (*user.User, error) {
	return s.getBy(ctx, `id`, id)
}

func (s *store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.getBy(ctx, `email`, email)
}

func (s *store) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.getBy(ctx, `username`, username)
}

func (s *store) getBy(ctx context.Context, column, value string) (*user.User, error) {
	var m userModel
	err := s.db.GetContext(ctx, &m, `SELECT * FROM `+tableName+` WHERE `+column+` = $1`, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return m.toUser(), nil
}

func (s *store) UpdateUser(ctx context.Context, u *user.User) error {
	query := `
		UPDATE ` + tableName + `
		SET username = $2, email = $3, password_hash = $4
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash)
	if err != nil {
		return mapConflict(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return user.ErrNotFound
	}

	return nil
}

func mapConflict(err error) error {
	switch {
	case pg.IsUniqueViolation(err, tableName+"_email_key"):
		return user.ErrEmailTaken
	case pg.IsUniqueViolation(err, tableName+"_username_key"):
		return user.ErrUsernameTaken
	default:
		return err
	}
}
