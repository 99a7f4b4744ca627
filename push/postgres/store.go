package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	pg "github.com/PavLouis/PWA-Movies/database/postgres"
	"github.com/PavLouis/PWA-Movies/model"
	"github.com/PavLouis/PWA-Movies/push"
)

const tableName = "push_subscriptions"

const schema = `
CREATE TABLE IF NOT EXISTS ` + tableName + ` (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	endpoint   TEXT NOT NULL,
	p256dh     TEXT NOT NULL,
	auth       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),

	CONSTRAINT push_subscriptions_user_id_key UNIQUE (user_id),
	CONSTRAINT push_subscriptions_endpoint_key UNIQUE (endpoint)
);`

type subscriptionModel struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Endpoint  string    `db:"endpoint"`
	P256DH    string    `db:"p256dh"`
	Auth      string    `db:"auth"`
	CreatedAt time.Time `db:"created_at"`
}

func (m *subscriptionModel) toSubscription() *push.Subscription {
	return &push.Subscription{
		ID:       m.ID,
		UserID:   m.UserID,
		Endpoint: m.Endpoint,
		Keys: push.Keys{
			P256DH: m.P256DH,
			Auth:   m.Auth,
		},
		CreatedAt: m.CreatedAt,
	}
}

type store struct {
	db *sqlx.DB
}

func NewInPostgres(db *sqlx.DB) push.Store {
	return &store{db: db}
}

// MigrateTables creates the push tables if they do not exist.
func MigrateTables(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (s *store) reset() {
	if _, err := s.db.Exec(`DELETE FROM ` + tableName); err != nil {
		panic(err)
	}
}

func (s *store) Upsert(ctx context.Context, userID, endpoint string, keys push.Keys) (*push.Subscription, error) {
	query := `
		INSERT INTO ` + tableName + ` (id, user_id, endpoint, p256dh, auth)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT push_subscriptions_user_id_key DO UPDATE
			SET endpoint = EXCLUDED.endpoint,
			    p256dh   = EXCLUDED.p256dh,
			    auth     = EXCLUDED.auth
		RETURNING id, user_id, endpoint, p256dh, auth, created_at`

	var m subscriptionModel
	err := s.db.GetContext(ctx, &m, query, model.MustGenerateID(), userID, endpoint, keys.P256DH, keys.Auth)
	if err != nil {
		if pg.IsUniqueViolation(err, "push_subscriptions_endpoint_key") {
			return nil, push.ErrEndpointTaken
		}
		return nil, err
	}

	return m.toSubscription(), nil
}

func (s *store) Get(ctx context.Context, userID string) (*push.Subscription, error) {
	query := `SELECT id, user_id, endpoint, p256dh, auth, created_at FROM ` + tableName + ` WHERE user_id = $1`

	var m subscriptionModel
	err := s.db.GetContext(ctx, &m, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, push.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return m.toSubscription(), nil
}

func (s *store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM `+tableName+` WHERE id = $1`, id)
	return err
}

func (s *store) ListExcluding(ctx context.Context, userID string) ([]*push.Subscription, error) {
	query := `SELECT id, user_id, endpoint, p256dh, auth, created_at FROM ` + tableName + ` WHERE user_id <> $1`

	var models []subscriptionModel
	if err := s.db.SelectContext(ctx, &models, query, userID); err != nil {
		return nil, err
	}

	subs := make([]*push.Subscription, len(models))
	for i := range models {
		subs[i] = models[i].toSubscription()
	}

	return subs, nil
}
