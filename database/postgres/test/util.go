// Package test provides the dockertest harness shared by the postgres store
// tests.
package test

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	_ "github.com/jackc/pgx/v4/stdlib" // Register the pgx database/sql driver
)

// StartPostgresDB runs a throwaway postgres container and returns its
// connection url.
func StartPostgresDB(pool *dockertest.Pool) (string, error) {
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "14",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=pwamovies",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return "", err
	}

	// Containers die with the test run even if teardown never executes.
	if err := resource.Expire(300); err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"postgres://postgres:secret@%s/pwamovies?sslmode=disable",
		resource.GetHostPort("5432/tcp"),
	), nil
}

// WaitForConnection polls the database until it accepts connections.
func WaitForConnection(databaseURL string, wait bool) (*sqlx.DB, func(), error) {
	attempts := 1
	if wait {
		attempts = 30
	}

	var (
		db  *sqlx.DB
		err error
	)
	for i := 0; i < attempts; i++ {
		db, err = sqlx.ConnectContext(context.Background(), "pgx", databaseURL)
		if err == nil {
			return db, func() { _ = db.Close() }, nil
		}
		time.Sleep(time.Second)
	}

	return nil, nil, err
}
