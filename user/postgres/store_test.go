package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/sirupsen/logrus"

	postgrestest "github.com/PavLouis/PWA-Movies/database/postgres/test"
	"github.com/PavLouis/PWA-Movies/user/tests"
)

var databaseUrl string

func TestMain(m *testing.M) {
	log := logrus.StandardLogger()

	testPool, err := dockertest.NewPool("")
	if err != nil {
		log.WithError(err).Error("Error creating docker pool")
		os.Exit(1)
	}

	databaseUrl, err = postgrestest.StartPostgresDB(testPool)
	if err != nil {
		log.WithError(err).Error("Error starting postgres image")
		os.Exit(1)
	}

	if _, _, err = postgrestest.WaitForConnection(databaseUrl, true); err != nil {
		log.WithError(err).Error("Error waiting for connection")
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func TestUser_PostgresStore(t *testing.T) {
	db, disconnect, err := postgrestest.WaitForConnection(databaseUrl, false)
	if err != nil {
		t.Fatalf("Error connecting to database: %v", err)
	}
	defer disconnect()

	if err := MigrateTables(context.Background(), db); err != nil {
		t.Fatalf("Error migrating tables: %v", err)
	}

	testStore := NewInPostgres(db)
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunStoreTests(t, testStore, teardown)
}
