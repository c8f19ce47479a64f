// SPDX-License-Identifier: Apache-2.0

package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jetbase-hq/jetbase/pkg/engine"
)

// The version of postgres against which the tests are run
// if the POSTGRES_VERSION environment variable is not set.
const defaultPostgresVersion = "15.3"

// tConnStr holds the connection string to the test container created in TestMain.
var tConnStr string

// SharedTestMain starts a postgres container to be used by all tests in a package.
// Each test then connects to the container and creates a new database.
func SharedTestMain(m *testing.M) {
	ctx := context.Background()

	waitForLogs := wait.
		ForLog("database system is ready to accept connections").
		WithOccurrence(2).
		WithStartupTimeout(5 * time.Second)

	pgVersion := os.Getenv("POSTGRES_VERSION")
	if pgVersion == "" {
		pgVersion = defaultPostgresVersion
	}

	ctr, err := postgres.Run(ctx, "postgres:"+pgVersion,
		testcontainers.WithWaitStrategy(waitForLogs),
	)
	if err != nil {
		log.Printf("Failed to start container: %v", err)
		os.Exit(1)
	}

	tConnStr, err = ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Printf("Failed to get connection string: %v", err)
		os.Exit(1)
	}

	exitCode := m.Run()

	if err := ctr.Terminate(ctx); err != nil {
		log.Printf("Failed to terminate container: %v", err)
	}

	os.Exit(exitCode)
}

// WithConnectionToContainer creates a fresh database in the shared container
// and yields a connection string pointing at it, plus an open *sql.DB for
// direct assertions against it.
func WithConnectionToContainer(t *testing.T, fn func(db *sql.DB, connStr string)) {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("postgres", tConnStr)
	if err != nil {
		t.Fatal(err)
	}

	dbName := randomDBName()
	_, err = db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", pq.QuoteIdentifier(dbName)))
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	u, err := url.Parse(tConnStr)
	if err != nil {
		t.Fatal(err)
	}
	u.Path = dbName
	connStr := u.String()

	testDB, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := testDB.Close(); err != nil {
			t.Errorf("Failed to close database connection: %v", err)
		}
	})

	fn(testDB, connStr)
}

// WithEngineInContainer creates a fresh database in the shared container and
// an Engine over it, reading migrations from migrationsDir. The *sql.DB is
// for direct assertions; the Engine owns its own pool.
func WithEngineInContainer(t *testing.T, migrationsDir string, fn func(e *engine.Engine, db *sql.DB)) {
	t.Helper()

	WithConnectionToContainer(t, func(db *sql.DB, connStr string) {
		e, err := engine.New(engine.Config{
			DatabaseURL:   connStr,
			MigrationsDir: migrationsDir,
		})
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() {
			if err := e.Close(); err != nil {
				t.Errorf("Failed to close engine: %v", err)
			}
		})

		fn(e, db)
	})
}
