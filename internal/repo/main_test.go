package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/trayananedelcheva/travel-buddy/migrations"
	"github.com/trayananedelcheva/travel-buddy/testutil"
)

// TestMain applies all pending migrations to the test database once for the
// whole package, so individual tests never deal with schema state.
func TestMain(m *testing.M) {
	dsn := os.Getenv(testutil.DatabaseURLEnv)
	if dsn == "" {
		// No test DB configured; the integration tests skip themselves.
		os.Exit(m.Run())
	}

	db := testutil.MustOpenSQLDB(dsn)
	if _, err := migrations.Up(context.Background(), db); err != nil {
		log.Fatalf("TestMain: %v", err)
	}
	db.Close()

	os.Exit(m.Run())
}
