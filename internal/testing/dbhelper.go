// Package testing provides helpers for catalogdb integration tests.
package testing

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sdss/catalogdb/internal/db"
	"github.com/sdss/catalogdb/internal/files/filesystem"
	"github.com/sdss/catalogdb/internal/logging"
	"github.com/sdss/catalogdb/internal/services"
	"github.com/sdss/catalogdb/internal/testinfra"
	"github.com/sdss/catalogdb/pkg/catalogdb"
)

// TestConnEnvVar names the variable that points integration tests at an
// existing server instead of a container.
const TestConnEnvVar = "CATALOGDB_TEST_CONN"

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		container, err := testinfra.StartPostgres(context.Background())
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// skip emits a SkippedTestWarning to stderr and skips t.
func skip(t *testing.T, format string, args ...interface{}) {
	t.Helper()

	w := catalogdb.NewSkippedTestWarning(format, args...)
	w.Emit(logging.NewConsoleLogger(false))
	t.Skip(w.String())
}

// GetTestConnectionString returns the test database connection string.
// Priority: CATALOGDB_TEST_CONN > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(TestConnEnvVar); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		skip(t, "%s not set and Docker unavailable: %v", TestConnEnvVar, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		skip(t, "skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// RequireConfig is RequireDatabase parsed into a ConnectionConfig.
func RequireConfig(t *testing.T) *catalogdb.ConnectionConfig {
	t.Helper()

	cfg, err := db.ParseConnectionString(RequireDatabase(t))
	if err != nil {
		t.Fatalf("Failed to parse test connection string: %v", err)
	}
	return cfg
}

// NewTestLoader returns a LoadService on the real connector factory and
// the OS filesystem, logging nothing.
func NewTestLoader(t *testing.T) *services.LoadService {
	t.Helper()

	return services.NewLoadService(db.NewConnector, filesystem.NewOSFileSystem(), logging.NewNullLogger())
}

// Connect opens a connection that is closed when the test completes.
func Connect(t *testing.T, connString string) *pgx.Conn {
	t.Helper()

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(context.Background()) })
	return conn
}

// CreateTestSchema creates a uniquely named schema and drops it, with
// everything in it, when the test completes.
func CreateTestSchema(t *testing.T, connString string) string {
	t.Helper()

	ctx := context.Background()
	schema := "catalogdb_test_" + uuid.NewString()[:8]

	conn := Connect(t, connString)
	ident := pgx.Identifier{schema}.Sanitize()
	if _, err := conn.Exec(ctx, "CREATE SCHEMA "+ident); err != nil {
		t.Fatalf("Failed to create schema %s: %v", schema, err)
	}

	t.Cleanup(func() {
		cleanup, err := pgx.Connect(context.Background(), connString)
		if err != nil {
			t.Logf("Warning: failed to connect for cleanup: %v", err)
			return
		}
		defer cleanup.Close(context.Background())

		if _, err := cleanup.Exec(context.Background(), "DROP SCHEMA IF EXISTS "+ident+" CASCADE"); err != nil {
			t.Logf("Warning: failed to drop schema %s: %v", schema, err)
		}
	})

	return schema
}

// CreateTable creates schema.table with the given column definitions,
// as read from a table definition file.
func CreateTable(t *testing.T, connString, schema, table string, columns []string) {
	t.Helper()

	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", pgx.Identifier{schema, table}.Sanitize(), strings.Join(columns, ", "))
	if _, err := Connect(t, connString).Exec(context.Background(), ddl); err != nil {
		t.Fatalf("Failed to create table %s.%s: %v", schema, table, err)
	}
}

// CountRows returns the number of rows in schema.table.
func CountRows(t *testing.T, connString, schema, table string) int64 {
	t.Helper()

	var n int64
	sql := "SELECT count(*) FROM " + pgx.Identifier{schema, table}.Sanitize()
	if err := Connect(t, connString).QueryRow(context.Background(), sql).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows in %s.%s: %v", schema, table, err)
	}
	return n
}
