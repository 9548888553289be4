package db

import (
	"context"
	"fmt"

	"github.com/sdss/catalogdb/pkg/catalogdb"
)

// Querier is the subset of a connection needed for catalog lookups.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) catalogdb.Row
}

const (
	tableExistsSQL = `SELECT EXISTS (
	SELECT 1 FROM information_schema.tables
	WHERE table_name = $1
)`

	tableExistsInSchemaSQL = `SELECT EXISTS (
	SELECT 1 FROM information_schema.tables
	WHERE table_name = $1 AND table_schema = $2
)`
)

// TableExists reports whether a table (or view) named table is visible in
// information_schema. An empty schema matches the table in any schema.
// Names are passed as bind parameters, never interpolated.
func TableExists(ctx context.Context, q Querier, table, schema string) (bool, error) {
	if table == "" {
		return false, fmt.Errorf("table name is required: %w", catalogdb.ErrInvalidConfig)
	}

	var row catalogdb.Row
	if schema == "" {
		row = q.QueryRow(ctx, tableExistsSQL, table)
	} else {
		row = q.QueryRow(ctx, tableExistsInSchemaSQL, table, schema)
	}

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to query information_schema for %q: %w", table, err)
	}
	return exists, nil
}
