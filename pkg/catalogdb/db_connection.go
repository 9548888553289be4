package catalogdb

import (
	"context"
	"io"
)

// DBConnection abstracts the single connection a load runs on.
// It decouples the loader from pgx-specific types.
//
// Thread-Safety: not safe for concurrent use, like the pgx.Conn it wraps.
type DBConnection interface {
	// QueryRow executes a query that is expected to return at most one row.
	// Errors are deferred until Row's Scan method is called.
	QueryRow(ctx context.Context, sql string, args ...any) Row

	// Begin starts a transaction.
	Begin(ctx context.Context) (Tx, error)

	// Close closes the connection and releases anything the connector
	// attached to it.
	Close(ctx context.Context) error
}

// Row represents a single row returned by QueryRow.
type Row interface {
	// Scan reads the values from the row into dest values.
	Scan(dest ...any) error
}

// Tx is a transaction able to stream a COPY FROM STDIN.
type Tx interface {
	// CopyFrom runs sql, which must be a COPY ... FROM STDIN statement,
	// feeding it from r. Returns the number of rows copied.
	CopyFrom(ctx context.Context, r io.Reader, sql string) (int64, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
