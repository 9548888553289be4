package db

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/sdss/catalogdb/pkg/catalogdb"
)

// connAdapter adapts *pgx.Conn to catalogdb.DBConnection.
type connAdapter struct {
	conn    *pgx.Conn
	onClose func() error
	closed  bool
}

// NewConnAdapter wraps an open pgx connection. onClose, when non-nil, runs
// after the connection is closed and releases resources the connector
// attached to it (such as a Cloud SQL dialer).
func NewConnAdapter(conn *pgx.Conn, onClose func() error) catalogdb.DBConnection {
	return &connAdapter{conn: conn, onClose: onClose}
}

func (a *connAdapter) QueryRow(ctx context.Context, sql string, args ...any) catalogdb.Row {
	return a.conn.QueryRow(ctx, sql, args...)
}

func (a *connAdapter) Begin(ctx context.Context) (catalogdb.Tx, error) {
	tx, err := a.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &txAdapter{tx: tx}, nil
}

// Close is idempotent.
func (a *connAdapter) Close(ctx context.Context) error {
	if a.closed {
		return nil
	}
	a.closed = true

	err := a.conn.Close(ctx)
	if a.onClose != nil {
		err = errors.Join(err, a.onClose())
	}
	return err
}

// txAdapter adapts pgx.Tx to catalogdb.Tx.
type txAdapter struct {
	tx pgx.Tx
}

func (t *txAdapter) CopyFrom(ctx context.Context, r io.Reader, sql string) (int64, error) {
	tag, err := t.tx.Conn().PgConn().CopyFrom(ctx, r, sql)
	if err != nil {
		return 0, fmt.Errorf("copy failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (t *txAdapter) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *txAdapter) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
