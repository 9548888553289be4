package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sdss/catalogdb/pkg/catalogdb"
)

type mockRow struct {
	exists bool
	err    error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*bool) = r.exists
	return nil
}

// mockConn records everything a load does to its connection.
type mockConn struct {
	tableExists bool
	queryErr    error
	beginErr    error
	copyErr     error
	commitErr   error
	closeErr    error

	queryArgs  []any
	copySQL    string
	copied     string
	committed  bool
	rolledBack bool
	closed     int
}

func (c *mockConn) QueryRow(_ context.Context, _ string, args ...any) catalogdb.Row {
	c.queryArgs = args
	return mockRow{exists: c.tableExists, err: c.queryErr}
}

func (c *mockConn) Begin(_ context.Context) (catalogdb.Tx, error) {
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	return &mockTx{conn: c}, nil
}

func (c *mockConn) Close(_ context.Context) error {
	c.closed++
	return c.closeErr
}

type mockTx struct {
	conn *mockConn
}

func (t *mockTx) CopyFrom(_ context.Context, r io.Reader, sql string) (int64, error) {
	t.conn.copySQL = sql
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	t.conn.copied = string(data)
	if t.conn.copyErr != nil {
		return 0, t.conn.copyErr
	}
	return int64(strings.Count(t.conn.copied, "\n")), nil
}

func (t *mockTx) Commit(_ context.Context) error {
	t.conn.committed = true
	return t.conn.commitErr
}

func (t *mockTx) Rollback(_ context.Context) error {
	t.conn.rolledBack = true
	return nil
}

type mockConnector struct {
	conn catalogdb.DBConnection
	err  error
}

func (m *mockConnector) Connect(_ context.Context) (catalogdb.DBConnection, error) {
	return m.conn, m.err
}

// recordingLogger keeps every message, prefixed by level.
type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) add(level, format string, args ...interface{}) {
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Verbose(format string, args ...interface{}) {
	l.add("VERBOSE", format, args...)
}

func (l *recordingLogger) Info(format string, args ...interface{}) {
	l.add("INFO", format, args...)
}

func (l *recordingLogger) Warn(format string, args ...interface{}) {
	l.add("WARN", format, args...)
}

func (l *recordingLogger) Error(format string, args ...interface{}) {
	l.add("ERROR", format, args...)
}

func (l *recordingLogger) contains(level, substr string) bool {
	for _, line := range l.lines {
		if strings.HasPrefix(line, level+" ") && strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
