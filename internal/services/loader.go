package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sdss/catalogdb/internal/db"
	"github.com/sdss/catalogdb/internal/files/filesystem"
	"github.com/sdss/catalogdb/internal/source"
	"github.com/sdss/catalogdb/pkg/catalogdb"
)

// LoadService implements the Loader interface.
// Thread-Safety: safe for concurrent loads as long as each call gets its own
// connection; the service itself holds no per-load state.
type LoadService struct {
	connectorFactory catalogdb.ConnectorFactory
	fsys             filesystem.FileSystemProvider
	logger           catalogdb.Logger
}

// NewLoadService creates a new LoadService with all dependencies injected.
// Panics on nil dependencies: those are wiring mistakes, not runtime conditions.
func NewLoadService(
	connectorFactory catalogdb.ConnectorFactory,
	fsys filesystem.FileSystemProvider,
	logger catalogdb.Logger,
) *LoadService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if fsys == nil {
		panic("fsys cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &LoadService{
		connectorFactory: connectorFactory,
		fsys:             fsys,
		logger:           logger,
	}
}

// CopyCSVWithConfig opens a connection from config and loads req through it.
// The load id is appended to the application_name so the session can be
// found in pg_stat_activity.
func (s *LoadService) CopyCSVWithConfig(ctx context.Context, config *catalogdb.ConnectionConfig, req catalogdb.LoadRequest) (bool, error) {
	if config == nil {
		return false, fmt.Errorf("connection config is required: %w", catalogdb.ErrInvalidConfig)
	}
	if err := req.Validate(); err != nil {
		return false, err
	}

	connConfig := *config
	if connConfig.Host == "" && connConfig.AuthMethod != catalogdb.AuthMethodGoogleIAM {
		connConfig.Host = catalogdb.DefaultHost
	}
	if connConfig.Port == 0 {
		connConfig.Port = catalogdb.DefaultPort
	}
	if err := connConfig.Validate(); err != nil {
		return false, err
	}

	loadID := uuid.New()
	connConfig.AppName = fmt.Sprintf("%s/%s", catalogdb.ApplicationName, loadID)

	connector, err := s.connectorFactory(&connConfig)
	if err != nil {
		return false, fmt.Errorf("failed to create connector: %w", err)
	}

	s.logger.Verbose("Connecting to %s:%d/%s", connConfig.Host, connConfig.Port, connConfig.Database)
	conn, err := connector.Connect(ctx)
	if err != nil {
		return false, err
	}

	return s.copyCSV(ctx, conn, req, loadID)
}

// CopyCSV loads req over conn. conn is closed before CopyCSV returns.
func (s *LoadService) CopyCSV(ctx context.Context, conn catalogdb.DBConnection, req catalogdb.LoadRequest) (bool, error) {
	if conn == nil {
		return false, fmt.Errorf("connection is required: %w", catalogdb.ErrInvalidConfig)
	}
	return s.copyCSV(ctx, conn, req, uuid.New())
}

func (s *LoadService) copyCSV(ctx context.Context, conn catalogdb.DBConnection, req catalogdb.LoadRequest, loadID uuid.UUID) (ok bool, err error) {
	defer func() {
		if closeErr := conn.Close(context.WithoutCancel(ctx)); closeErr != nil {
			if err == nil {
				err = fmt.Errorf("failed to close connection: %w", closeErr)
			} else {
				s.logger.Verbose("Closing connection after failure: %v", closeErr)
			}
		}
	}()

	if err := req.Validate(); err != nil {
		return false, err
	}

	target := req.QualifiedName()
	s.logger.Verbose("Load %s: %s -> %s", loadID, req.File, target)

	exists, err := db.TableExists(ctx, conn, req.Table, req.Schema)
	if err != nil {
		return false, err
	}
	if !exists {
		s.logger.Verbose("Load %s: table %s does not exist", loadID, target)
		return false, nil
	}

	src, err := source.Open(s.fsys, req.File)
	if err != nil {
		return false, err
	}
	defer src.Close()

	s.logger.Verbose("Load %s: compression %s", loadID, src.Compression())

	if req.Header {
		skipped, err := src.SkipLine()
		if err != nil {
			return false, fmt.Errorf("failed to skip header of %s: %w", req.File, err)
		}
		if !skipped {
			catalogdb.NewUserWarning("--header was given but %s has no lines", req.File).Emit(s.logger)
		}
	}

	rows, err := s.copyInTx(ctx, conn, src, CopySQL(req))
	if err != nil {
		return false, err
	}

	s.logger.Info("Loaded %d rows into %s", rows, target)
	s.logger.Verbose("Load %s: %s %s", loadID, src.Compression(), src.Digest())
	return true, nil
}

// copyInTx streams src through COPY inside a transaction and commits.
// Any failure rolls the transaction back.
func (s *LoadService) copyInTx(ctx context.Context, conn catalogdb.DBConnection, src *source.Reader, sql string) (int64, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	rows, err := tx.CopyFrom(ctx, src, sql)
	if err != nil {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			return 0, errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return rows, nil
}

// CopySQL renders the COPY statement for req. The table name is quoted as an
// identifier and the delimiter as a string literal.
func CopySQL(req catalogdb.LoadRequest) string {
	var ident pgx.Identifier
	if req.Schema != "" {
		ident = pgx.Identifier{req.Schema, req.Table}
	} else {
		ident = pgx.Identifier{req.Table}
	}

	delimiter := req.Delimiter
	if delimiter == "" {
		delimiter = catalogdb.DefaultDelimiter
	}
	delimiter = strings.ReplaceAll(delimiter, "'", "''")

	return fmt.Sprintf("COPY %s FROM STDIN WITH (FORMAT csv, DELIMITER '%s')", ident.Sanitize(), delimiter)
}
