package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5"
	"github.com/sdss/catalogdb/pkg/catalogdb"
)

// GoogleCloudSQLConnector implements the Connector interface for Google Cloud SQL
// using IAM database authentication via the Cloud SQL Go Connector.
// The dialer lives as long as the connection and is closed with it.
type GoogleCloudSQLConnector struct {
	config   *catalogdb.ConnectionConfig
	instance string
}

// NewGoogleCloudSQLConnector creates a connector for Google Cloud SQL IAM authentication.
// instance is the instance connection name in format: project:region:instance
func NewGoogleCloudSQLConnector(config *catalogdb.ConnectionConfig, instance string) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{
		config:   config,
		instance: instance,
	}
}

// Connect opens a connection through the Cloud SQL dialer, which handles
// IAM authentication and TLS.
func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (catalogdb.DBConnection, error) {
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w: %w", catalogdb.ErrConnectionFailed, err)
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s dbname=%s sslmode=disable",
		quoteKeywordValue(c.instance),
		quoteKeywordValue(c.config.Username),
		quoteKeywordValue(c.config.Database),
	)
	if c.config.AppName != "" {
		dsn += " application_name=" + quoteKeywordValue(c.config.AppName)
	}

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		_ = dialer.Close()
		return nil, fmt.Errorf("failed to parse connection config: %w: %w", err, catalogdb.ErrInvalidConfig)
	}

	connConfig.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(ctx, c.instance)
	}

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		_ = dialer.Close()
		return nil, fmt.Errorf("failed to connect to Cloud SQL instance %s: %w: %w", c.instance, catalogdb.ErrConnectionFailed, err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		_ = dialer.Close()
		return nil, fmt.Errorf("failed to ping Cloud SQL instance %s: %w: %w", c.instance, catalogdb.ErrConnectionFailed, err)
	}

	return NewConnAdapter(conn, dialer.Close), nil
}
