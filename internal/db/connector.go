package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/sdss/catalogdb/pkg/catalogdb"
)

// StandardConnector implements the Connector interface for standard
// username/password authentication. It opens exactly one connection per
// Connect call; there is no pooling and no retry.
type StandardConnector struct {
	config *catalogdb.ConnectionConfig
}

// NewStandardConnector creates a new StandardConnector with the given configuration.
func NewStandardConnector(config *catalogdb.ConnectionConfig) *StandardConnector {
	return &StandardConnector{config: config}
}

// Connect opens and pings a connection using standard authentication.
func (c *StandardConnector) Connect(ctx context.Context) (catalogdb.DBConnection, error) {
	conn, err := connect(ctx, c.config)
	if err != nil {
		return nil, err
	}
	return NewConnAdapter(conn, nil), nil
}

// connect opens a single pgx connection for config and verifies it with a ping.
// pgx itself falls back to ~/.pgpass when config carries no password.
func connect(ctx context.Context, config *catalogdb.ConnectionConfig) (*pgx.Conn, error) {
	connConfig, err := pgx.ParseConfig(BuildConnectionString(config))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w: %w", err, catalogdb.ErrInvalidConfig)
	}

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}

	return conn, nil
}

// NewConnector is a factory function that creates the appropriate Connector
// based on the ConnectionConfig's AuthMethod. It satisfies
// catalogdb.ConnectorFactory.
func NewConnector(config *catalogdb.ConnectionConfig) (catalogdb.Connector, error) {
	switch config.AuthMethod {
	case catalogdb.AuthMethodStandard:
		return NewStandardConnector(config), nil
	case catalogdb.AuthMethodAWSIAM:
		return newAWSConnector(config)
	case catalogdb.AuthMethodGoogleIAM:
		return newGoogleConnector(config)
	case catalogdb.AuthMethodAzureEntraID:
		return newAzureConnector(config)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, catalogdb.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
// Every returned error matches catalogdb.ErrConnectionFailed.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	var hint string
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		hint = fmt.Sprintf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port`, addr, host, port)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		hint = fmt.Sprintf(`cannot resolve host "%s"

Check the hostname and your DNS configuration.`, host)

	case strings.Contains(errStr, "password authentication failed"):
		hint = fmt.Sprintf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $PGPASSWORD or ~/.pgpass)
  - Wrong username`, database)

	case strings.Contains(errStr, "does not exist"):
		hint = fmt.Sprintf(`database "%s" does not exist

To create it:
  createdb %s`, database, database)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		hint = fmt.Sprintf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets`, addr)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		hint = `SSL/TLS connection error

Server requires SSL but --sslmode is wrong, or certificate verification
failed (try --sslmode=require).`

	default:
		return fmt.Errorf("failed to connect to database: %w: %w", catalogdb.ErrConnectionFailed, err)
	}

	return fmt.Errorf("%s\n\nOriginal error: %w: %w", hint, catalogdb.ErrConnectionFailed, err)
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(config *catalogdb.ConnectionConfig) (catalogdb.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}

	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM"), nil
}

// newGoogleConnector creates a GoogleCloudSQLConnector for Google Cloud SQL IAM authentication.
func newGoogleConnector(config *catalogdb.ConnectionConfig) (catalogdb.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", catalogdb.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U): %w", catalogdb.ErrInvalidConfig)
	}

	return NewGoogleCloudSQLConnector(config, config.GoogleInstance), nil
}

// newAzureConnector creates a token-based connector with the Azure Entra ID token provider.
// Explicit tenant, client and secret select Service Principal auth;
// otherwise the DefaultAzureCredential chain is used.
func newAzureConnector(config *catalogdb.ConnectionConfig) (catalogdb.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(
			config.AzureTenantID,
			config.AzureClientID,
			config.AzureClientSecret,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
	}

	return NewTokenBasedConnector(config, tokenProvider, "Azure"), nil
}
