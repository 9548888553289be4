package catalogdb

import "context"

// Connector is a unified interface for establishing database connections.
// Different implementations handle various authentication methods
// (standard credentials, cloud IAM, etc.).
type Connector interface {
	// Connect opens a single dedicated connection.
	// The caller owns the returned connection and must Close it.
	Connect(ctx context.Context) (DBConnection, error)
}

// ConnectorFactory builds a Connector for a resolved configuration.
type ConnectorFactory func(config *ConnectionConfig) (Connector, error)
