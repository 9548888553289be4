package catalogdb

import "context"

// Loader bulk-loads delimited files into existing tables.
//
// Both methods take ownership of the connection: it is closed before they
// return, whatever the outcome. A missing destination table is reported as
// (false, nil), not as an error. Driver errors propagate unchanged.
type Loader interface {
	// CopyCSV loads req.File into req.Table over an already-open connection.
	CopyCSV(ctx context.Context, conn DBConnection, req LoadRequest) (bool, error)

	// CopyCSVWithConfig opens a connection from config, then behaves like CopyCSV.
	CopyCSVWithConfig(ctx context.Context, config *ConnectionConfig, req LoadRequest) (bool, error)
}
