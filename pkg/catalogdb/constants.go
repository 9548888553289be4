package catalogdb

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Load completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect to database
	ExitSourceNotFound  = 12 // Source or definition file not found
	ExitCopyFailed      = 13 // Server rejected the COPY
	ExitNotImplemented  = 14 // Feature not implemented yet
	ExitTableNotFound   = 15 // Destination table does not exist
)

const (
	// DefaultHost is used when no host is configured.
	DefaultHost = "localhost"

	// DefaultPort is the standard PostgreSQL port.
	DefaultPort = 5432

	// DefaultSSLMode matches libpq's default.
	DefaultSSLMode = "prefer"

	// DefaultDelimiter separates fields in the source file.
	DefaultDelimiter = ","

	// DefaultTimeout bounds a single load from the CLI.
	DefaultTimeout = 30 * time.Minute

	// ApplicationName is reported to the server as application_name.
	ApplicationName = "catalogdb"
)
