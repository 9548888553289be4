package catalogdb

import (
	"errors"
	"fmt"
	"time"
)

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWS RDS IAM authentication (AuthMethodAWSIAM)
	AWSRegion string

	// Google Cloud SQL instance connection name, project:region:instance (AuthMethodGoogleIAM)
	GoogleInstance string

	// Azure Entra ID authentication parameters (AuthMethodAzureEntraID).
	// If all three are provided, Service Principal authentication is used.
	// Otherwise the DefaultAzureCredential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// NewConnectionConfig returns a config for database and user with the
// default host and port.
func NewConnectionConfig(database, user string) *ConnectionConfig {
	return &ConnectionConfig{
		Host:             DefaultHost,
		Port:             DefaultPort,
		Database:         database,
		Username:         user,
		SSLMode:          DefaultSSLMode,
		AuthMethod:       AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}
}

// Validate checks if the ConnectionConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *ConnectionConfig) Validate() error {
	var errs []error

	if c.Database == "" {
		errs = append(errs, fmt.Errorf("database is required: %w", ErrInvalidConfig))
	}
	if c.Host == "" && c.AuthMethod != AuthMethodGoogleIAM {
		errs = append(errs, fmt.Errorf("host is required: %w", ErrInvalidConfig))
	}
	// The Cloud SQL dialer picks the port, so Google IAM needs none.
	if (c.AuthMethod != AuthMethodGoogleIAM && c.Port < 1) || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range: %w", c.Port, ErrInvalidConfig))
	}
	if !c.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %v: %w", c.AuthMethod, ErrUnsupportedAuthMethod))
	}

	return errors.Join(errs...)
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod maps the names accepted in catalogdb.yaml to an AuthMethod.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch s {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam":
		return AuthMethodGoogleIAM, nil
	case "azure", "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("auth method %q: %w", s, ErrUnsupportedAuthMethod)
	}
}

// LoadRequest describes one bulk load of a delimited file into a table.
type LoadRequest struct {
	// Table is the destination table name (required)
	Table string

	// Schema qualifies Table when set
	Schema string

	// File is the path of the source file, plain or compressed (required)
	File string

	// Header discards the first line of the file before loading
	Header bool

	// Delimiter separates fields. Defaults to DefaultDelimiter.
	Delimiter string
}

// Validate checks the request and fills in the default delimiter.
// It returns a multi-error if multiple validation failures occur.
func (r *LoadRequest) Validate() error {
	var errs []error

	if r.Table == "" {
		errs = append(errs, fmt.Errorf("table is required: %w", ErrInvalidConfig))
	}
	if r.File == "" {
		errs = append(errs, fmt.Errorf("file is required: %w", ErrInvalidConfig))
	}

	if r.Delimiter == "" {
		r.Delimiter = DefaultDelimiter
	}
	switch {
	case len(r.Delimiter) != 1:
		errs = append(errs, fmt.Errorf("delimiter %q must be a single one-byte character: %w", r.Delimiter, ErrInvalidConfig))
	case r.Delimiter == "\n" || r.Delimiter == "\r":
		errs = append(errs, fmt.Errorf("delimiter cannot be newline or carriage return: %w", ErrInvalidConfig))
	case r.Delimiter == `"`:
		errs = append(errs, fmt.Errorf("delimiter cannot be the CSV quote character: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// QualifiedName returns "schema.table", or the bare table when no schema is set.
func (r LoadRequest) QualifiedName() string {
	if r.Schema != "" {
		return r.Schema + "." + r.Table
	}
	return r.Table
}
