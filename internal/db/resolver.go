package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sdss/catalogdb/internal/config"
	"github.com/sdss/catalogdb/pkg/catalogdb"
)

// GranularConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (-h, -p, -U, -d).
//
// Note: Password is NOT included as a CLI flag for security reasons.
// Use $PGPASSWORD, ~/.pgpass or a connection string instead.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty returns true if no connection-related granular flags were provided by the user.
// Database is excluded: -d may override the database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags selects a token-based authentication method.
// Client secrets are never flags; Azure reads AZURE_CLIENT_SECRET.
type CloudFlags struct {
	AWS            bool
	AWSRegion      string
	GoogleInstance string
	Azure          bool
	AzureTenantID  string
	AzureClientID  string
}

// EnvVars represents PostgreSQL standard environment variables plus the
// cloud variables the connectors read.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string

	CATALOGDB_CONNECTION_STRING string

	AWS_REGION          string
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:                      os.Getenv("PGHOST"),
		PGPORT:                      os.Getenv("PGPORT"),
		PGUSER:                      os.Getenv("PGUSER"),
		PGPASSWORD:                  os.Getenv("PGPASSWORD"),
		PGDATABASE:                  os.Getenv("PGDATABASE"),
		PGSSLMODE:                   os.Getenv("PGSSLMODE"),
		DATABASE_URL:                os.Getenv("DATABASE_URL"),
		CATALOGDB_CONNECTION_STRING: os.Getenv("CATALOGDB_CONNECTION_STRING"),
		AWS_REGION:                  os.Getenv("AWS_REGION"),
		AZURE_TENANT_ID:             os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:             os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET:         os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

func (e *EnvVars) connectionString() string {
	if e.CATALOGDB_CONNECTION_STRING != "" {
		return e.CATALOGDB_CONNECTION_STRING
	}
	return e.DATABASE_URL
}

// ResolveConnectionParams resolves connection parameters using PostgreSQL-standard precedence:
//
//  1. Connection string flag (--connection)
//  2. Granular flags (-h, -p, -U, -d)
//  3. Environment variables (PGHOST, PGPORT, ...)
//  4. CATALOGDB_CONNECTION_STRING, then DATABASE_URL, when no granular flag is set
//  5. catalogdb.yaml
//  6. Defaults (localhost:5432, prefer SSL)
//
// The -d flag always overrides the database of a connection string.
// Supplying both --connection and granular flags is rejected.
func ResolveConnectionParams(
	connStringFlag string,
	granularFlags *GranularConnFlags,
	cloudFlags *CloudFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*catalogdb.ConnectionConfig, error) {
	if granularFlags == nil {
		granularFlags = &GranularConnFlags{}
	}
	if cloudFlags == nil {
		cloudFlags = &CloudFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}

	if connStringFlag != "" && !granularFlags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (-h, -p, -U, --sslmode)\n"+
				"Choose one approach:\n"+
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/sdss5db\"\n"+
				"  2. Granular flags: -h localhost -p 5432 -U myuser -d sdss5db\n"+
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=myuser: %w",
			catalogdb.ErrInvalidConfig,
		)
	}

	var cfg *catalogdb.ConnectionConfig
	var err error

	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, envVars)
	case granularFlags.IsEmpty() && envVars.connectionString() != "":
		cfg, err = resolveFromConnectionString(envVars.connectionString(), envVars)
	default:
		cfg, err = resolveFromGranularParams(granularFlags, envVars, projectConfig)
	}
	if err != nil {
		return nil, err
	}

	if granularFlags.Database != "" {
		cfg.Database = granularFlags.Database
	}

	if err := applyAuthMethod(cfg, cloudFlags, envVars, projectConfig); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveFromConnectionString parses a connection string and applies the
// environment as a fallback for what the string leaves out.
func resolveFromConnectionString(connStr string, envVars *EnvVars) (*catalogdb.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w: %w", err, catalogdb.ErrInvalidConfig)
	}

	if cfg.Password == "" {
		cfg.Password = envVars.PGPASSWORD
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = envVars.PGSSLMODE
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = catalogdb.DefaultSSLMode
	}

	return cfg, nil
}

// resolveFromGranularParams builds ConnectionConfig from granular flags,
// environment variables and catalogdb.yaml, in that order of precedence.
func resolveFromGranularParams(
	flags *GranularConnFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*catalogdb.ConnectionConfig, error) {
	cfg := &catalogdb.ConnectionConfig{
		AuthMethod:       catalogdb.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	cfg.Host = firstNonEmpty(flags.Host, envVars.PGHOST, pc.Host, catalogdb.DefaultHost)

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case envVars.PGPORT != "":
		port, err := strconv.Atoi(envVars.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be an integer: %w", envVars.PGPORT, catalogdb.ErrInvalidConfig)
		}
		cfg.Port = port
	case pc.Port != 0:
		cfg.Port = pc.Port
	default:
		cfg.Port = catalogdb.DefaultPort
	}

	// Username: flag > PGUSER > catalogdb.yaml > current OS user
	cfg.Username = firstNonEmpty(flags.Username, envVars.PGUSER, pc.Username, os.Getenv("USER"), os.Getenv("USERNAME"))
	cfg.Password = envVars.PGPASSWORD
	cfg.Database = firstNonEmpty(flags.Database, envVars.PGDATABASE, pc.Database)
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, envVars.PGSSLMODE, pc.SSLMode, catalogdb.DefaultSSLMode)

	return cfg, nil
}

// applyAuthMethod selects the authentication method. Flags win over
// catalogdb.yaml; cloud parameters fall back to the environment.
func applyAuthMethod(cfg *catalogdb.ConnectionConfig, flags *CloudFlags, env *EnvVars, projectConfig *config.ProjectConfig) error {
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	selected := 0
	if flags.AWS {
		selected++
		cfg.AuthMethod = catalogdb.AuthMethodAWSIAM
	}
	if flags.GoogleInstance != "" {
		selected++
		cfg.AuthMethod = catalogdb.AuthMethodGoogleIAM
	}
	if flags.Azure || flags.AzureTenantID != "" || flags.AzureClientID != "" {
		selected++
		cfg.AuthMethod = catalogdb.AuthMethodAzureEntraID
	}
	if selected > 1 {
		return fmt.Errorf("choose at most one of --aws, --google-instance and --azure: %w", catalogdb.ErrInvalidConfig)
	}
	if selected == 0 {
		method, err := catalogdb.ParseAuthMethod(pc.AuthMethod)
		if err != nil {
			return err
		}
		cfg.AuthMethod = method
	}

	switch cfg.AuthMethod {
	case catalogdb.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(flags.AWSRegion, env.AWS_REGION, pc.AWSRegion)
	case catalogdb.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(flags.GoogleInstance, pc.GoogleInstance)
	case catalogdb.AuthMethodAzureEntraID:
		cfg.AzureTenantID = firstNonEmpty(flags.AzureTenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
		cfg.AzureClientID = firstNonEmpty(flags.AzureClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
