package cli

import (
	"fmt"

	"github.com/sdss/catalogdb/internal/config"
	"github.com/sdss/catalogdb/internal/db"
	"github.com/sdss/catalogdb/pkg/catalogdb"
	"github.com/spf13/cobra"
)

// connectionFlags holds the common connection-related flag values.
type connectionFlags struct {
	connection     string
	host           string
	port           int
	username       string
	database       string
	sslMode        string
	aws            bool
	awsRegion      string
	googleInstance string
	azure          bool
	azureTenantID  string
	azureClientID  string
}

// registerConnectionFlags binds the connection flags of cmd to f.
func registerConnectionFlags(cmd *cobra.Command, f *connectionFlags) {
	// Connection string flag (mutually exclusive with granular flags)
	cmd.Flags().StringVar(&f.connection, "connection", "",
		"PostgreSQL connection string (URI or keyword/value format).\n"+
			"Mutually exclusive with granular flags (--host, --port, --username, --sslmode).\n"+
			"Alternative: $CATALOGDB_CONNECTION_STRING or $DATABASE_URL.\n"+
			"Example: postgresql://sdss@localhost:5432/sdss5db")

	// Granular connection flags (PostgreSQL standard)
	// Precedence: flag > environment variable > catalogdb.yaml > default
	cmd.Flags().StringVarP(&f.host, "host", "h", "",
		"PostgreSQL server host\n"+
			"Precedence: --host > $PGHOST > catalogdb.yaml > localhost")
	cmd.Flags().IntVarP(&f.port, "port", "p", 0,
		"PostgreSQL server port\n"+
			"Precedence: --port > $PGPORT > catalogdb.yaml > 5432")
	cmd.Flags().StringVarP(&f.username, "username", "U", "",
		"PostgreSQL user (default: $PGUSER or current OS user)")
	cmd.Flags().StringVarP(&f.database, "database", "d", "",
		"Database name (overrides the connection string database, or $PGDATABASE)")
	cmd.Flags().StringVar(&f.sslMode, "sslmode", "",
		"SSL mode: disable|allow|prefer|require|verify-ca|verify-full\n"+
			"(default: prefer, or $PGSSLMODE)")

	cmd.Flags().BoolVar(&f.aws, "aws", false,
		"Enable AWS RDS IAM authentication (default AWS credential chain)")
	cmd.Flags().StringVar(&f.awsRegion, "aws-region", "",
		"AWS region of the RDS instance (overrides $AWS_REGION)")
	cmd.Flags().StringVar(&f.googleInstance, "google-instance", "",
		"Enable Google Cloud SQL IAM authentication for instance project:region:instance")
	cmd.Flags().BoolVar(&f.azure, "azure", false,
		"Enable Azure Entra ID authentication\n"+
			"Uses DefaultAzureCredential chain unless $AZURE_CLIENT_SECRET completes a service principal")
	cmd.Flags().StringVar(&f.azureTenantID, "azure-tenant-id", "",
		"Azure AD tenant/directory ID (overrides $AZURE_TENANT_ID)")
	cmd.Flags().StringVar(&f.azureClientID, "azure-client-id", "",
		"Azure AD application/client ID (overrides $AZURE_CLIENT_ID)")
}

// resolveConnectionFromFlags resolves connection configuration from flags,
// the environment and the project config.
func resolveConnectionFromFlags(
	flags connectionFlags,
	envVars *db.EnvVars,
	projectCfg *config.ProjectConfig,
) (*catalogdb.ConnectionConfig, error) {
	granularFlags := &db.GranularConnFlags{
		Host:     flags.host,
		Port:     flags.port,
		Username: flags.username,
		Database: flags.database,
		SSLMode:  flags.sslMode,
	}

	cloudFlags := &db.CloudFlags{
		AWS:            flags.aws,
		AWSRegion:      flags.awsRegion,
		GoogleInstance: flags.googleInstance,
		Azure:          flags.azure,
		AzureTenantID:  flags.azureTenantID,
		AzureClientID:  flags.azureClientID,
	}

	connConfig, err := db.ResolveConnectionParams(flags.connection, granularFlags, cloudFlags, envVars, projectCfg)
	if err != nil {
		return nil, err
	}

	if connConfig.Database == "" {
		return nil, fmt.Errorf("database name is required\n"+
			"Provide via:\n"+
			"  1. --database/-d flag: catalogdb copy gaia gaia.csv -d sdss5db\n"+
			"  2. Connection string: --connection \"postgresql://user@host/sdss5db\"\n"+
			"  3. Environment variable: export PGDATABASE=sdss5db\n"+
			"  4. catalogdb.yaml: connection.database: %w", catalogdb.ErrInvalidConfig)
	}

	return connConfig, nil
}

// logConnectionVerbose logs connection details when verbose mode is enabled.
func logConnectionVerbose(logger catalogdb.Logger, connConfig *catalogdb.ConnectionConfig) {
	logger.Verbose("Connection resolved:")
	logger.Verbose("  Host: %s", connConfig.Host)
	logger.Verbose("  Port: %d", connConfig.Port)
	logger.Verbose("  User: %s", connConfig.Username)
	logger.Verbose("  Database: %s", connConfig.Database)
	logger.Verbose("  SSL Mode: %s", connConfig.SSLMode)
	logger.Verbose("  Auth Method: %s", connConfig.AuthMethod)
}
