// Package config loads the optional catalogdb.yaml project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sdss/catalogdb/pkg/catalogdb"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`

	// Deprecated: use Database. Kept so older files still load.
	DBName string `yaml:"dbname,omitempty"`
}

// LoadConfig holds defaults for the copy command.
type LoadConfig struct {
	Schema    string `yaml:"schema"`
	Delimiter string `yaml:"delimiter"`
	Header    bool   `yaml:"header"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Load       LoadConfig       `yaml:"load"`
	Timeout    string           `yaml:"timeout"`
}

const ConfigFileName = "catalogdb.yaml"

// Load reads ConfigFileName from dir.
func Load(dir string) (*ProjectConfig, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w: %w", configPath, err, catalogdb.ErrInvalidConfig)
	}
	return &cfg, nil
}

// Normalize folds deprecated keys into their replacements and returns a
// deprecation warning for each one found.
func (c *ProjectConfig) Normalize() []catalogdb.Warning {
	var warnings []catalogdb.Warning

	if c.Connection.DBName != "" {
		if c.Connection.Database == "" {
			c.Connection.Database = c.Connection.DBName
			warnings = append(warnings, catalogdb.NewDeprecationWarning(
				"%s: connection.dbname is deprecated, use connection.database", ConfigFileName))
		} else {
			warnings = append(warnings, catalogdb.NewDeprecationWarning(
				"%s: connection.dbname is deprecated and ignored because connection.database is set", ConfigFileName))
		}
		c.Connection.DBName = ""
	}

	return warnings
}

// TimeoutDuration parses Timeout. It returns zero when Timeout is empty.
func (c *ProjectConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q in %s: %w", c.Timeout, ConfigFileName, catalogdb.ErrInvalidConfig)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout in %s must be positive, got %s: %w", ConfigFileName, c.Timeout, catalogdb.ErrInvalidConfig)
	}
	return d, nil
}
