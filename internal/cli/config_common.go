package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sdss/catalogdb/internal/config"
	"github.com/sdss/catalogdb/pkg/catalogdb"
)

// loadProjectConfig loads .env and catalogdb.yaml from dir.
// Returns nil config if catalogdb.yaml does not exist (not an error).
// Deprecated keys are folded in and reported through logger.
func loadProjectConfig(dir string, logger catalogdb.Logger) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	projectCfg, err := config.Load(dir)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
	}

	for _, w := range projectCfg.Normalize() {
		w.Emit(logger)
	}
	return projectCfg, nil
}

// resolveEffectiveTimeout returns the effective timeout, preferring
// catalogdb.yaml if the flag wasn't set.
func resolveEffectiveTimeout(
	cmd *cobra.Command,
	projectCfg *config.ProjectConfig,
	flagTimeout time.Duration,
) (time.Duration, error) {
	if projectCfg != nil && !cmd.Flags().Changed("timeout") {
		parsed, err := projectCfg.TimeoutDuration()
		if err != nil {
			return 0, err
		}
		if parsed > 0 {
			return parsed, nil
		}
	}
	return flagTimeout, nil
}

// resolveLoadRequest builds the LoadRequest for copy. Flags the user set win
// over the load section of catalogdb.yaml.
func resolveLoadRequest(
	cmd *cobra.Command,
	table, file string,
	flags copyFlagValues,
	projectCfg *config.ProjectConfig,
) catalogdb.LoadRequest {
	req := catalogdb.LoadRequest{
		Table:     table,
		File:      file,
		Schema:    flags.schema,
		Header:    flags.header,
		Delimiter: flags.delimiter,
	}

	if projectCfg == nil {
		return req
	}

	load := projectCfg.Load
	if !cmd.Flags().Changed("schema") && load.Schema != "" {
		req.Schema = load.Schema
	}
	if !cmd.Flags().Changed("header") && load.Header {
		req.Header = true
	}
	if !cmd.Flags().Changed("delimiter") && load.Delimiter != "" {
		req.Delimiter = load.Delimiter
	}
	return req
}
