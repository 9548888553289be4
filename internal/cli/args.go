package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireTableAndFile validates that exactly <table> and <file> are provided.
// Returns a helpful error message with usage and examples if missing or too many.
func RequireTableAndFile(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf(`missing required argument: <table> <file>

Usage: %s

Example:
  %s gaia_dr3_source gaia_dr3_source.csv.gz --schema catalogdb -d sdss5db`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 2 {
		return fmt.Errorf("accepts 2 arg(s), received %d", len(args))
	}
	return nil
}

// RequireDefinitionFile validates that exactly one <file> argument is provided.
func RequireDefinitionFile(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <file>

Usage: %s

Example:
  %s gaia_dr3_source.sql --names`, cmd.UseLine(), cmd.CommandPath())
	}
	if len(args) > 1 {
		return fmt.Errorf("accepts 1 arg(s), received %d", len(args))
	}
	return nil
}
