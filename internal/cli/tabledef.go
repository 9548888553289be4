package cli

import (
	"fmt"

	"github.com/sdss/catalogdb/internal/tabledef"
	"github.com/spf13/cobra"
)

var tabledefCmd = &cobra.Command{
	Use:   "tabledef <file>",
	Short: "Print the column definitions of a table definition file",
	Long: `Tabledef reads a table definition file (one column per line, '#'
comments, brackets stripped) and prints one definition per line.

Examples:
  catalogdb tabledef gaia_dr3_source.sql
  catalogdb tabledef gaia_dr3_source.sql --names`,
	Args: RequireDefinitionFile,
	RunE: runTabledef,
}

var tabledefNames bool

func init() {
	rootCmd.AddCommand(tabledefCmd)

	tabledefCmd.Flags().BoolVar(&tabledefNames, "names", false,
		"Print only the column names")
}

func runTabledef(cmd *cobra.Command, args []string) error {
	columns, err := tabledef.ReadFile(args[0])
	if err != nil {
		return err
	}

	lines := columns
	if tabledefNames {
		lines = tabledef.ColumnNames(columns)
	}

	out := cmd.OutOrStdout()
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	return nil
}
