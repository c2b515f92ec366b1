package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables in the database",
		Long:  `Print the name of every table in the Access database, one per line, in mdb-tables order.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := envOf(cmd).Reader()
			if err != nil {
				return err
			}

			tables, err := r.ListTables(cmd.Context())
			if err != nil {
				return err
			}
			for name := range tables {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
