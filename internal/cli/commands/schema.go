package commands

import (
	"fmt"
	"strings"

	"github.com/koustreak/mdbread/internal/mdb"
	"github.com/spf13/cobra"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	var (
		drop    bool
		dialect string
	)

	cmd := &cobra.Command{
		Use:   "schema <table>",
		Short: "Print the CREATE TABLE statement for a table",
		Long: `Print the DDL mdb-schema produces for one table.

For the mysql dialect, varchar columns longer than 255 characters are
rewritten to text.`,
		Example: `  mdbread schema Customers --db northwind.mdb
  mdbread schema "Order Details" --dialect postgres --drop`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := envOf(cmd).Reader()
			if err != nil {
				return err
			}

			schema, err := r.ExportSchema(cmd.Context(), args[0], mdb.SchemaOptions{
				DropTable: drop,
				Dialect:   mdb.Dialect(dialect),
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(schema, "\n"))
			return err
		},
	}

	cmd.Flags().BoolVar(&drop, "drop", false, "Emit DROP TABLE before CREATE TABLE")
	cmd.Flags().StringVar(&dialect, "dialect", string(mdb.DefaultDialect), "SQL dialect (access, sybase, oracle, postgres, mysql, sqlite)")
	_ = cmd.RegisterFlagCompletionFunc("dialect", completeDialects)

	return cmd
}

func completeDialects(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		string(mdb.DialectAccess), string(mdb.DialectSybase), string(mdb.DialectOracle),
		string(mdb.DialectPostgres), string(mdb.DialectMySQL), string(mdb.DialectSQLite),
	}, cobra.ShellCompDirectiveNoFileComp
}
