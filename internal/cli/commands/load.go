package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/koustreak/mdbread/internal/database"
	"github.com/koustreak/mdbread/internal/transfer"
	"github.com/spf13/cobra"
)

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	var (
		driver      string
		dsn         string
		drop        bool
		emptyAsNull bool
		verify      bool
	)

	cmd := &cobra.Command{
		Use:   "load [tables...]",
		Short: "Copy tables into a MySQL, PostgreSQL or SQLite database",
		Long: `Create each table on the target and copy its rows. Without arguments every
table is loaded. Loading stops at the first failing table.

MySQL targets receive the INSERT statements produced by mdb-export.
PostgreSQL and SQLite targets receive parameterized inserts.

mdb-export prints NULL numbers and dates as empty fields, which PostgreSQL
rejects in typed columns. --empty-null therefore defaults to true for
postgres targets and to false otherwise.`,
		Example: `  mdbread load --db northwind.mdb --driver mysql --dsn 'user:pass@tcp(localhost:3306)/northwind'
  mdbread load Customers Orders --driver sqlite --dsn northwind.sqlite --drop`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env := envOf(cmd)

			if cmd.Flags().Changed("driver") {
				env.Config.Target.Driver = driver
			}
			if cmd.Flags().Changed("dsn") {
				env.Config.Target.DSN = dsn
			}
			if err := env.Config.Validate(); err != nil {
				return err
			}

			isPostgres := env.Config.Target.Driver == string(database.DriverPostgres)
			if !cmd.Flags().Changed("empty-null") {
				emptyAsNull = isPostgres
			} else if isPostgres && !emptyAsNull {
				env.Log.Warnf("empty fields are loaded as '' into %s; numeric and date columns will reject them", env.Config.Target.Driver)
			}

			r, err := env.Reader()
			if err != nil {
				return err
			}
			target, err := env.Target(ctx)
			if err != nil {
				return err
			}
			defer target.Close()

			loader := transfer.New(r, target, &transfer.Options{
				DropTable:   drop,
				Tables:      args,
				EmptyAsNull: emptyAsNull,
				Verify:      verify,
				Logger:      env.Log,
			})

			results, err := loader.All(ctx)
			renderResults(cmd, target.Dialect(), results)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&driver, "driver", "", "Target driver (mysql, postgres, sqlite)")
	f.StringVar(&dsn, "dsn", "", "Target data source name")
	f.BoolVar(&drop, "drop", false, "Drop existing tables first")
	f.BoolVar(&emptyAsNull, "empty-null", false, "Insert empty fields as NULL (default true for postgres, false otherwise; mysql ignores it)")
	f.BoolVar(&verify, "verify", false, "Check row counts after loading")
	_ = cmd.RegisterFlagCompletionFunc("driver", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(database.DriverMySQL), string(database.DriverPostgres), string(database.DriverSQLite)}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func renderResults(cmd *cobra.Command, dialect database.Dialect, results []transfer.Result) {
	if len(results) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.SetTitle("loaded into " + dialect.String())
	t.AppendHeader(table.Row{"Table", "Statements", "Rows", "Elapsed"})

	var rows int64
	for _, res := range results {
		t.AppendRow(table.Row{res.Table, res.Statements, res.Rows, res.Elapsed.Round(time.Millisecond)})
		rows += res.Rows
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d tables", len(results)), "", rows, ""})
	t.Render()
}
