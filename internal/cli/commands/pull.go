package commands

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/koustreak/mdbread/internal/filestore"
	"github.com/spf13/cobra"
)

// NewPullCommand creates the pull command.
func NewPullCommand() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "pull <bucket/key> [dest]",
		Short: "Download an Access database from the object store",
		Long: `Download an object to a local file. dest defaults to the object's base
name in the current directory. With --tables, the downloaded file is opened
and its tables are listed.`,
		Example: `  mdbread pull archives/2019/northwind.mdb
  mdbread pull archives/2019/northwind.mdb /tmp/nw.mdb --tables`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env := envOf(cmd)

			bucket, key, err := filestore.ParseLocation(args[0], env.Config.Filestore.Bucket)
			if err != nil {
				return err
			}
			dest := filepath.Base(key)
			if len(args) == 2 {
				dest = args[1]
			}

			store, err := env.Store(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			info, err := store.FGetObject(ctx, bucket, key, dest)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "pulled %s/%s to %s (%s)\n", bucket, key, dest, humanize.Bytes(uint64(info.Size)))

			if !list {
				return nil
			}
			env.Config.Database = dest
			r, err := env.Reader()
			if err != nil {
				return err
			}
			tables, err := r.Tables(ctx)
			if err != nil {
				return err
			}
			for _, t := range tables {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "tables", false, "List the tables of the downloaded database")

	return cmd
}
