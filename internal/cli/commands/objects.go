package commands

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/koustreak/mdbread/internal/errs"
	"github.com/koustreak/mdbread/internal/filestore"
	"github.com/spf13/cobra"
)

// NewObjectsCommand creates the objects command.
func NewObjectsCommand() *cobra.Command {
	var (
		recursive bool
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "objects [bucket[/prefix]]",
		Short: "List database files and dumps in the object store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env := envOf(cmd)

			bucket, prefix := env.Config.Filestore.Bucket, ""
			if len(args) == 1 {
				var found bool
				bucket, prefix, found = strings.Cut(strings.TrimPrefix(args[0], "/"), "/")
				if !found && bucket == "" {
					bucket = env.Config.Filestore.Bucket
				}
			}
			if bucket == "" {
				return errs.New(errs.ErrKindInvalidInput, "no bucket given and filestore.bucket is not set")
			}

			store, err := env.Store(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			objects, err := store.ListObjects(ctx, bucket, filestore.ListOptions{
				Prefix:    prefix,
				Recursive: recursive,
				Limit:     limit,
			})
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Key", "Size", "Modified"})
			for _, o := range objects {
				if o.IsDir {
					t.AppendRow(table.Row{o.Key, "", ""})
					continue
				}
				t.AppendRow(table.Row{o.Key, humanize.Bytes(uint64(o.Size)), humanize.Time(o.LastModified)})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "List every object under the prefix")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of objects to list (0 = all)")

	return cmd
}
