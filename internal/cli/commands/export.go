package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/koustreak/mdbread/internal/dump"
	"github.com/koustreak/mdbread/internal/errs"
	"github.com/koustreak/mdbread/internal/filestore"
	"github.com/koustreak/mdbread/internal/mdb"
	"github.com/spf13/cobra"
)

type exportOptions struct {
	format  string
	dialect string
	drop    bool
	out     string
	upload  string
	presign time.Duration
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export <table>",
		Short: "Dump a table as SQL, CSV, JSON lines, XLSX or a text table",
		Long: `Dump one table. The output goes to stdout unless --out names a file.

With --upload the dump is also stored in the configured object store under
bucket/key (or key in the default bucket).`,
		Example: `  mdbread export Customers --format csv --out customers.csv
  mdbread export Customers --format xlsx --upload dumps/2024/customers.xlsx --presign 24h`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", string(dump.FormatSQL), "Output format (sql, csv, jsonl, xlsx, table)")
	f.StringVar(&opts.dialect, "dialect", string(mdb.DefaultDialect), "SQL dialect for the sql format")
	f.BoolVar(&opts.drop, "drop", false, "Include DROP TABLE in the sql format")
	f.StringVarP(&opts.out, "out", "o", "", "Write to this file instead of stdout")
	f.StringVar(&opts.upload, "upload", "", "Also upload the dump to bucket/key")
	f.DurationVar(&opts.presign, "presign", 0, "Print a download URL valid for this long after --upload")
	_ = cmd.RegisterFlagCompletionFunc("dialect", completeDialects)

	return cmd
}

// runExport writes the dump. A partially written --out file is removed on
// failure.
func runExport(cmd *cobra.Command, table string, opts exportOptions) (retErr error) {
	ctx := cmd.Context()
	env := envOf(cmd)

	format, err := dump.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.presign != 0 {
		if opts.upload == "" {
			return errs.New(errs.ErrKindInvalidInput, "--presign needs --upload")
		}
		if err := filestore.CheckPresignExpiry(opts.presign); err != nil {
			return err
		}
	}

	r, err := env.Reader()
	if err != nil {
		return err
	}

	var bucket, key string
	if opts.upload != "" {
		if bucket, key, err = filestore.ParseLocation(opts.upload, env.Config.Filestore.Bucket); err != nil {
			return err
		}
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("create %s: %w", opts.out, err)
		}
		defer func() {
			if err := f.Close(); err != nil && retErr == nil {
				retErr = fmt.Errorf("close %s: %w", opts.out, err)
			}
			if retErr != nil {
				_ = os.Remove(opts.out)
			}
		}()
		w = f
	} else if opts.upload != "" {
		w = io.Discard
	}

	var buf bytes.Buffer
	if opts.upload != "" {
		w = io.MultiWriter(w, &buf)
	}

	n, err := dump.Write(ctx, w, r, table, dump.Options{
		Format:    format,
		Dialect:   mdb.Dialect(opts.dialect),
		DropTable: opts.drop,
	})
	if err != nil {
		return err
	}
	env.Log.With().Str("table", table).Str("format", string(format)).Int("rows", int(n)).Logger().Info("table exported")

	if opts.upload == "" {
		return nil
	}

	store, err := env.Store(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	info, err := store.PutObject(ctx, bucket, key, &buf, int64(buf.Len()), format.ContentType())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "uploaded %s/%s (%d bytes)\n", bucket, key, info.Size)

	if opts.presign > 0 {
		url, err := store.PresignGetURL(ctx, bucket, key, opts.presign)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), url)
	}
	return nil
}
