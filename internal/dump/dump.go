// Package dump serializes a single Access table to a writer.
package dump

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/koustreak/mdbread/internal/errs"
	"github.com/koustreak/mdbread/internal/mdb"
	"github.com/xuri/excelize/v2"
)

// Format selects the dump encoding.
type Format string

const (
	FormatSQL   Format = "sql"   // schema followed by one INSERT per line
	FormatCSV   Format = "csv"   // comma separated rows, no header
	FormatJSONL Format = "jsonl" // one JSON array per row
	FormatXLSX  Format = "xlsx"  // single-sheet workbook
	FormatTable Format = "table" // boxed text table for terminals
)

// Formats lists every supported format.
var Formats = []Format{FormatSQL, FormatCSV, FormatJSONL, FormatXLSX, FormatTable}

// ParseFormat validates a format name. Empty means sql.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatSQL, nil
	}
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", errs.Newf(errs.ErrKindInvalidInput, "unknown dump format %q", s)
}

// ContentType returns the MIME type used when a dump is stored or served.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSONL:
		return "application/x-ndjson"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Ext returns the file extension for f, without the dot.
func (f Format) Ext() string {
	if f == FormatTable {
		return "txt"
	}
	return string(f)
}

// Source is the subset of *mdb.Reader a dump reads from.
type Source interface {
	ExportSchema(ctx context.Context, table string, opts mdb.SchemaOptions) (string, error)
	ExportInserts(ctx context.Context, table string, dialect mdb.Dialect) (iter.Seq[string], error)
	ExportDataRows(ctx context.Context, table string) (iter.Seq[[]string], error)
}

// Options controls a dump.
type Options struct {
	Format Format

	// Dialect of the schema and INSERT statements in sql dumps.
	// Empty means mysql.
	Dialect mdb.Dialect

	// DropTable prefixes the sql dump's schema with DROP TABLE.
	DropTable bool
}

// Write dumps table from src to w and returns the number of rows written.
func Write(ctx context.Context, w io.Writer, src Source, table string, opts Options) (int64, error) {
	switch opts.Format {
	case FormatSQL, "":
		return writeSQL(ctx, w, src, table, opts)
	}

	rows, err := src.ExportDataRows(ctx, table)
	if err != nil {
		return 0, err
	}

	switch opts.Format {
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatJSONL:
		return writeJSONL(w, rows)
	case FormatXLSX:
		return writeXLSX(w, table, rows)
	case FormatTable:
		return writeTable(w, rows)
	default:
		return 0, errs.Newf(errs.ErrKindInvalidInput, "unknown dump format %q", opts.Format)
	}
}

func writeSQL(ctx context.Context, w io.Writer, src Source, table string, opts Options) (int64, error) {
	dialect := opts.Dialect
	if dialect == "" {
		dialect = mdb.DefaultDialect
	}

	schema, err := src.ExportSchema(ctx, table, mdb.SchemaOptions{DropTable: opts.DropTable, Dialect: dialect})
	if err != nil {
		return 0, err
	}
	stmts, err := src.ExportInserts(ctx, table, dialect)
	if err != nil {
		return 0, err
	}

	if _, err := io.WriteString(w, strings.TrimRight(schema, "\n")+"\n\n"); err != nil {
		return 0, fmt.Errorf("write schema: %w", err)
	}

	var n int64
	for stmt := range stmts {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := io.WriteString(w, stmt+"\n"); err != nil {
			return n, fmt.Errorf("write row %d: %w", n+1, err)
		}
		n++
	}
	return n, nil
}

func writeCSV(w io.Writer, rows iter.Seq[[]string]) (int64, error) {
	cw := csv.NewWriter(w)

	var n int64
	for row := range rows {
		if err := cw.Write(row); err != nil {
			return n, fmt.Errorf("write row %d: %w", n+1, err)
		}
		n++
	}
	cw.Flush()
	return n, cw.Error()
}

func writeJSONL(w io.Writer, rows iter.Seq[[]string]) (int64, error) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	var n int64
	for row := range rows {
		if err := enc.Encode(row); err != nil {
			return n, fmt.Errorf("write row %d: %w", n+1, err)
		}
		n++
	}
	return n, nil
}

func writeXLSX(w io.Writer, tableName string, rows iter.Seq[[]string]) (int64, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(tableName)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return 0, fmt.Errorf("name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return 0, fmt.Errorf("open sheet: %w", err)
	}

	var n int64
	for row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, int(n)+1)
		if err != nil {
			return n, err
		}
		vals := make([]any, len(row))
		for i, v := range row {
			vals[i] = v
		}
		if err := sw.SetRow(cell, vals); err != nil {
			return n, fmt.Errorf("write row %d: %w", n+1, err)
		}
		n++
	}
	if err := sw.Flush(); err != nil {
		return n, fmt.Errorf("flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return n, fmt.Errorf("write workbook: %w", err)
	}
	return n, nil
}

func writeTable(w io.Writer, rows iter.Seq[[]string]) (int64, error) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	var n int64
	for row := range rows {
		r := make(table.Row, len(row))
		for i, v := range row {
			r[i] = v
		}
		t.AppendRow(r)
		n++
	}

	if n == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return 0, err
	}
	t.Render()
	return n, nil
}

// SheetName turns a table name into a valid worksheet name: at most 31
// characters and none of : \ / ? * [ ].
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)

	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	if strings.TrimSpace(name) == "" {
		return "Sheet1"
	}
	return name
}
