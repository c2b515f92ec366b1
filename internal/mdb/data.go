package mdb

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/koustreak/mdbread/internal/errs"
)

// FieldDelimiter separates fields in ExportDataRows output. Rows are
// separated by a per-call boundary token instead, so that line breaks in
// memo fields survive.
const FieldDelimiter = '|'

// ExportDataSQL returns one MySQL INSERT statement per row of table, in
// source row order.
func (r *Reader) ExportDataSQL(ctx context.Context, table string) (iter.Seq[string], error) {
	return r.ExportInserts(ctx, table, DialectMySQL)
}

// ExportInserts returns one INSERT statement per row of table in the
// given dialect, in source row order.
func (r *Reader) ExportInserts(ctx context.Context, table string, dialect Dialect) (iter.Seq[string], error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if dialect == "" {
		dialect = DefaultDialect
	}
	boundary := newBoundary()

	out, err := r.run(ctx, r.commands.Export,
		"-H", "-R", boundary, "-I", string(dialect), r.path, table)
	if err != nil {
		return nil, err
	}

	return splitTrimmed(out, boundary), nil
}

// ExportDataRows returns the rows of table as field values, in source row
// and column order. Fields are parsed with '|' as the delimiter and '"' as
// the quote character; a quoted field may contain the delimiter, line
// breaks, and quotes escaped by doubling.
//
// Field bytes are returned unchanged, including the \r\n line breaks of
// memo fields.
//
// Every row is parsed before ExportDataRows returns, so a malformed row
// fails the call instead of surfacing halfway through iteration.
func (r *Reader) ExportDataRows(ctx context.Context, table string) (iter.Seq[[]string], error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	boundary := newBoundary()
	cr := newBoundary()

	out, err := r.run(ctx, r.commands.Export,
		"-H", "-d", string(FieldDelimiter), "-R", boundary, r.path, table)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for line := range strings.SplitSeq(out, boundary) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, err := parseRecord(line, cr)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindExecution,
				fmt.Sprintf("unexpected %s output for table %q", r.commands.Export, table), err)
		}
		rows = append(rows, fields)
	}

	r.log.Debugf("exported %d rows from %s", len(rows), table)
	return func(yield func([]string) bool) {
		for _, row := range rows {
			if !yield(slices.Clone(row)) {
				return
			}
		}
	}, nil
}

// parseRecord parses one delimited row. A row spans exactly one record;
// an unquoted line break inside it is reported as an error.
//
// encoding/csv folds \r\n inside quoted fields into \n, so every \r is
// swapped for crToken before parsing and restored in each field after.
func parseRecord(line, crToken string) ([]string, error) {
	rd := csv.NewReader(strings.NewReader(strings.ReplaceAll(line, "\r", crToken)))
	rd.Comma = FieldDelimiter
	rd.FieldsPerRecord = -1

	fields, err := rd.Read()
	if err != nil {
		return nil, err
	}
	if _, err := rd.Read(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("row contains an unquoted line break")
		}
		return nil, err
	}
	for i, f := range fields {
		fields[i] = strings.ReplaceAll(f, crToken, "\r")
	}
	return fields, nil
}

// checkTable rejects names the mdbtools commands would parse as options.
func checkTable(table string) error {
	if table == "" {
		return errs.New(errs.ErrKindInvalidInput, "table name is empty")
	}
	if strings.HasPrefix(table, "-") {
		return errs.Newf(errs.ErrKindInvalidInput, "table name %q starts with '-'", table)
	}
	return nil
}
