// Package transfer replays Access tables into a SQL target: the schema
// first, then every row.
package transfer

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/koustreak/mdbread/internal/database"
	"github.com/koustreak/mdbread/internal/errs"
	"github.com/koustreak/mdbread/internal/logger"
	"github.com/koustreak/mdbread/internal/mdb"
)

// Source is the subset of *mdb.Reader a Loader needs.
type Source interface {
	Tables(ctx context.Context) ([]string, error)
	ExportSchema(ctx context.Context, table string, opts mdb.SchemaOptions) (string, error)
	ExportDataSQL(ctx context.Context, table string) (iter.Seq[string], error)
	ExportDataRows(ctx context.Context, table string) (iter.Seq[[]string], error)
}

// Options tunes a Loader.
type Options struct {
	// DropTable emits DROP TABLE before each CREATE TABLE.
	DropTable bool

	// Tables restricts All to these tables. Empty means every table.
	Tables []string

	// EmptyAsNull inserts empty fields as NULL instead of ''.
	// Only applies to targets loaded row by row.
	EmptyAsNull bool

	// Verify compares SELECT COUNT(*) with the rows written.
	Verify bool

	Logger *logger.Logger
}

// Result describes one loaded table.
type Result struct {
	Table      string
	Statements int // schema statements executed
	Rows       int64
	Elapsed    time.Duration
}

// Loader copies tables from a Source into a Target.
type Loader struct {
	src    Source
	target database.Target
	opts   Options
	log    *logger.Logger
}

// New returns a Loader. A nil opts is treated as the zero Options.
func New(src Source, target database.Target, opts *Options) *Loader {
	l := &Loader{src: src, target: target}
	if opts != nil {
		l.opts = *opts
	}
	l.log = l.opts.Logger
	if l.log == nil {
		l.log = logger.Nop()
	}
	return l
}

// All loads every table, or the configured subset, in listing order.
// It stops at the first failing table and returns the results so far.
func (l *Loader) All(ctx context.Context) ([]Result, error) {
	tables := l.opts.Tables
	if len(tables) == 0 {
		var err error
		if tables, err = l.src.Tables(ctx); err != nil {
			return nil, err
		}
	}

	results := make([]Result, 0, len(tables))
	for _, table := range tables {
		res, err := l.Table(ctx, table)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Table creates table on the target and copies its rows.
func (l *Loader) Table(ctx context.Context, table string) (Result, error) {
	start := time.Now()
	res := Result{Table: table}
	log := l.log.With().Str("table", table).Str("target", l.target.Dialect().String()).Logger()

	schema, err := l.src.ExportSchema(ctx, table, mdb.SchemaOptions{
		DropTable: l.opts.DropTable,
		Dialect:   schemaDialect(l.target.Dialect()),
	})
	if err != nil {
		return res, err
	}

	for _, stmt := range database.SplitStatements(schema) {
		if _, err := l.target.Exec(ctx, stmt); err != nil {
			return res, fmt.Errorf("create %s: %w", table, err)
		}
		res.Statements++
	}

	if l.target.Dialect() == database.DialectMySQL {
		res.Rows, err = l.copyStatements(ctx, table)
	} else {
		res.Rows, err = l.copyRows(ctx, table)
	}
	if err != nil {
		return res, err
	}

	if l.opts.Verify {
		if err := l.verify(ctx, table, res.Rows); err != nil {
			return res, err
		}
	}

	res.Elapsed = time.Since(start)
	log.InfoWith("table loaded", map[string]any{
		"statements": res.Statements,
		"rows":       res.Rows,
		"elapsed_ms": res.Elapsed.Milliseconds(),
	})
	return res, nil
}

// copyStatements executes the MySQL INSERTs produced by mdb-export as is.
func (l *Loader) copyStatements(ctx context.Context, table string) (int64, error) {
	stmts, err := l.src.ExportDataSQL(ctx, table)
	if err != nil {
		return 0, err
	}

	var n int64
	for stmt := range stmts {
		stmt = strings.TrimSuffix(strings.TrimSpace(stmt), ";")
		if stmt == "" {
			continue
		}
		if _, err := l.target.Exec(ctx, stmt); err != nil {
			return n, fmt.Errorf("insert into %s (row %d): %w", table, n+1, err)
		}
		n++
	}
	return n, nil
}

// copyRows inserts raw field rows through parameterized statements.
func (l *Loader) copyRows(ctx context.Context, table string) (int64, error) {
	rows, err := l.src.ExportDataRows(ctx, table)
	if err != nil {
		return 0, err
	}

	var n int64
	for row := range rows {
		query, args, err := database.Insert(table, l.target.Dialect()).
			Values(l.values(row)...).
			Build()
		if err != nil {
			return n, fmt.Errorf("insert into %s (row %d): %w", table, n+1, err)
		}
		if _, err := l.target.Exec(ctx, query, args...); err != nil {
			return n, fmt.Errorf("insert into %s (row %d): %w", table, n+1, err)
		}
		n++
	}
	return n, nil
}

func (l *Loader) values(row []string) []any {
	vals := make([]any, len(row))
	for i, f := range row {
		if f == "" && l.opts.EmptyAsNull {
			continue
		}
		vals[i] = f
	}
	return vals
}

func (l *Loader) verify(ctx context.Context, table string, want int64) error {
	var got int64
	if err := l.target.QueryRow(ctx, database.CountRows(table, l.target.Dialect())).Scan(&got); err != nil {
		return fmt.Errorf("count %s: %w", table, err)
	}
	if got != want {
		return errs.Newf(errs.ErrKindQueryFailed, "table %s has %d rows after load, expected %d", table, got, want)
	}
	return nil
}

// schemaDialect picks the mdb-schema backend matching a target.
func schemaDialect(d database.Dialect) mdb.Dialect {
	switch d {
	case database.DialectMySQL:
		return mdb.DialectMySQL
	case database.DialectSQLite:
		return mdb.DialectSQLite
	default:
		return mdb.DialectPostgres
	}
}
