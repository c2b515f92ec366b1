package database

import (
	"fmt"
	"strings"

	"github.com/koustreak/mdbread/internal/errs"
)

// Dialect controls identifier quoting and placeholder style.
type Dialect int

const (
	// DialectPostgres uses "ident" and $1, $2, … placeholders.
	DialectPostgres Dialect = iota

	// DialectMySQL uses `ident` and ? placeholders.
	DialectMySQL

	// DialectSQLite uses "ident" and ? placeholders.
	DialectSQLite
)

func (d Dialect) String() string {
	switch d {
	case DialectMySQL:
		return "mysql"
	case DialectSQLite:
		return "sqlite"
	default:
		return "postgres"
	}
}

// InsertBuilder constructs a parameterized INSERT using a fluent API.
// Values are never interpolated into the SQL string; they are always passed as args.
//
// Usage (Postgres):
//
//	sql, args, err := Insert("Customers", DialectPostgres).
//	    Columns("ID", "Name").
//	    Values(1, "Smith").
//	    Build()
type InsertBuilder struct {
	table   string
	dialect Dialect
	columns []string
	values  []any
}

// Insert starts a new InsertBuilder for the given table and dialect.
func Insert(table string, d Dialect) *InsertBuilder {
	return &InsertBuilder{table: table, dialect: d}
}

// Columns names the target columns. If not called, the values must cover
// every column of the table in order.
func (b *InsertBuilder) Columns(cols ...string) *InsertBuilder {
	b.columns = cols
	return b
}

// Values sets the row to insert.
func (b *InsertBuilder) Values(vals ...any) *InsertBuilder {
	b.values = vals
	return b
}

// Build produces the final SQL string and argument slice.
func (b *InsertBuilder) Build() (string, []any, error) {
	if b.table == "" {
		return "", nil, errs.New(errs.ErrKindInvalidInput, "insert: table name is empty")
	}
	if len(b.values) == 0 {
		return "", nil, errs.New(errs.ErrKindInvalidInput, "insert: no values")
	}
	if len(b.columns) > 0 && len(b.columns) != len(b.values) {
		return "", nil, errs.Newf(errs.ErrKindInvalidInput,
			"insert: %d columns but %d values", len(b.columns), len(b.values))
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(QuoteIdent(b.table, b.dialect))

	// --- column list ---
	if len(b.columns) > 0 {
		quoted := make([]string, len(b.columns))
		for i, c := range b.columns {
			quoted[i] = QuoteIdent(c, b.dialect)
		}
		sb.WriteString(" (")
		sb.WriteString(strings.Join(quoted, ", "))
		sb.WriteString(")")
	}

	// --- VALUES ---
	placeholders := make([]string, len(b.values))
	for i := range b.values {
		placeholders[i] = b.placeholder(i + 1)
	}
	sb.WriteString(" VALUES (")
	sb.WriteString(strings.Join(placeholders, ", "))
	sb.WriteString(")")

	return sb.String(), b.values, nil
}

// placeholder returns the correct parameter placeholder for the dialect.
// Postgres: $1, $2, …   MySQL and SQLite: ? (index is ignored)
func (b *InsertBuilder) placeholder(idx int) string {
	if b.dialect != DialectPostgres {
		return "?"
	}
	return fmt.Sprintf("$%d", idx)
}

// CountRows returns a SELECT COUNT(*) query for table.
func CountRows(table string, d Dialect) string {
	return "SELECT COUNT(*) FROM " + QuoteIdent(table, d)
}

// QuoteIdent quotes a SQL identifier for the dialect: backticks for MySQL,
// ANSI double quotes otherwise. Access table names routinely contain
// spaces, so every identifier is quoted.
func QuoteIdent(name string, d Dialect) string {
	if d == DialectMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
