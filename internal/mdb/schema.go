package mdb

import (
	"context"
	"regexp"
	"strconv"
)

// maxMySQLVarchar is the longest varchar that is kept as-is in MySQL
// output. Longer Access text columns become TEXT so that wide tables stay
// under MySQL's row size limit.
const maxMySQLVarchar = 255

var varcharPattern = regexp.MustCompile(`(?i)varchar ?\(([0-9]+)\)`)

// SchemaOptions controls ExportSchema.
type SchemaOptions struct {
	// DropTable emits a DROP TABLE statement ahead of CREATE TABLE.
	DropTable bool

	// Dialect is the mdb-schema backend. Empty means DefaultDialect.
	Dialect Dialect
}

// ExportSchema runs mdb-schema for a single table and returns the DDL it
// prints. Default values are always preserved.
//
// For the mysql dialect every varchar(N) with N > 255 is rewritten to
// text; the rest of the output is kept verbatim. Other dialects are
// returned exactly as mdb-schema printed them.
func (r *Reader) ExportSchema(ctx context.Context, table string, opts SchemaOptions) (string, error) {
	if err := checkTable(table); err != nil {
		return "", err
	}
	dialect := opts.Dialect
	if dialect == "" {
		dialect = DefaultDialect
	}

	args := []string{"--default-values"}
	if opts.DropTable {
		args = append(args, "--drop-table")
	}
	args = append(args, "-T", table, r.path, string(dialect))

	schema, err := r.run(ctx, r.commands.Schema, args...)
	if err != nil {
		return "", err
	}

	if dialect == DialectMySQL {
		schema = narrowVarchars(schema)
	}
	return schema, nil
}

// narrowVarchars replaces varchar columns wider than maxMySQLVarchar with
// text, matching case-insensitively.
func narrowVarchars(schema string) string {
	return varcharPattern.ReplaceAllStringFunc(schema, func(match string) string {
		size := varcharPattern.FindStringSubmatch(match)[1]
		n, err := strconv.Atoi(size)
		// Atoi only fails here on overflow, which is certainly > 255.
		if err != nil || n > maxMySQLVarchar {
			return "text"
		}
		return match
	})
}
