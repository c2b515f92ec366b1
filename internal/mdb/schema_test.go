package mdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawSchema = `-- ----------------------------------------------------------
-- MDB Tools - A library for reading MS Access database files
-- ----------------------------------------------------------

CREATE TABLE ` + "`Customers`" + `
 (
	` + "`CustomerID`" + `			varchar (10),
	` + "`Notes`" + `			VARCHAR(1000),
	` + "`City`" + `			Varchar (255),
	` + "`Region`" + `			varchar(120) DEFAULT 'NY',
	` + "`Blob`" + `			varchar (99999999999999999999)
);
`

func TestExportSchema_Arguments(t *testing.T) {
	tests := []struct {
		name string
		opts SchemaOptions
		want []string
	}{
		{
			name: "defaults to mysql",
			opts: SchemaOptions{},
			want: []string{"--default-values", "-T", "Customers", "<db>", "mysql"},
		},
		{
			name: "drop table",
			opts: SchemaOptions{DropTable: true, Dialect: DialectPostgres},
			want: []string{"--default-values", "--drop-table", "-T", "Customers", "<db>", "postgres"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, runner := newTestReader(t, func(string, []string) (string, error) {
				return "", nil
			})

			_, err := r.ExportSchema(context.Background(), "Customers", tt.opts)
			require.NoError(t, err)

			want := make([]string, len(tt.want))
			for i, a := range tt.want {
				if a == "<db>" {
					a = r.Path()
				}
				want[i] = a
			}
			c := runner.last()
			assert.Equal(t, "mdb-schema", c.name)
			assert.Equal(t, want, c.args)
		})
	}
}

func TestExportSchema_MySQLNarrowsWideVarchars(t *testing.T) {
	r, _ := newTestReader(t, func(string, []string) (string, error) {
		return rawSchema, nil
	})

	got, err := r.ExportSchema(context.Background(), "Customers", SchemaOptions{Dialect: DialectMySQL})
	require.NoError(t, err)

	assert.Contains(t, got, "varchar (10)")
	assert.Contains(t, got, "Varchar (255)")
	assert.Contains(t, got, "varchar(120) DEFAULT 'NY'")
	assert.NotContains(t, got, "VARCHAR(1000)")
	assert.NotContains(t, got, "99999999999999999999")
	assert.Contains(t, got, "`Notes`\t\t\ttext,\n")
	assert.Contains(t, got, "`Blob`\t\t\ttext\n")
	assert.Contains(t, got, "-- MDB Tools - A library for reading MS Access database files")
}

func TestExportSchema_OtherDialectsUntouched(t *testing.T) {
	for _, d := range []Dialect{DialectPostgres, DialectSQLite, DialectOracle, DialectAccess, DialectSybase, "MySQL"} {
		t.Run(string(d), func(t *testing.T) {
			r, _ := newTestReader(t, func(string, []string) (string, error) {
				return rawSchema, nil
			})

			got, err := r.ExportSchema(context.Background(), "Customers", SchemaOptions{Dialect: d})
			require.NoError(t, err)
			assert.Equal(t, rawSchema, got)
		})
	}
}

func TestNarrowVarchars(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"varchar(120)", "varchar(120)"},
		{"varchar(255)", "varchar(255)"},
		{"varchar(256)", "text"},
		{"varchar(1000)", "text"},
		{"VARCHAR(1000)", "text"},
		{"Varchar (1000)", "text"},
		{"varchar  (1000)", "varchar  (1000)"},
		{"nvarchar(300)", "ntext"},
		{"a varchar(300), b varchar(30)", "a text, b varchar(30)"},
		{"char(300)", "char(300)"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, narrowVarchars(tt.in))
		})
	}
}
