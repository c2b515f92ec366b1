package transfer

import (
	"context"
	"errors"
	"iter"
	"slices"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/koustreak/mdbread/internal/database"
	"github.com/koustreak/mdbread/internal/database/mysql"
	"github.com/koustreak/mdbread/internal/database/sqlite"
	"github.com/koustreak/mdbread/internal/errs"
	"github.com/koustreak/mdbread/internal/mdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves canned exports per table.
type fakeSource struct {
	tables  []string
	schema  map[string]string
	inserts map[string][]string
	rows    map[string][][]string
	asked   []mdb.SchemaOptions
}

func (f *fakeSource) Tables(context.Context) ([]string, error) {
	return f.tables, nil
}

func (f *fakeSource) ExportSchema(_ context.Context, table string, opts mdb.SchemaOptions) (string, error) {
	f.asked = append(f.asked, opts)
	s, ok := f.schema[table]
	if !ok {
		return "", errs.Newf(errs.ErrKindExecution, "mdb-schema: no table %s", table)
	}
	return s, nil
}

func (f *fakeSource) ExportDataSQL(_ context.Context, table string) (iter.Seq[string], error) {
	return slices.Values(f.inserts[table]), nil
}

func (f *fakeSource) ExportDataRows(_ context.Context, table string) (iter.Seq[[]string], error) {
	return slices.Values(f.rows[table]), nil
}

// execCall is one statement received by fakeTarget.
type execCall struct {
	sql  string
	args []any
}

// fakeTarget records statements and answers COUNT(*) with count.
type fakeTarget struct {
	dialect database.Dialect
	execs   []execCall
	count   int64
	failOn  string
}

func (f *fakeTarget) Ping(context.Context) error { return nil }
func (f *fakeTarget) Close()                     {}

func (f *fakeTarget) Exec(_ context.Context, sql string, args ...any) (int64, error) {
	if f.failOn != "" && sql == f.failOn {
		return 0, errs.New(errs.ErrKindQueryFailed, "exec failed")
	}
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return 1, nil
}

func (f *fakeTarget) QueryRow(context.Context, string, ...any) database.Row {
	return countRow(f.count)
}

func (f *fakeTarget) Dialect() database.Dialect { return f.dialect }

type countRow int64

func (c countRow) Scan(dest ...any) error {
	p, ok := dest[0].(*int64)
	if !ok {
		return errors.New("unexpected scan target")
	}
	*p = int64(c)
	return nil
}

func customersSource() *fakeSource {
	return &fakeSource{
		tables: []string{"Customers", "Orders"},
		schema: map[string]string{
			"Customers": "-- Customers\nDROP TABLE IF EXISTS `Customers`;\nCREATE TABLE `Customers` (`ID` int, `Name` text, `City` text);\n",
			"Orders":    "CREATE TABLE `Orders` (`ID` int);\n",
		},
		inserts: map[string][]string{
			"Customers": {
				"INSERT INTO `Customers` (`ID`, `Name`, `City`) VALUES (1,'Smith|Jr','NY');\n",
				"INSERT INTO `Customers` (`ID`, `Name`, `City`) VALUES (2,'Doe','');\n",
			},
		},
		rows: map[string][][]string{
			"Customers": {{"1", "Smith|Jr", "NY"}, {"2", "Doe", ""}},
		},
	}
}

func TestLoader_TableMySQL(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	target := mysql.NewFromDB(db)

	mock.ExpectExec("DROP TABLE IF EXISTS `Customers`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE `Customers` (`ID` int, `Name` text, `City` text)").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO `Customers` (`ID`, `Name`, `City`) VALUES (1,'Smith|Jr','NY')").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `Customers` (`ID`, `Name`, `City`) VALUES (2,'Doe','')").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectQuery("SELECT COUNT(*) FROM `Customers`").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	src := customersSource()
	res, err := New(src, target, &Options{DropTable: true, Verify: true}).Table(context.Background(), "Customers")
	require.NoError(t, err)

	assert.Equal(t, "Customers", res.Table)
	assert.Equal(t, 2, res.Statements)
	assert.Equal(t, int64(2), res.Rows)
	assert.Equal(t, []mdb.SchemaOptions{{DropTable: true, Dialect: mdb.DialectMySQL}}, src.asked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoader_TablePostgres(t *testing.T) {
	tests := []struct {
		name        string
		emptyAsNull bool
		wantCity    any
	}{
		{name: "empty string kept", emptyAsNull: false, wantCity: ""},
		{name: "empty as null", emptyAsNull: true, wantCity: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := customersSource()
			target := &fakeTarget{dialect: database.DialectPostgres}

			res, err := New(src, target, &Options{EmptyAsNull: tt.emptyAsNull}).Table(context.Background(), "Customers")
			require.NoError(t, err)
			assert.Equal(t, int64(2), res.Rows)
			assert.Equal(t, mdb.DialectPostgres, src.asked[0].Dialect)

			require.Len(t, target.execs, 4)
			insert := target.execs[3]
			assert.Equal(t, `INSERT INTO "Customers" VALUES ($1, $2, $3)`, insert.sql)
			assert.Equal(t, []any{"2", "Doe", tt.wantCity}, insert.args)
			assert.Equal(t, []any{"1", "Smith|Jr", "NY"}, target.execs[2].args)
		})
	}
}

func TestLoader_All(t *testing.T) {
	t.Run("every table", func(t *testing.T) {
		target := &fakeTarget{dialect: database.DialectMySQL}
		results, err := New(customersSource(), target, nil).All(context.Background())
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Orders", results[1].Table)
		assert.Equal(t, int64(0), results[1].Rows)
	})

	t.Run("subset", func(t *testing.T) {
		target := &fakeTarget{dialect: database.DialectMySQL}
		results, err := New(customersSource(), target, &Options{Tables: []string{"Orders"}}).All(context.Background())
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Orders", results[0].Table)
	})

	t.Run("stops at first error", func(t *testing.T) {
		src := customersSource()
		src.tables = []string{"Customers", "Missing", "Orders"}
		target := &fakeTarget{dialect: database.DialectMySQL}

		results, err := New(src, target, nil).All(context.Background())
		require.Error(t, err)
		assert.True(t, errs.IsExecution(err))
		require.Len(t, results, 1)
		assert.Len(t, src.asked, 2)
	})
}

func TestLoader_Failures(t *testing.T) {
	t.Run("create fails", func(t *testing.T) {
		target := &fakeTarget{
			dialect: database.DialectMySQL,
			failOn:  "CREATE TABLE `Orders` (`ID` int)",
		}
		_, err := New(customersSource(), target, nil).Table(context.Background(), "Orders")
		require.Error(t, err)
		assert.True(t, errs.IsQueryFailed(err))
		assert.Contains(t, err.Error(), "create Orders")
	})

	t.Run("row count mismatch", func(t *testing.T) {
		target := &fakeTarget{dialect: database.DialectPostgres, count: 1}
		_, err := New(customersSource(), target, &Options{Verify: true}).Table(context.Background(), "Customers")
		require.Error(t, err)
		assert.True(t, errs.IsQueryFailed(err))
		assert.Contains(t, err.Error(), "expected 2")
	})
}

func TestLoader_SQLite(t *testing.T) {
	ctx := context.Background()
	target, err := sqlite.New(ctx, database.DefaultConfig(":memory:"))
	require.NoError(t, err)
	defer target.Close()

	src := customersSource()
	src.schema["Customers"] = "-- ----\nDROP TABLE IF EXISTS \"Customers\";\nCREATE TABLE \"Customers\"\n (\n\t\"ID\"\tINTEGER,\n\t\"Name\"\tvarchar,\n\t\"City\"\tvarchar\n);\n"

	res, err := New(src, target, &Options{DropTable: true, EmptyAsNull: true, Verify: true}).Table(ctx, "Customers")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Rows)
	assert.Equal(t, mdb.DialectSQLite, src.asked[0].Dialect)

	var nulls int64
	require.NoError(t, target.QueryRow(ctx, `SELECT COUNT(*) FROM "Customers" WHERE "City" IS NULL`).Scan(&nulls))
	assert.Equal(t, int64(1), nulls)

	var name string
	require.NoError(t, target.QueryRow(ctx, `SELECT "Name" FROM "Customers" WHERE "ID" = 1`).Scan(&name))
	assert.Equal(t, "Smith|Jr", name)
}
