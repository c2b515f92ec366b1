package server

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/koustreak/mdbread/internal/errs"
	"github.com/koustreak/mdbread/internal/mdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves the Customers table, or fails with err when set.
type fakeSource struct {
	err        error
	gotSchema  mdb.SchemaOptions
	gotDialect mdb.Dialect
}

var customers = [][]string{{"1", "Smith|Jr", "NY"}, {"2", "Doe", ""}}

func (f *fakeSource) Tables(context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []string{"Customers", "Order Details"}, nil
}

func (f *fakeSource) ExportSchema(_ context.Context, table string, opts mdb.SchemaOptions) (string, error) {
	f.gotSchema = opts
	if f.err != nil {
		return "", f.err
	}
	return "CREATE TABLE `" + table + "` (`ID` int);\n", nil
}

func (f *fakeSource) ExportInserts(_ context.Context, table string, dialect mdb.Dialect) (iter.Seq[string], error) {
	f.gotDialect = dialect
	if f.err != nil {
		return nil, f.err
	}
	return slices.Values([]string{
		"INSERT INTO `" + table + "` VALUES (1);\n",
		"INSERT INTO `" + table + "` VALUES (2);\n",
	}), nil
}

func (f *fakeSource) ExportDataRows(context.Context, string) (iter.Seq[[]string], error) {
	if f.err != nil {
		return nil, f.err
	}
	return slices.Values(customers), nil
}

func do(t *testing.T, src Source, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	New(src, Config{}).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, &fakeSource{}, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTables(t *testing.T) {
	rec := do(t, &fakeSource{}, "/tables")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tables":["Customers","Order Details"]}`, rec.Body.String())
}

func TestSchema(t *testing.T) {
	src := &fakeSource{}
	rec := do(t, src, "/tables/Order%20Details/schema?dialect=postgres&drop=true")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CREATE TABLE `Order Details` (`ID` int);\n", rec.Body.String())
	assert.Equal(t, mdb.SchemaOptions{DropTable: true, Dialect: mdb.DialectPostgres}, src.gotSchema)

	rec = do(t, src, "/tables/Customers/schema?drop=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRows(t *testing.T) {
	rec := do(t, &fakeSource{}, "/tables/Customers/rows")
	require.Equal(t, http.StatusOK, rec.Code)

	var got [][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, customers, got)
}

func TestInserts(t *testing.T) {
	src := &fakeSource{}
	rec := do(t, src, "/tables/Customers/inserts")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "INSERT INTO `Customers` VALUES (1);\nINSERT INTO `Customers` VALUES (2);\n", rec.Body.String())
	assert.Equal(t, mdb.DialectMySQL, src.gotDialect)
}

func TestDump(t *testing.T) {
	rec := do(t, &fakeSource{}, "/tables/Customers/dump?format=csv")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Customers.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "1,Smith|Jr,NY\n2,Doe,\n", rec.Body.String())

	rec = do(t, &fakeSource{}, "/tables/Customers/dump?format=parquet")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// countingRunner counts invocations and outputs nothing.
type countingRunner struct{ calls int }

func (c *countingRunner) Run(context.Context, string, ...string) ([]byte, error) {
	c.calls++
	return nil, nil
}

func TestOptionLikeTableRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "northwind.mdb")
	require.NoError(t, os.WriteFile(path, []byte("Standard Jet DB"), 0o600))

	runner := &countingRunner{}
	r, err := mdb.New(path,
		mdb.WithRunner(runner),
		mdb.WithLookPath(func(string) (string, error) { return "/usr/bin/true", nil }),
	)
	require.NoError(t, err)

	for _, target := range []string{"/tables/-Q/rows", "/tables/--help/schema", "/tables/-x/inserts", "/tables/-x/dump?format=csv"} {
		rec := do(t, r, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "invalid_input", target)
	}
	assert.Zero(t, runner.calls)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		kind string
	}{
		{"configuration", errs.New(errs.ErrKindConfiguration, "no database"), http.StatusBadRequest, "configuration"},
		{"missing dependency", errs.New(errs.ErrKindMissingDependency, "mdb-tables not found"), http.StatusServiceUnavailable, "missing_dependency"},
		{"execution", errs.New(errs.ErrKindExecution, "mdb-export exited with status 1"), http.StatusBadGateway, "execution"},
		{"timeout", errs.New(errs.ErrKindTimeout, "mdb-export did not finish"), http.StatusGatewayTimeout, "timeout"},
		{"not found", errs.New(errs.ErrKindNotFound, "no table"), http.StatusNotFound, "not_found"},
		{"unknown", context.Canceled, http.StatusInternalServerError, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, &fakeSource{err: tt.err}, "/tables")
			assert.Equal(t, tt.want, rec.Code)

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.kind, body.Kind)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(&fakeSource{}, Config{Addr: "127.0.0.1:0"}).Serve(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
