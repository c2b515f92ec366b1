// Package mdb reads Microsoft Access (.mdb/.accdb) files by driving the
// mdbtools command-line utilities.
//
// A Reader is bound to one database file. Construction validates the file
// and probes the host for mdb-tables, mdb-schema and mdb-export; every
// operation afterwards runs one of those commands, buffers its output and
// hands back the result as a string or an iter.Seq.
//
// Usage:
//
//	r, err := mdb.New("northwind.mdb")
//	if errs.IsMissingDependency(err) { ... }
//
//	tables, err := r.ListTables(ctx)
//	for name := range tables {
//	    ddl, err := r.ExportSchema(ctx, name, mdb.SchemaOptions{})
//	    ...
//	}
package mdb

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"github.com/koustreak/mdbread/internal/errs"
	"github.com/koustreak/mdbread/internal/logger"
)

const installHint = "check that mdbtools (https://github.com/mdbtools/mdbtools) is installed"

// Dialect names an mdbtools backend. It selects the SQL flavour produced by
// mdb-schema and by mdb-export -I.
type Dialect string

const (
	DialectAccess   Dialect = "access"
	DialectSybase   Dialect = "sybase"
	DialectOracle   Dialect = "oracle"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
)

// DefaultDialect is used when a caller leaves the dialect empty.
const DefaultDialect = DialectMySQL

// Commands holds the names (or paths) of the three mdbtools executables.
type Commands struct {
	Tables string
	Schema string
	Export string
}

// DefaultCommands returns the stock mdbtools command names, resolved
// through PATH.
func DefaultCommands() Commands {
	return Commands{
		Tables: "mdb-tables",
		Schema: "mdb-schema",
		Export: "mdb-export",
	}
}

func (c Commands) list() []string {
	return []string{c.Tables, c.Schema, c.Export}
}

// withDefaults fills empty entries with the stock names.
func (c Commands) withDefaults() Commands {
	def := DefaultCommands()
	if c.Tables == "" {
		c.Tables = def.Tables
	}
	if c.Schema == "" {
		c.Schema = def.Schema
	}
	if c.Export == "" {
		c.Export = def.Export
	}
	return c
}

// Reader exposes read-only queries over one database file.
// It holds no mutable state and is safe for concurrent use; every call
// spawns its own process with its own boundary token.
type Reader struct {
	path     string
	commands Commands
	runner   Runner
	lookPath func(string) (string, error)
	timeout  time.Duration
	log      *logger.Logger
}

// Option customises a Reader at construction.
type Option func(*Reader)

// WithCommands overrides the command names. Empty fields keep the defaults.
func WithCommands(c Commands) Option {
	return func(r *Reader) { r.commands = c.withDefaults() }
}

// WithRunner replaces the process runner (tests, sandboxes, remote hosts).
func WithRunner(runner Runner) Option {
	return func(r *Reader) { r.runner = runner }
}

// WithLookPath replaces the executable probe used at construction. Nil
// keeps exec.LookPath.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(r *Reader) { r.lookPath = fn }
}

// WithTimeout bounds every command invocation. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(r *Reader) { r.timeout = d }
}

// WithLogger sets the logger used for command tracing. Nil means silent.
func WithLogger(l *logger.Logger) Option {
	return func(r *Reader) { r.log = l }
}

// New validates path and the host environment and returns a Reader bound
// to path.
//
// It fails with an errs.ErrKindConfiguration error when path is empty,
// does not exist or is a directory, and with errs.ErrKindMissingDependency
// naming the first mdbtools command that cannot be found.
func New(path string, opts ...Option) (*Reader, error) {
	r := &Reader{
		path:     path,
		commands: DefaultCommands(),
		lookPath: exec.LookPath,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Nop()
	}
	if r.lookPath == nil {
		r.lookPath = exec.LookPath
	}
	if r.runner == nil {
		r.runner = &ExecRunner{Logger: r.log}
	}

	if err := checkDatabaseFile(path); err != nil {
		return nil, err
	}
	if err := r.checkCommands(); err != nil {
		return nil, err
	}

	r.log = r.log.With().Str("database", path).Logger()
	return r, nil
}

// Path returns the database file the Reader is bound to.
func (r *Reader) Path() string {
	return r.path
}

// Commands returns the command names the Reader invokes.
func (r *Reader) Commands() Commands {
	return r.commands
}

func checkDatabaseFile(path string) error {
	if path == "" {
		return errs.New(errs.ErrKindConfiguration, "database file path is empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errs.Newf(errs.ErrKindConfiguration, "the Access database file %q does not exist", path)
		}
		return errs.Wrap(errs.ErrKindConfiguration, fmt.Sprintf("cannot stat database file %q", path), err)
	}
	if info.IsDir() {
		return errs.Newf(errs.ErrKindConfiguration, "the Access database path %q is a directory", path)
	}
	return nil
}

func (r *Reader) checkCommands() error {
	for _, name := range r.commands.list() {
		if _, err := r.lookPath(name); err != nil {
			return errs.Wrap(
				errs.ErrKindMissingDependency,
				fmt.Sprintf("the command %q is missing; %s", name, installHint),
				err,
			)
		}
	}
	return nil
}

// run executes one command and returns its full standard output.
func (r *Reader) run(ctx context.Context, name string, args ...string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	out, err := r.runner.Run(ctx, name, args...)
	if err != nil {
		var e *errs.Error
		if !errors.As(err, &e) {
			err = errs.Wrap(errs.ErrKindExecution, fmt.Sprintf("%s failed", name), err)
		}
		return "", err
	}
	return string(out), nil
}
