package commands

import (
	"context"

	"github.com/koustreak/mdbread/internal/config"
	"github.com/koustreak/mdbread/internal/database"
	"github.com/koustreak/mdbread/internal/database/mysql"
	"github.com/koustreak/mdbread/internal/database/postgres"
	"github.com/koustreak/mdbread/internal/database/sqlite"
	"github.com/koustreak/mdbread/internal/errs"
	"github.com/koustreak/mdbread/internal/filestore"
	"github.com/koustreak/mdbread/internal/filestore/minio"
	"github.com/koustreak/mdbread/internal/logger"
	"github.com/koustreak/mdbread/internal/mdb"
	"github.com/spf13/cobra"
)

// Env is everything a command needs besides its own flags. The root
// command fills it in before any subcommand runs.
type Env struct {
	Config *config.Config
	Log    *logger.Logger

	// ReaderOptions are appended after the options derived from Config.
	ReaderOptions []mdb.Option

	// OpenTarget and OpenStore replace the real connectors when set.
	OpenTarget func(ctx context.Context, cfg *database.Config) (database.Target, error)
	OpenStore  func(ctx context.Context, cfg *filestore.Config) (filestore.Store, error)
}

type envKey struct{}

// WithEnv stores env in ctx.
func WithEnv(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}

// EnvFrom returns the Env stored in ctx, or a default one.
func EnvFrom(ctx context.Context) *Env {
	if env, ok := ctx.Value(envKey{}).(*Env); ok && env != nil {
		return env
	}
	return &Env{}
}

func envOf(cmd *cobra.Command) *Env {
	env := EnvFrom(cmd.Context())
	if env.Config == nil {
		env.Config = config.Default()
	}
	if env.Log == nil {
		env.Log = logger.Global()
	}
	return env
}

// Reader opens the configured Access database.
func (e *Env) Reader() (*mdb.Reader, error) {
	if e.Config.Database == "" {
		return nil, errs.New(errs.ErrKindConfiguration, "no database given; pass --db or set database in the config file")
	}
	opts := append(e.Config.ReaderOptions(e.Log), e.ReaderOptions...)
	return mdb.New(e.Config.Database, opts...)
}

// Target connects to the configured SQL target.
func (e *Env) Target(ctx context.Context) (database.Target, error) {
	cfg := e.Config.DatabaseConfig()
	if e.OpenTarget != nil {
		return e.OpenTarget(ctx, cfg)
	}
	return OpenTarget(ctx, cfg)
}

// Store connects to the configured object store.
func (e *Env) Store(ctx context.Context) (filestore.Store, error) {
	cfg := e.Config.StoreConfig()
	if e.OpenStore != nil {
		return e.OpenStore(ctx, cfg)
	}
	store, err := minio.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// OpenTarget connects to the database named by cfg.Driver.
func OpenTarget(ctx context.Context, cfg *database.Config) (database.Target, error) {
	if cfg.DSN == "" {
		return nil, errs.New(errs.ErrKindConfiguration, "no target DSN given; pass --dsn or set target.dsn in the config file")
	}

	var (
		target database.Target
		err    error
	)
	switch cfg.Driver {
	case database.DriverMySQL:
		target, err = mysql.New(ctx, cfg)
	case database.DriverPostgres:
		target, err = postgres.New(ctx, cfg)
	case database.DriverSQLite:
		target, err = sqlite.New(ctx, cfg)
	default:
		return nil, errs.Newf(errs.ErrKindConfiguration, "unsupported target driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return target, nil
}
