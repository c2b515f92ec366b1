// Package config loads the mdbread YAML configuration file.
//
// Values may reference environment variables as ${VAR} or ${VAR:-default};
// they are expanded before the YAML is parsed, so secrets such as target
// DSNs and object store keys can stay out of the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"time"

	"github.com/koustreak/mdbread/internal/database"
	"github.com/koustreak/mdbread/internal/errs"
	"github.com/koustreak/mdbread/internal/filestore"
	"github.com/koustreak/mdbread/internal/logger"
	"github.com/koustreak/mdbread/internal/mdb"
	"go.yaml.in/yaml/v3"
)

// Config is the root of mdbread.yaml.
type Config struct {
	// Database is the path of the Access file to read.
	Database string `yaml:"database"`

	Commands CommandsConfig `yaml:"commands"`

	// Timeout bounds each mdbtools invocation. Zero means no limit.
	Timeout time.Duration `yaml:"timeout"`

	Log       LogConfig       `yaml:"log"`
	Target    TargetConfig    `yaml:"target"`
	Filestore FilestoreConfig `yaml:"filestore"`
	Server    ServerConfig    `yaml:"server"`
}

// CommandsConfig overrides the mdbtools executables.
type CommandsConfig struct {
	Tables string `yaml:"tables"`
	Schema string `yaml:"schema"`
	Export string `yaml:"export"`
}

// LogConfig mirrors logger.Config.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TargetConfig describes the SQL database tables are loaded into.
type TargetConfig struct {
	Driver         string        `yaml:"driver"` // mysql | postgres | sqlite
	DSN            string        `yaml:"dsn"`
	MaxConns       int32         `yaml:"max_conns"`
	MinConns       int32         `yaml:"min_conns"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// FilestoreConfig describes the S3-compatible store used for dumps and
// database files.
type FilestoreConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	PartSize  uint64 `yaml:"part_size"` // bytes; 0 lets the SDK choose
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "console"},
		Target: TargetConfig{
			Driver:         string(database.DriverMySQL),
			MaxConns:       10,
			MinConns:       2,
			ConnectTimeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 5 * time.Minute,
		},
	}
}

// Load reads the YAML file at path, expands environment variables, and
// overlays it onto Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Newf(errs.ErrKindConfiguration, "config file not found: %s", path)
		}
		return nil, errs.Wrap(errs.ErrKindConfiguration, fmt.Sprintf("cannot read config file %q", path), err)
	}
	return Parse(data)
}

// Parse is Load for an in-memory document.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(ExpandEnv(string(data))), cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindConfiguration, "invalid YAML config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	switch database.Driver(c.Target.Driver) {
	case database.DriverMySQL, database.DriverPostgres, database.DriverSQLite:
	default:
		return errs.Newf(errs.ErrKindConfiguration, "unsupported target driver %q", c.Target.Driver)
	}
	if c.Timeout < 0 {
		return errs.New(errs.ErrKindConfiguration, "timeout must not be negative")
	}
	return nil
}

// ReaderOptions translates the file into mdb.Reader options.
func (c *Config) ReaderOptions(l *logger.Logger) []mdb.Option {
	return []mdb.Option{
		mdb.WithCommands(mdb.Commands{
			Tables: c.Commands.Tables,
			Schema: c.Commands.Schema,
			Export: c.Commands.Export,
		}),
		mdb.WithTimeout(c.Timeout),
		mdb.WithLogger(l),
	}
}

// LoggerConfig translates the log section.
func (c *Config) LoggerConfig() *logger.Config {
	lc := logger.DefaultConfig()
	if c.Log.Level != "" {
		lc.Level = c.Log.Level
	}
	if c.Log.Format != "" {
		lc.Format = c.Log.Format
	}
	return lc
}

// DatabaseConfig translates the target section.
func (c *Config) DatabaseConfig() *database.Config {
	dc := database.DefaultConfig(c.Target.DSN)
	dc.Driver = database.Driver(c.Target.Driver)
	if c.Target.MaxConns > 0 {
		dc.MaxConns = c.Target.MaxConns
	}
	if c.Target.MinConns > 0 {
		dc.MinConns = c.Target.MinConns
	}
	if c.Target.ConnectTimeout > 0 {
		dc.ConnectTimeout = c.Target.ConnectTimeout
	}
	return dc
}

// StoreConfig translates the filestore section.
func (c *Config) StoreConfig() *filestore.Config {
	fc := filestore.DefaultConfig(c.Filestore.Endpoint, c.Filestore.AccessKey, c.Filestore.SecretKey)
	fc.UseSSL = c.Filestore.UseSSL
	fc.Region = c.Filestore.Region
	fc.DefaultBucket = c.Filestore.Bucket
	fc.PartSize = c.Filestore.PartSize
	return fc
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnv replaces ${VAR} and ${VAR:-default} in input. Unset variables
// without a default expand to the empty string.
func ExpandEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if value, ok := os.LookupEnv(groups[1]); ok && value != "" {
			return value
		}
		return groups[2]
	})
}
