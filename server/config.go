package server

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/sheetlex/server/dao"
	"github.com/dekarrin/sheetlex/server/dao/inmem"
	"github.com/dekarrin/sheetlex/server/dao/sqlite"
)

// DBType is the type of a Database connection.
type DBType string

func (dbt DBType) String() string {
	return string(dbt)
}

const (
	DatabaseNone     DBType = "none"
	DatabaseSQLite   DBType = "sqlite"
	DatabaseInMemory DBType = "inmem"
)

const (
	DefaultListenAddress = "localhost:8080"
	DefaultMaxLines      = 10000
	DefaultMaxBodyBytes  = 4 << 20
	DefaultSlowMillis    = 1000
)

// ParseDBType parses a string found in a connection string into a DBType.
func ParseDBType(s string) (DBType, error) {
	sLower := strings.ToLower(s)

	switch sLower {
	case DatabaseSQLite.String():
		return DatabaseSQLite, nil
	case DatabaseInMemory.String():
		return DatabaseInMemory, nil
	default:
		return DatabaseNone, fmt.Errorf("DB type not one of 'sqlite' or 'inmem': %q", s)
	}
}

// Database contains configuration settings for connecting to a persistence
// layer.
type Database struct {
	// Type is the type of database the config refers to. It also determines
	// which of its other fields are valid.
	Type DBType

	// DataDir is the path on disk to a directory to use to store data in. This
	// is only applicable for certain DB types: SQLite.
	DataDir string
}

// String gives the connection string that would parse to db.
func (db Database) String() string {
	if db.Type == DatabaseSQLite {
		return db.Type.String() + ":" + db.DataDir
	}
	return db.Type.String()
}

// Connect performs all logic needed to connect to the configured DB and
// initialize the store for use.
func (db Database) Connect() (dao.Store, error) {
	switch db.Type {
	case DatabaseInMemory:
		return inmem.NewDatastore(), nil
	case DatabaseSQLite:
		err := os.MkdirAll(db.DataDir, 0770)
		if err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}

		store, err := sqlite.NewDatastore(db.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite: %w", err)
		}

		return store, nil
	case DatabaseNone:
		return nil, fmt.Errorf("cannot connect to 'none' DB")
	default:
		return nil, fmt.Errorf("unknown database type: %q", db.Type.String())
	}
}

// Validate returns an error if the Database does not have the correct fields
// set.
func (db Database) Validate() error {
	switch db.Type {
	case DatabaseInMemory:
		return nil
	case DatabaseSQLite:
		if db.DataDir == "" {
			return fmt.Errorf("DataDir not set to path")
		}
		return nil
	case DatabaseNone:
		return fmt.Errorf("'none' DB is not valid")
	default:
		return fmt.Errorf("unknown database type: %q", db.Type.String())
	}
}

// ParseDBConnString parses a database connection string of the form
// "engine:params" (or just "engine" if no other params are required) into a
// valid Database config object. For example, "sqlite:/data" would give the DB
// type of DatabaseSQLite that stores sessions in files located in the given
// dir, and "inmem" would give the DB type of DatabaseInMemory.
func ParseDBConnString(s string) (Database, error) {
	var paramStr string
	dbParts := strings.SplitN(s, ":", 2)

	if len(dbParts) == 2 {
		paramStr = strings.TrimSpace(dbParts[1])
	}

	dbEng, err := ParseDBType(strings.TrimSpace(dbParts[0]))
	if err != nil {
		return Database{}, fmt.Errorf("unsupported DB engine: %w", err)
	}

	switch dbEng {
	case DatabaseInMemory:
		if paramStr != "" {
			return Database{}, fmt.Errorf("unsupported param(s) for in-memory DB engine: %s", paramStr)
		}

		return Database{Type: DatabaseInMemory}, nil
	case DatabaseSQLite:
		if paramStr == "" {
			return Database{}, fmt.Errorf("sqlite DB engine requires path to data directory after ':'")
		}

		return Database{Type: DatabaseSQLite, DataDir: paramStr}, nil
	default:
		return Database{}, fmt.Errorf("unknown DB engine: %q", dbEng.String())
	}
}

// Config is a configuration for a server. It contains all parameters that can
// be used to configure the operation of a sheetlex Server.
type Config struct {
	// DB is the configuration to use for connecting to the database. If not
	// provided, it will be set to a configuration for using an in-memory
	// persistence layer.
	DB Database

	// ListenAddress is the address and port to serve on. Defaults to
	// DefaultListenAddress.
	ListenAddress string

	// SlowMillis is the amount of additional time to wait (in milliseconds)
	// before sending an HTTP-500 response. If not set it will default to 1
	// second. Set this to any negative number to disable the delay.
	SlowMillis int

	// MaxLines is the most lines a single request may tokenize. Defaults to
	// DefaultMaxLines.
	MaxLines int

	// MaxBodyBytes is the largest request body accepted. Defaults to
	// DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// SlowDelay returns the configured time for the SlowMillis as a
// time.Duration. If cfg.SlowMillis is set to a number less than 0, this will
// return a zero-valued time.Duration.
func (cfg Config) SlowDelay() time.Duration {
	if cfg.SlowMillis < 1 {
		var dur time.Duration
		return dur
	}
	return time.Millisecond * time.Duration(cfg.SlowMillis)
}

// FillDefaults returns a new Config identitical to cfg but with unset values
// set to their defaults.
func (cfg Config) FillDefaults() Config {
	newCFG := cfg

	if newCFG.DB.Type == DatabaseNone || newCFG.DB.Type == "" {
		newCFG.DB = Database{Type: DatabaseInMemory}
	}
	if newCFG.ListenAddress == "" {
		newCFG.ListenAddress = DefaultListenAddress
	}
	if newCFG.SlowMillis == 0 {
		newCFG.SlowMillis = DefaultSlowMillis
	}
	if newCFG.MaxLines == 0 {
		newCFG.MaxLines = DefaultMaxLines
	}
	if newCFG.MaxBodyBytes == 0 {
		newCFG.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return newCFG
}

// Validate returns an error if the Config has invalid field values set. Empty
// and unset values are considered invalid; if defaults are intended to be used,
// call Validate on the return value of FillDefaults.
func (cfg Config) Validate() error {
	if err := cfg.DB.Validate(); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if cfg.ListenAddress == "" {
		return fmt.Errorf("listen address: must not be empty")
	}
	if cfg.MaxLines < 1 {
		return fmt.Errorf("max lines: must be at least 1, but is %d", cfg.MaxLines)
	}
	if cfg.MaxBodyBytes < 1 {
		return fmt.Errorf("max body bytes: must be at least 1, but is %d", cfg.MaxBodyBytes)
	}

	// all possible values for SlowMillis are valid, so no need to check it

	return nil
}

// fileConfig is the [server] table of a sheetlex TOML config file.
type fileConfig struct {
	Server struct {
		Listen       string `toml:"listen"`
		DB           string `toml:"db"`
		SlowMillis   int    `toml:"slow_ms"`
		MaxLines     int    `toml:"max_lines"`
		MaxBodyBytes int64  `toml:"max_body_bytes"`
	} `toml:"server"`
}

// ParseConfig reads a Config from the [server] table of TOML config data.
// Other tables, such as [theme], are ignored. Unset values are left unset; call
// FillDefaults on the result to get a usable Config.
func ParseConfig(data []byte) (Config, error) {
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Config{
		ListenAddress: fc.Server.Listen,
		SlowMillis:    fc.Server.SlowMillis,
		MaxLines:      fc.Server.MaxLines,
		MaxBodyBytes:  fc.Server.MaxBodyBytes,
	}
	if fc.Server.DB != "" {
		db, err := ParseDBConnString(fc.Server.DB)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: db: %w", err)
		}
		cfg.DB = db
	}

	return cfg, nil
}

// LoadConfig reads a Config from the TOML config file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}
