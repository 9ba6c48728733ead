package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the whole application configuration, read from the environment.
type Config struct {
	AppEnv   string // dev/prod
	LogLevel string // debug/info/warn/error

	HTTPAddr string // local API listen address

	DBDriver    string // sqlite/postgres
	SQLitePath  string // file for the local store
	DatabaseURL string // postgres DSN, takes priority over POSTGRES_*

	SeedCatalog bool // insert the sample products into an empty catalog
	ResetSchema bool // drop and recreate tables on start
}

// Load reads the environment. Call godotenv.Load before it when a .env file is used.
func Load() (Config, error) {
	seed, err := boolEnv("SEED_CATALOG", true)
	if err != nil {
		return Config{}, err
	}
	reset, err := boolEnv("RESET_SCHEMA", false)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:   getenv("APP_ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		HTTPAddr: getenv("HTTP_ADDR", "127.0.0.1:8080"),

		DBDriver:    strings.ToLower(getenv("DB_DRIVER", DriverSQLite)),
		SQLitePath:  getenv("SQLITE_PATH", "kasir.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		SeedCatalog: seed,
		ResetSchema: reset,
	}

	if cfg.DatabaseURL != "" && os.Getenv("DB_DRIVER") == "" {
		cfg.DBDriver = DriverPostgres
	}

	//必須チェック
	switch cfg.DBDriver {
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			return Config{}, fmt.Errorf("SQLITE_PATH is required")
		}
	case DriverPostgres:
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be %q or %q", DriverSQLite, DriverPostgres)
	}
	if cfg.HTTPAddr == "" {
		return Config{}, fmt.Errorf("HTTP_ADDR is required")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", key, err)
	}
	return b, nil
}
