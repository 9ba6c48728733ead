package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"kasir/internal/config"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the store selected by cfg and returns *gorm.DB.
func Connect(cfg config.Config, log *slog.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: newGormLogger(log, cfg.LogLevel)}

	switch cfg.DBDriver {
	case config.DriverPostgres:
		return gorm.Open(postgres.Open(postgresDSN(cfg)), gcfg)
	default:
		return OpenSQLite(cfg.SQLitePath, gcfg)
	}
}

// OpenSQLite opens a SQLite file (or a "file:...?mode=memory" URI).
// One connection only: every store transaction runs strictly after the previous one.
func OpenSQLite(path string, gcfg *gorm.Config) (*gorm.DB, error) {
	if gcfg == nil {
		gcfg = &gorm.Config{Logger: gormlogger.Discard}
	}
	gdb, err := gorm.Open(sqlite.Open(path), gcfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := gdb.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		return nil, err
	}
	return gdb, nil
}

// OpenMemory opens a private in-memory SQLite database named name.
func OpenMemory(name string) (*gorm.DB, error) {
	return OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), nil)
}

func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DATABASE_URL wins over the POSTGRES_* parts.
func postgresDSN(cfg config.Config) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getenv("POSTGRES_HOST", "localhost"),
		getenv("POSTGRES_PORT", "5432"),
		getenv("POSTGRES_USER", "postgres"),
		getenv("POSTGRES_PASSWORD", "postgres"),
		getenv("POSTGRES_DB", "kasir"),
		getenv("POSTGRES_SSLMODE", "disable"),
	)
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func newGormLogger(log *slog.Logger, level string) gormlogger.Interface {
	lvl := gormlogger.Warn
	switch level {
	case "debug":
		lvl = gormlogger.Info
	case "error":
		lvl = gormlogger.Error
	}
	return gormlogger.New(slogWriter{log: log}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
	})
}

// slogWriter adapts gorm's Printf-style logger to slog.
type slogWriter struct {
	log *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	w.log.Log(context.Background(), slog.LevelInfo, fmt.Sprintf(format, args...), slog.String("component", "gorm"))
}
