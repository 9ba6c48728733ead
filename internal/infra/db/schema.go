package db

import (
	"errors"
	"fmt"
	"log/slog"

	"kasir/internal/domain/model"

	"gorm.io/gorm"
)

// SchemaVersion is bumped whenever a table layout changes.
// A database holding another version is dropped and recreated; there is no migration path.
const SchemaVersion = 1

func tables() []any {
	return []any{&model.Product{}, &model.Transaction{}, &model.SchemaMeta{}}
}

// Migrate creates the tables. When force is set, or the stored version differs,
// every table is dropped first.
func Migrate(gdb *gorm.DB, force bool, log *slog.Logger) error {
	stored, err := storedVersion(gdb)
	if err != nil {
		return err
	}

	if force || (stored != 0 && stored != SchemaVersion) {
		log.Warn("resetting schema",
			slog.Int("stored_version", stored),
			slog.Int("version", SchemaVersion),
			slog.Bool("forced", force),
		)
		if err := gdb.Migrator().DropTable(tables()...); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
	}

	if err := gdb.AutoMigrate(tables()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return gdb.Save(&model.SchemaMeta{ID: 1, Version: SchemaVersion}).Error
}

// 0 means no schema yet.
func storedVersion(gdb *gorm.DB) (int, error) {
	if !gdb.Migrator().HasTable(&model.SchemaMeta{}) {
		return 0, nil
	}
	var meta model.SchemaMeta
	err := gdb.First(&meta, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return meta.Version, nil
}
