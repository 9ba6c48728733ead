package db

import (
	"context"
	"testing"

	"kasir/internal/domain/model"
	"kasir/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_CreatesTablesAndVersion(t *testing.T) {
	gdb, err := OpenMemory("db_migrate")
	require.NoError(t, err)
	defer Close(gdb)

	require.NoError(t, Migrate(gdb, false, logger.Discard()))

	assert.True(t, gdb.Migrator().HasTable("products"))
	assert.True(t, gdb.Migrator().HasTable("transactions"))

	v, err := storedVersion(gdb)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)
}

func TestMigrate_VersionMismatchDropsData(t *testing.T) {
	gdb, err := OpenMemory("db_reset")
	require.NoError(t, err)
	defer Close(gdb)

	require.NoError(t, Migrate(gdb, false, logger.Discard()))
	_, err = SeedCatalog(context.Background(), gdb, logger.Discard())
	require.NoError(t, err)

	require.NoError(t, gdb.Save(&model.SchemaMeta{ID: 1, Version: SchemaVersion + 1}).Error)
	require.NoError(t, Migrate(gdb, false, logger.Discard()))

	var count int64
	require.NoError(t, gdb.Model(&model.Product{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMigrate_SameVersionKeepsData(t *testing.T) {
	gdb, err := OpenMemory("db_keep")
	require.NoError(t, err)
	defer Close(gdb)

	require.NoError(t, Migrate(gdb, false, logger.Discard()))
	_, err = SeedCatalog(context.Background(), gdb, logger.Discard())
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb, false, logger.Discard()))

	var count int64
	require.NoError(t, gdb.Model(&model.Product{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestSeedCatalog_OnlyWhenEmpty(t *testing.T) {
	gdb, err := OpenMemory("db_seed")
	require.NoError(t, err)
	defer Close(gdb)
	require.NoError(t, Migrate(gdb, false, logger.Discard()))

	n, err := SeedCatalog(context.Background(), gdb, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = SeedCatalog(context.Background(), gdb, logger.Discard())
	require.NoError(t, err)
	assert.Zero(t, n)
}
