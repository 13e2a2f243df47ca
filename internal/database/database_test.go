package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-manager/internal/config"
	"rental-manager/internal/models"
)

func TestNewGormDBSQLite(t *testing.T) {
	cfg := config.DatabaseConfig{
		Type:   "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	}

	gdb, err := NewGormDB(cfg, "info")
	require.NoError(t, err)
	defer gdb.Close()

	require.NoError(t, gdb.InitSchema())

	for _, table := range []interface{}{
		&models.Property{}, &models.Tenant{}, &models.Contract{}, &models.Payment{},
		&models.PaymentStatusChange{}, &models.Expense{}, &models.Notification{},
		&models.NotificationCleanupLog{},
	} {
		assert.True(t, gdb.DB().Migrator().HasTable(table))
	}
}

func TestDialectorRejectsUnknownType(t *testing.T) {
	_, err := dialectorFor(config.DatabaseConfig{Type: "oracle"})
	assert.Error(t, err)
}

func TestDialectorBuildsDSN(t *testing.T) {
	cfg := config.DefaultConfig().Database

	d, err := dialectorFor(cfg)
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	cfg.Type = "mysql"
	d, err = dialectorFor(cfg)
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())
}
