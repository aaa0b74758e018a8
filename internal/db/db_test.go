package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"health-reminder-backend/config"
	"health-reminder-backend/internal/model"
)

func TestIsPostgresDSN(t *testing.T) {
	assert.True(t, IsPostgresDSN("postgres://user:pw@localhost:5432/app"))
	assert.True(t, IsPostgresDSN("postgresql://localhost/app"))
	assert.True(t, IsPostgresDSN("host=localhost user=app dbname=app"))
	assert.False(t, IsPostgresDSN("reminders.db"))
	assert.False(t, IsPostgresDSN("file::memory:?cache=shared"))
}

func TestInit_SQLiteFile(t *testing.T) {
	cfg := &config.DatabaseConfig{DSN: filepath.Join(t.TempDir(), "reminders.db"), MaxOpenConns: 1}

	gormDB, err := Init(cfg, zap.NewNop())
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.Equal(t, "sqlite", gormDB.Dialector.Name())
	assert.True(t, gormDB.Migrator().HasTable(&model.KVEntry{}))
	assert.True(t, gormDB.Migrator().HasTable(&model.PushSubscription{}))
}
