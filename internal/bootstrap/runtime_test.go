package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"quill/internal/config"
	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRuntime_SQLite(t *testing.T) {
	cfg := &config.Config{
		Env:                      "test",
		DBDriver:                 "sqlite",
		SQLitePath:               filepath.Join(t.TempDir(), "quill.db"),
		DBConnMaxLifetimeMinutes: 5,
		RedisURL:                 "127.0.0.1:1",
	}

	db, client, err := InitRuntime(context.Background(), cfg, Options{SeedGroups: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	assert.Nil(t, client)

	var groups int64
	require.NoError(t, db.Model(&models.Group{}).Count(&groups).Error)
	assert.Positive(t, groups)
}
