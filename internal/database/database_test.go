package database

import (
	"context"
	"strings"
	"testing"

	"quill/internal/config"
	"quill/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestDialector(t *testing.T) {
	d, err := Dialector(&config.Config{DBDriver: "sqlite", SQLitePath: "file.db"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = Dialector(&config.Config{DBDriver: "postgres", DBHost: "localhost", DBPort: "5432"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	d, err = Dialector(&config.Config{DBDriver: "mysql", DBHost: "localhost", DBPort: "3306", DBName: "quill"})
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	_, err = Dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(&config.Config{
		DBHost:     "db.internal",
		DBPort:     "3306",
		DBUser:     "quill",
		DBPassword: "secret",
		DBName:     "quill",
	})
	assert.True(t, strings.HasPrefix(dsn, "quill:secret@tcp(db.internal:3306)/quill?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestConnect_SQLiteMigratesSchema(t *testing.T) {
	cfg := &config.Config{
		Env:                      "test",
		DBDriver:                 "sqlite",
		SQLitePath:               t.TempDir() + "/quill.db",
		DBConnMaxLifetimeMinutes: 5,
	}

	db, err := Connect(cfg)
	require.NoError(t, err)

	for _, m := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.False(t, IsPostgres(db))
	require.NoError(t, Ping(context.Background(), db))

	// Foreign keys are enforced.
	err = db.Create(&models.Post{Text: "orphan", AuthorID: 999}).Error
	assert.Error(t, err)
}

func TestGormLogger_LogMode(t *testing.T) {
	l := NewGormLogger(logger.Warn)
	silent := l.LogMode(logger.Silent).(*CustomGormLogger)

	assert.Equal(t, logger.Silent, silent.Config.LogLevel)
	assert.Equal(t, logger.Warn, l.Config.LogLevel)
}
