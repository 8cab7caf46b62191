// Package testutil provides shared test doubles and fixtures.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"quill/internal/database"
	"quill/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SmallGIF is a valid 2x1 GIF image.
var SmallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

var pubClock atomic.Int64

// NewTestDB opens a migrated in-memory SQLite database with foreign keys enabled.
// A single connection keeps every query on the same in-memory database.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:?_foreign_keys=1"), logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user with the given username.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateGroup inserts a group with the given slug.
func CreateGroup(t testing.TB, db *gorm.DB, slug string) *models.Group {
	t.Helper()
	group := &models.Group{
		Title:       "Group " + slug,
		Slug:        slug,
		Description: "Description of " + slug,
	}
	require.NoError(t, db.Create(group).Error)
	return group
}

// CreatePost inserts a post directly, bypassing repository validation.
// Successive calls get strictly increasing publication dates.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, text string, group *models.Group) *models.Post {
	t.Helper()
	post := &models.Post{
		Text:     text,
		AuthorID: author.ID,
		PubDate:  nextPubDate(),
	}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, db.Omit("Author", "Group").Create(post).Error)
	return post
}

func nextPubDate() time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(pubClock.Add(1)) * time.Second)
}
