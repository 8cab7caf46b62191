package repository

import (
	"context"
	"testing"

	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_Integration(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	first := testutil.CreateUser(t, db, "First")
	author := testutil.CreateUser(t, db, "test_user")

	t.Run("Follow is idempotent", func(t *testing.T) {
		created, err := repo.Follow(ctx, first.ID, author.ID)
		require.NoError(t, err)
		assert.True(t, created)

		created, err = repo.Follow(ctx, first.ID, author.ID)
		require.NoError(t, err)
		assert.False(t, created)

		var n int64
		db.Model(&models.Follow{}).Where("user_id = ? AND author_id = ?", first.ID, author.ID).Count(&n)
		assert.EqualValues(t, 1, n)
	})

	t.Run("Self follow is forbidden", func(t *testing.T) {
		_, err := repo.Follow(ctx, first.ID, first.ID)
		assert.True(t, models.IsCode(err, models.CodeForbidden))
	})

	t.Run("Exists and counts", func(t *testing.T) {
		ok, err := repo.Exists(ctx, first.ID, author.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Exists(ctx, author.ID, first.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		followers, err := repo.CountFollowers(ctx, author.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, followers)

		following, err := repo.CountFollowing(ctx, first.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, following)
	})

	t.Run("Unfollow reports removal", func(t *testing.T) {
		removed, err := repo.Unfollow(ctx, first.ID, author.ID)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = repo.Unfollow(ctx, first.ID, author.ID)
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("Unknown author", func(t *testing.T) {
		_, err := repo.Follow(ctx, first.ID, 4242)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})
}

func TestFollowRepository_Unfollow_Postgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "follows" WHERE`).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	removed, err := repo.Unfollow(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_Exists_Postgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "follows" WHERE`).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := repo.Exists(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
