package service

import (
	"context"
	"testing"

	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowService(t *testing.T) {
	env := newTestEnv(t)
	svc := NewFollowService(env.users, env.follows)
	ctx := context.Background()

	first := testutil.CreateUser(t, env.db, "First")
	author := testutil.CreateUser(t, env.db, "test_user")

	edges := func() int64 {
		var n int64
		env.db.Model(&models.Follow{}).Count(&n)
		return n
	}

	t.Run("Follow twice keeps one edge", func(t *testing.T) {
		got, err := svc.Follow(ctx, first.ID, "test_user")
		require.NoError(t, err)
		assert.Equal(t, author.ID, got.ID)
		_, err = svc.Follow(ctx, first.ID, "test_user")
		require.NoError(t, err)
		assert.EqualValues(t, 1, edges())
	})

	t.Run("Self follow is skipped", func(t *testing.T) {
		_, err := svc.Follow(ctx, first.ID, "First")
		require.NoError(t, err)
		assert.EqualValues(t, 1, edges())
	})

	t.Run("Unknown author", func(t *testing.T) {
		_, err := svc.Follow(ctx, first.ID, "ghost")
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})

	t.Run("Unfollow twice fails the second time", func(t *testing.T) {
		_, err := svc.Unfollow(ctx, first.ID, "test_user")
		require.NoError(t, err)
		assert.Zero(t, edges())

		_, err = svc.Unfollow(ctx, first.ID, "test_user")
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	})

	t.Run("Anonymous viewer", func(t *testing.T) {
		_, err := svc.Follow(ctx, 0, "test_user")
		assert.True(t, models.IsCode(err, models.CodeUnauthenticated))
	})
}
