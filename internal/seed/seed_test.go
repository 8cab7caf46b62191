package seed

import (
	"context"
	"strings"
	"testing"

	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestDefaultGroups(t *testing.T) {
	groups, err := DefaultGroups()
	require.NoError(t, err)
	require.NotEmpty(t, groups)
	for _, g := range groups {
		assert.NotEmpty(t, g.Title)
		assert.NotEmpty(t, g.Slug)
	}
}

func TestParseGroups_Invalid(t *testing.T) {
	_, err := ParseGroups([]byte("groups:\n  - title: A\n    slug: same\n  - title: B\n    slug: same\n"))
	assert.ErrorContains(t, err, "duplicate slug")

	_, err = ParseGroups([]byte("groups:\n  - title: Bad\n    slug: not/routable\n"))
	assert.ErrorContains(t, err, "slug")

	_, err = ParseGroups([]byte("groups:\n  - title: Spaced\n    slug: two words\n"))
	assert.ErrorContains(t, err, "slug")

	_, err = ParseGroups([]byte("groups:\n  - title: Long\n    slug: long\n    description: " + strings.Repeat("d", 201) + "\n"))
	assert.ErrorContains(t, err, "description")

	_, err = ParseGroups([]byte("groups:\n  - title: Missing slug\n"))
	assert.Error(t, err)

	_, err = ParseGroups([]byte("groups: [unclosed"))
	assert.Error(t, err)
}

func TestGroups_RejectsInvalidFixture(t *testing.T) {
	db := testutil.NewTestDB(t)

	_, err := Groups(context.Background(), db, []GroupFixture{{Title: "Cats", Slug: "Cats and Dogs"}})
	assert.ErrorContains(t, err, "slug")

	var n int64
	require.NoError(t, db.Model(&models.Group{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestGroups_Upsert(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	fixtures := []GroupFixture{{Title: "Cats", Slug: "cats", Description: "old"}}
	first, err := Groups(ctx, db, fixtures)
	require.NoError(t, err)

	fixtures[0].Description = "new"
	second, err := Groups(ctx, db, fixtures)
	require.NoError(t, err)

	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, "new", second[0].Description)

	var n int64
	db.Model(&models.Group{}).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	fixtures, err := DefaultGroups()
	require.NoError(t, err)

	s := NewSeeder(db, Options{
		Users:           4,
		PostsPerUser:    3,
		FollowsPerUser:  2,
		CommentsPerPost: 1,
		Seed:            42,
		BcryptCost:      bcrypt.MinCost,
	})
	sum, err := s.Run(ctx, fixtures)
	require.NoError(t, err)

	assert.Equal(t, len(fixtures), sum.Groups)
	assert.Equal(t, 4, sum.Users)
	assert.Equal(t, 12, sum.Posts)
	assert.Equal(t, 12, sum.Comments)
	assert.LessOrEqual(t, sum.Follows, 8)

	var selfFollows int64
	db.Model(&models.Follow{}).Where("user_id = author_id").Count(&selfFollows)
	assert.Zero(t, selfFollows)

	var follows int64
	db.Model(&models.Follow{}).Count(&follows)
	assert.EqualValues(t, sum.Follows, follows)

	require.NoError(t, s.ClearAll(ctx))
	var posts int64
	db.Model(&models.Post{}).Count(&posts)
	assert.Zero(t, posts)
}
