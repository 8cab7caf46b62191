package repository

import (
	"context"
	"testing"

	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	post := testutil.CreatePost(t, db, author, "post", nil)

	err := repo.Create(ctx, &models.Comment{PostID: 777, AuthorID: author.ID, Text: "x"})
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	err = repo.Create(ctx, &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: " "})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	first := &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "first"}
	second := &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "second"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, "author", list[0].Author.Username)

	require.NoError(t, db.Delete(&models.Post{}, post.ID).Error)
	list, err = repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
