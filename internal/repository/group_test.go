package repository

import (
	"context"
	"strings"
	"testing"

	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	g := &models.Group{Title: "Тестовая группа", Slug: "test-slug", Description: "desc"}
	require.NoError(t, repo.Create(ctx, g))
	require.NoError(t, repo.Create(ctx, &models.Group{Title: "Another", Slug: "another"}))

	got, err := repo.GetBySlug(ctx, "test-slug")
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)

	got, err = repo.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Тестовая группа", got.String())

	_, err = repo.GetBySlug(ctx, "missing")
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	err = repo.Create(ctx, &models.Group{Title: "dup", Slug: "test-slug"})
	assert.True(t, models.IsCode(err, models.CodeConflict))

	groups, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Another", groups[0].Title)
}

func TestGroupRepository_CreateValidatesFields(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	tests := []struct {
		name  string
		group models.Group
		field string
	}{
		{"Slash in slug", models.Group{Title: "T", Slug: "a/b"}, "slug"},
		{"Space in slug", models.Group{Title: "T", Slug: "two words"}, "slug"},
		{"Uppercase slug", models.Group{Title: "T", Slug: "Cats"}, "slug"},
		{"Blank slug", models.Group{Title: "T", Slug: "  "}, "slug"},
		{"Blank title", models.Group{Title: "", Slug: "cats"}, "title"},
		{"Long title", models.Group{Title: strings.Repeat("t", 201), Slug: "cats"}, "title"},
		{"Long description", models.Group{Title: "T", Slug: "cats", Description: strings.Repeat("d", 201)}, "description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.group
			err := repo.Create(ctx, &g)
			require.True(t, models.IsCode(err, models.CodeValidation), "got %v", err)
			assert.Contains(t, models.FieldErrors(err), tt.field)
		})
	}

	var n int64
	require.NoError(t, db.Model(&models.Group{}).Count(&n).Error)
	assert.Zero(t, n)
}
