package render

import (
	"context"
	"testing"
	"time"

	"quill/internal/models"
	"quill/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePage(t *testing.T, n int) *PostPage {
	t.Helper()
	author := models.User{ID: 1, Username: "test_user", FirstName: "Test", LastName: "User"}
	group := &models.Group{ID: 1, Title: "Test group", Slug: "test-slug"}
	posts := make(pagination.SliceSource[models.Post], n)
	for i := range posts {
		posts[i] = models.Post{
			ID:       uint(i + 1),
			Text:     "Тестовый текст",
			AuthorID: author.ID,
			Author:   author,
			GroupID:  &group.ID,
			Group:    group,
			PubDate:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		}
	}
	page, err := pagination.Paginate[models.Post](context.Background(), posts, 10, "1")
	require.NoError(t, err)
	return page
}

func TestRenderer_AllPagesExecute(t *testing.T) {
	r, err := New("en")
	require.NoError(t, err)

	viewer := &models.User{ID: 2, Username: "viewer"}
	page := samplePage(t, 13)
	post := page.ObjectList[0]

	views := map[string]interface{}{
		TemplateIndex:    IndexView{Page: page},
		TemplateGroup:    GroupView{Group: post.Group, Page: page},
		TemplateProfile:  ProfileView{Base: Base{Viewer: viewer}, Author: &post.Author, Page: page, ShowStats: true},
		TemplatePost:     PostView{Base: Base{Viewer: viewer}, Post: &post, Comments: []models.Comment{{ID: 1, Text: "hi", Author: *viewer}}},
		TemplateFollow:   FollowView{Base: Base{Viewer: viewer}, Page: page},
		TemplatePostForm: PostFormView{Base: Base{Viewer: viewer}, Groups: []models.Group{*post.Group}},
		TemplateLogin:    LoginView{Next: "/new/"},
		TemplateSignup:   SignupView{Base: Base{SignupOpen: true}},
		Template404:      ErrorView{Path: "/missing/"},
		Template500:      ErrorView{},
	}

	for name, data := range views {
		t.Run(name, func(t *testing.T) {
			body, err := r.Bytes(name, data)
			require.NoError(t, err)
			assert.Contains(t, string(body), "<html>")
		})
	}
}

func TestRenderer_PostFormFields(t *testing.T) {
	r, err := New("en")
	require.NoError(t, err)

	body, err := r.Bytes(TemplatePostForm, PostFormView{
		Errors: map[string]string{"text": "This field is required."},
	})
	require.NoError(t, err)

	html := string(body)
	for _, field := range []string{`name="text"`, `name="group"`, `name="image"`, `enctype="multipart/form-data"`} {
		assert.Contains(t, html, field)
	}
	assert.Contains(t, html, "This field is required.")
}

func TestRenderer_ProfileFollowButton(t *testing.T) {
	r, err := New("en")
	require.NoError(t, err)
	page := samplePage(t, 1)
	author := page.ObjectList[0].Author

	body, err := r.Bytes(TemplateProfile, ProfileView{Base: Base{Viewer: &models.User{ID: 9, Username: "fan"}}, Author: &author, Page: page})
	require.NoError(t, err)
	assert.Contains(t, string(body), "/test_user/follow/")

	body, err = r.Bytes(TemplateProfile, ProfileView{Base: Base{Viewer: &models.User{ID: 9, Username: "fan"}}, Author: &author, Page: page, Following: true})
	require.NoError(t, err)
	assert.Contains(t, string(body), "/test_user/unfollow/")

	body, err = r.Bytes(TemplateProfile, ProfileView{Base: Base{Viewer: &author}, Author: &author, Page: page})
	require.NoError(t, err)
	assert.NotContains(t, string(body), "/test_user/follow/")
}

func TestRenderer_Paginator(t *testing.T) {
	r, err := New("en")
	require.NoError(t, err)

	body, err := r.Bytes(TemplateIndex, IndexView{Page: samplePage(t, 13)})
	require.NoError(t, err)
	assert.Contains(t, string(body), "Page 1 of 2")
	assert.Contains(t, string(body), `href="?page=2"`)
}

func TestRenderer_Russian(t *testing.T) {
	r, err := New("ru")
	require.NoError(t, err)

	body, err := r.Bytes(Template404, ErrorView{})
	require.NoError(t, err)
	assert.Contains(t, string(body), "Страница не найдена")
	assert.Equal(t, "Подписаться", r.T("Follow"))
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	r, err := New("en")
	require.NoError(t, err)
	_, err = r.Bytes("nope.html", nil)
	assert.Error(t, err)
}
