package server

import (
	"fmt"
	"net/http"
	"testing"

	"quill/internal/models"
	"quill/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowFlow(t *testing.T) {
	ts := newTestServer(t)
	first := testutil.CreateUser(t, ts.db, "First")
	author := testutil.CreateUser(t, ts.db, "test_user")
	post := testutil.CreatePost(t, ts.db, author, "from the followed author", nil)
	testutil.CreatePost(t, ts.db, first, "own post", nil)

	edgeExists := func() bool {
		var n int64
		require.NoError(t, ts.db.Model(&models.Follow{}).
			Where("user_id = ? AND author_id = ?", first.ID, author.ID).Count(&n).Error)
		return n > 0
	}

	resp := ts.get(t, "/test_user/follow/", first)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/test_user/", resp.Header.Get("Location"))
	assert.True(t, edgeExists())

	resp = ts.get(t, "/test_user/follow/", first)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.EqualValues(t, 1, countRows(t, ts.db, &models.Follow{}))

	resp = ts.get(t, "/follow/", first)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, fmt.Sprintf(`id="post-%d"`, post.ID))
	assert.NotContains(t, body, "own post")

	body = readBody(t, ts.get(t, "/test_user/", first))
	assert.Contains(t, body, `class="unfollow"`)

	resp = ts.get(t, "/test_user/unfollow/", first)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.False(t, edgeExists())

	resp = ts.get(t, "/test_user/unfollow/", first)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFollow_EdgeCases(t *testing.T) {
	ts := newTestServer(t)
	first := testutil.CreateUser(t, ts.db, "First")

	t.Run("Self follow creates no edge", func(t *testing.T) {
		resp := ts.get(t, "/First/follow/", first)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Zero(t, countRows(t, ts.db, &models.Follow{}))
	})

	t.Run("Unknown author", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, ts.get(t, "/ghost/follow/", first).StatusCode)
		assert.Equal(t, http.StatusNotFound, ts.get(t, "/ghost/unfollow/", first).StatusCode)
	})

	t.Run("Anonymous", func(t *testing.T) {
		resp := ts.get(t, "/First/follow/", nil)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/auth/login/?next=/First/follow/", resp.Header.Get("Location"))

		resp = ts.get(t, "/follow/", nil)
		assert.Equal(t, "/auth/login/?next=/follow/", resp.Header.Get("Location"))
	})

	t.Run("Anonymous keeps query string", func(t *testing.T) {
		resp := ts.get(t, "/follow/?page=2", nil)
		require.Equal(t, http.StatusFound, resp.StatusCode)
		location := resp.Header.Get("Location")
		assert.Equal(t, "/auth/login/?next=/follow/%3Fpage%3D2", location)

		body := readBody(t, ts.get(t, location, nil))
		assert.Contains(t, body, `value="/follow/?page=2"`)
	})

	t.Run("Empty following feed", func(t *testing.T) {
		resp := ts.get(t, "/follow/", first)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Zero(t, countPosts(readBody(t, resp)))
	})
}
