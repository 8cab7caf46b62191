package service

import (
	"testing"

	"quill/internal/cache"
	"quill/internal/repository"
	"quill/internal/storage"
	"quill/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	posts    repository.PostRepository
	groups   repository.GroupRepository
	users    repository.UserRepository
	follows  repository.FollowRepository
	comments repository.CommentRepository
	blobs    *storage.FileStore
	index    *cache.IndexCache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	blobs, err := storage.NewFileStore(t.TempDir(), 1<<20)
	require.NoError(t, err)

	return &testEnv{
		db:       db,
		posts:    repository.NewPostRepository(db),
		groups:   repository.NewGroupRepository(db),
		users:    repository.NewUserRepository(db),
		follows:  repository.NewFollowRepository(db),
		comments: repository.NewCommentRepository(db),
		blobs:    blobs,
		index:    cache.NewIndexCache(cache.NewMemoryStore(), cache.DefaultIndexTTL),
	}
}

func (e *testEnv) postService() *PostService {
	return NewPostService(e.posts, e.groups, e.blobs, e.index)
}

func (e *testEnv) feedService(pageSize int) *FeedService {
	return NewFeedService(e.posts, e.groups, e.users, e.follows, e.comments, pageSize)
}
