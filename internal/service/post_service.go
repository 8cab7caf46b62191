// Package service holds the application's use cases on top of the repositories.
package service

import (
	"context"
	"io"
	"log/slog"

	"quill/internal/cache"
	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/repository"
	"quill/internal/storage"

	"go.opentelemetry.io/otel/attribute"
)

// PostService creates and edits posts.
type PostService struct {
	postRepo   repository.PostRepository
	groupRepo  repository.GroupRepository
	blobs      storage.BlobStore
	indexCache *cache.IndexCache
}

// ImageUpload is an uploaded file as received from the form.
type ImageUpload struct {
	ContentType string
	Body        io.Reader
}

type CreatePostInput struct {
	AuthorID uint
	Text     string
	GroupID  *uint
	Image    *ImageUpload
}

type UpdatePostInput struct {
	ViewerID   uint
	Username   string
	PostID     uint
	Text       string
	GroupID    *uint
	Image      *ImageUpload
	ClearImage bool
}

func NewPostService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	blobs storage.BlobStore,
	indexCache *cache.IndexCache,
) *PostService {
	return &PostService{
		postRepo:   postRepo,
		groupRepo:  groupRepo,
		blobs:      blobs,
		indexCache: indexCache,
	}
}

// CreatePost validates the form, stores the image and commits the post.
// The cached anonymous index page is cleared after commit.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService.CreatePost", attribute.Int("author.id", int(in.AuthorID)))
	defer func() { observability.EndSpan(span, err) }()

	if in.AuthorID == 0 {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	if err := s.validateForm(ctx, in.Text, in.GroupID); err != nil {
		return nil, err
	}

	post = &models.Post{
		Text:     in.Text,
		AuthorID: in.AuthorID,
		GroupID:  in.GroupID,
	}
	if in.Image != nil {
		key, err := s.blobs.Put(ctx, in.Image.ContentType, in.Image.Body)
		if err != nil {
			return nil, err
		}
		post.Image = key
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	middleware.PostsCreated.Inc()
	s.clearIndex(ctx)

	return s.postRepo.GetByID(ctx, post.ID)
}

// GetEditablePost loads the post addressed by username and postID and checks
// that viewerID wrote it. A post by someone else yields FORBIDDEN.
func (s *PostService) GetEditablePost(ctx context.Context, viewerID uint, username string, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByAuthor(ctx, username, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != viewerID {
		return post, models.NewForbiddenError("Only the author can edit this post")
	}
	return post, nil
}

// UpdatePost edits text, group and image of a post owned by the viewer.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService.UpdatePost", attribute.Int("post.id", int(in.PostID)))
	defer func() { observability.EndSpan(span, err) }()

	if _, err := s.GetEditablePost(ctx, in.ViewerID, in.Username, in.PostID); err != nil {
		return nil, err
	}
	if err := s.validateForm(ctx, in.Text, in.GroupID); err != nil {
		return nil, err
	}

	fields := repository.UpdatePostFields{Text: in.Text, GroupID: in.GroupID}
	switch {
	case in.Image != nil:
		key, err := s.blobs.Put(ctx, in.Image.ContentType, in.Image.Body)
		if err != nil {
			return nil, err
		}
		fields.Image = &key
	case in.ClearImage:
		empty := ""
		fields.Image = &empty
	}

	post, err = s.postRepo.Update(ctx, in.PostID, in.ViewerID, fields)
	if err != nil {
		return nil, err
	}
	s.clearIndex(ctx)
	return post, nil
}

// ListGroups returns the groups offered by the post form.
func (s *PostService) ListGroups(ctx context.Context) ([]models.Group, error) {
	return s.groupRepo.List(ctx)
}

func (s *PostService) validateForm(ctx context.Context, text string, groupID *uint) error {
	fields := map[string]string{}
	if isBlank(text) {
		fields["text"] = "This field is required."
	}
	if groupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *groupID); err != nil {
			if !models.IsCode(err, models.CodeNotFound) {
				return err
			}
			fields["group"] = "Select a valid choice."
		}
	}
	if len(fields) > 0 {
		return models.NewFieldErrors(fields)
	}
	return nil
}

func (s *PostService) clearIndex(ctx context.Context) {
	if err := s.indexCache.Clear(ctx); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to clear index cache", slog.String("error", err.Error()))
	}
}
