package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/repository"
)

type CommentService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

type AddCommentInput struct {
	AuthorID uint
	Username string
	PostID   uint
	Text     string
}

func NewCommentService(postRepo repository.PostRepository, commentRepo repository.CommentRepository) *CommentService {
	return &CommentService{postRepo: postRepo, commentRepo: commentRepo}
}

// ResolvePost returns the post addressed by username and postID.
func (s *CommentService) ResolvePost(ctx context.Context, username string, postID uint) (*models.Post, error) {
	return s.postRepo.GetByAuthor(ctx, username, postID)
}

// AddComment attaches a comment to the post addressed by username and postID.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if in.AuthorID == 0 {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	post, err := s.ResolvePost(ctx, in.Username, in.PostID)
	if err != nil {
		return nil, err
	}
	if isBlank(in.Text) {
		return nil, models.NewFieldError("text", "This field is required.")
	}

	comment := &models.Comment{PostID: post.ID, AuthorID: in.AuthorID, Text: in.Text}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
