package repository

import (
	"context"
	"strings"
	"time"

	"quill/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	comment.Text = strings.TrimSpace(comment.Text)
	if comment.Text == "" {
		return models.NewFieldError("text", "This field is required.")
	}

	return transaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := requireExists(tx, &models.Post{}, comment.PostID, "Post"); err != nil {
			return err
		}
		comment.Created = time.Now().UTC()
		if err := tx.Omit(clause.Associations).Create(comment).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

// ListByPost returns the post's comments, newest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created DESC").
		Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}
