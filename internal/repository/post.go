package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"quill/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines persistence operations for posts and the feed sequences built on them.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, id, authorGuard uint, fields UpdatePostFields) (*models.Post, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetByAuthor(ctx context.Context, username string, id uint) (*models.Post, error)
	Ordered() *PostQuery
	ByGroup(groupID uint) *PostQuery
	ByAuthor(authorID uint) *PostQuery
	FollowedBy(userID uint) *PostQuery
}

// UpdatePostFields carries the editable columns of a post.
// A nil Image keeps the current image; a pointer to "" removes it.
type UpdatePostFields struct {
	Text    string
	GroupID *uint
	Image   *string
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create validates and stores post. PubDate is assigned inside the
// transaction and kept strictly after the author's previous post.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	post.Text = strings.TrimSpace(post.Text)
	if post.Text == "" {
		return models.NewFieldError("text", "This field is required.")
	}

	return transaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := requireExists(tx, &models.User{}, post.AuthorID, "User"); err != nil {
			return err
		}
		if post.GroupID != nil {
			if err := requireExists(tx, &models.Group{}, *post.GroupID, "Group"); err != nil {
				return err
			}
		}

		pubDate, err := nextPubDate(tx, post.AuthorID)
		if err != nil {
			return err
		}
		post.PubDate = pubDate

		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			if isForeignKeyViolation(err) {
				return models.NewNotFoundError("Group", post.GroupID)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
}

func nextPubDate(tx *gorm.DB, authorID uint) (time.Time, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	var last models.Post
	err := tx.Select("pub_date").
		Where("author_id = ?", authorID).
		Order("pub_date DESC").
		Take(&last).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return now, nil
	case err != nil:
		return time.Time{}, models.NewInternalError(err)
	}

	if !now.After(last.PubDate) {
		return last.PubDate.UTC().Add(time.Microsecond), nil
	}
	return now, nil
}

func requireExists(tx *gorm.DB, model interface{}, id uint, resource string) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return models.NewInternalError(err)
	}
	if n == 0 {
		return models.NewNotFoundError(resource, id)
	}
	return nil
}

func (r *postRepository) Update(ctx context.Context, id, authorGuard uint, fields UpdatePostFields) (*models.Post, error) {
	text := strings.TrimSpace(fields.Text)
	if text == "" {
		return nil, models.NewFieldError("text", "This field is required.")
	}

	err := transaction(ctx, r.db, func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			return notFoundOr(err, "Post", id)
		}
		if post.AuthorID != authorGuard {
			return models.NewForbiddenError("Only the author can edit this post")
		}
		if fields.GroupID != nil {
			if err := requireExists(tx, &models.Group{}, *fields.GroupID, "Group"); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"text":     text,
			"group_id": fields.GroupID,
		}
		if fields.Image != nil {
			updates["image"] = *fields.Image
		}
		if err := tx.Model(&post).Omit(clause.Associations).Updates(updates).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&post, id).Error
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

// GetByAuthor loads the post only when it was written by username.
func (r *postRepository) GetByAuthor(ctx context.Context, username string, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		Joins("JOIN users ON users.id = posts.author_id").
		Where("posts.id = ? AND users.username = ?", id, username).
		Take(&post).Error
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Ordered() *PostQuery {
	return &PostQuery{db: r.db}
}

func (r *postRepository) ByGroup(groupID uint) *PostQuery {
	return &PostQuery{db: r.db, scope: func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.group_id = ?", groupID)
	}}
}

func (r *postRepository) ByAuthor(authorID uint) *PostQuery {
	return &PostQuery{db: r.db, scope: func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.author_id = ?", authorID)
	}}
}

// FollowedBy selects posts whose author has an incoming follow from userID.
func (r *postRepository) FollowedBy(userID uint) *PostQuery {
	return &PostQuery{db: r.db, scope: func(db *gorm.DB) *gorm.DB {
		followed := r.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", userID)
		return db.Where("posts.author_id IN (?)", followed)
	}}
}

// PostQuery is a lazy, newest-first sequence of posts. Nothing is loaded
// until Count or Slice runs, and Slice only fetches the requested window.
type PostQuery struct {
	db    *gorm.DB
	scope func(*gorm.DB) *gorm.DB
}

func (q *PostQuery) base(ctx context.Context) *gorm.DB {
	db := q.db.WithContext(ctx).Model(&models.Post{})
	if q.scope != nil {
		db = q.scope(db)
	}
	return db
}

// Count returns the number of posts in the sequence.
func (q *PostQuery) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := q.base(ctx).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// Slice returns up to limit posts starting at offset, with author and group loaded.
func (q *PostQuery) Slice(ctx context.Context, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := q.base(ctx).
		Preload("Author").
		Preload("Group").
		Order("posts.pub_date DESC").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}
