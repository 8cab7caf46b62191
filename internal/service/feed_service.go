package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/pagination"
	"quill/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

// PostPage is one page of a feed.
type PostPage = pagination.Page[models.Post]

// FeedService composes the read-side queries behind every feed page.
type FeedService struct {
	posts    repository.PostRepository
	groups   repository.GroupRepository
	users    repository.UserRepository
	follows  repository.FollowRepository
	comments repository.CommentRepository
	pageSize int
}

type GroupFeed struct {
	Group *models.Group
	Page  *PostPage
}

type AuthorFeed struct {
	Author         *models.User
	Page           *PostPage
	Following      bool
	FollowersCount int64
	FollowingCount int64
}

type PostDetail struct {
	Post      *models.Post
	Comments  []models.Comment
	Following bool
}

func NewFeedService(
	posts repository.PostRepository,
	groups repository.GroupRepository,
	users repository.UserRepository,
	follows repository.FollowRepository,
	comments repository.CommentRepository,
	pageSize int,
) *FeedService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &FeedService{
		posts:    posts,
		groups:   groups,
		users:    users,
		follows:  follows,
		comments: comments,
		pageSize: pageSize,
	}
}

// PageSize returns the configured number of posts per page.
func (s *FeedService) PageSize() int { return s.pageSize }

// IndexFeed pages over every post, newest first.
func (s *FeedService) IndexFeed(ctx context.Context, rawPage string) (page *PostPage, err error) {
	ctx, span := observability.StartSpan(ctx, "FeedService.IndexFeed")
	defer func() { observability.EndSpan(span, err) }()

	return pagination.Paginate[models.Post](ctx, s.posts.Ordered(), s.pageSize, rawPage)
}

// GroupFeed pages over the posts of the group with slug.
func (s *FeedService) GroupFeed(ctx context.Context, slug, rawPage string) (feed *GroupFeed, err error) {
	ctx, span := observability.StartSpan(ctx, "FeedService.GroupFeed", attribute.String("group.slug", slug))
	defer func() { observability.EndSpan(span, err) }()

	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	page, err := pagination.Paginate[models.Post](ctx, s.posts.ByGroup(group.ID), s.pageSize, rawPage)
	if err != nil {
		return nil, err
	}
	return &GroupFeed{Group: group, Page: page}, nil
}

// AuthorFeed pages over the posts of username. Following is only ever true
// for an authenticated viewer (viewerID != 0).
func (s *FeedService) AuthorFeed(ctx context.Context, viewerID uint, username, rawPage string) (feed *AuthorFeed, err error) {
	ctx, span := observability.StartSpan(ctx, "FeedService.AuthorFeed", attribute.String("author.username", username))
	defer func() { observability.EndSpan(span, err) }()

	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	page, err := pagination.Paginate[models.Post](ctx, s.posts.ByAuthor(author.ID), s.pageSize, rawPage)
	if err != nil {
		return nil, err
	}

	feed = &AuthorFeed{Author: author, Page: page}
	if feed.Following, err = s.follows.Exists(ctx, viewerID, author.ID); err != nil {
		return nil, err
	}
	if feed.FollowersCount, err = s.follows.CountFollowers(ctx, author.ID); err != nil {
		return nil, err
	}
	if feed.FollowingCount, err = s.follows.CountFollowing(ctx, author.ID); err != nil {
		return nil, err
	}
	return feed, nil
}

// FollowingFeed pages over posts by authors viewerID follows.
func (s *FeedService) FollowingFeed(ctx context.Context, viewerID uint, rawPage string) (page *PostPage, err error) {
	ctx, span := observability.StartSpan(ctx, "FeedService.FollowingFeed", attribute.Int("viewer.id", int(viewerID)))
	defer func() { observability.EndSpan(span, err) }()

	if viewerID == 0 {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	return pagination.Paginate[models.Post](ctx, s.posts.FollowedBy(viewerID), s.pageSize, rawPage)
}

// PostDetail loads a post by its author's username with comments newest first.
func (s *FeedService) PostDetail(ctx context.Context, viewerID uint, username string, postID uint) (detail *PostDetail, err error) {
	ctx, span := observability.StartSpan(ctx, "FeedService.PostDetail", attribute.Int("post.id", int(postID)))
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.posts.GetByAuthor(ctx, username, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.Exists(ctx, viewerID, post.AuthorID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, Comments: comments, Following: following}, nil
}
