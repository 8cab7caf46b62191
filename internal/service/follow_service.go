package service

import (
	"context"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/repository"
)

type FollowService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

func NewFollowService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *FollowService {
	return &FollowService{userRepo: userRepo, followRepo: followRepo}
}

// Follow subscribes viewerID to username. Following yourself is silently skipped
// and following twice keeps a single edge.
func (s *FollowService) Follow(ctx context.Context, viewerID uint, username string) (*models.User, error) {
	if viewerID == 0 {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if author.ID == viewerID {
		return author, nil
	}

	created, err := s.followRepo.Follow(ctx, viewerID, author.ID)
	if err != nil {
		return nil, err
	}
	if created {
		middleware.FollowChanges.WithLabelValues("follow").Inc()
	}
	return author, nil
}

// Unfollow removes the subscription. It fails with NOT_FOUND when there is none.
func (s *FollowService) Unfollow(ctx context.Context, viewerID uint, username string) (*models.User, error) {
	if viewerID == 0 {
		return nil, models.NewUnauthenticatedError("Authentication required")
	}
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	removed, err := s.followRepo.Unfollow(ctx, viewerID, author.ID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, models.NewNotFoundError("Follow", username)
	}
	middleware.FollowChanges.WithLabelValues("unfollow").Inc()
	return author, nil
}
