package services

import (
	"context"
	"fmt"

	"postboard/internal/models"
	"postboard/internal/repository"
)

type FollowService struct {
	repos *repository.Repositories
}

func NewFollowService(repos *repository.Repositories) *FollowService {
	return &FollowService{repos: repos}
}

// Follow makes follower follow author. Following yourself, or someone you
// already follow, silently does nothing.
func (s *FollowService) Follow(ctx context.Context, follower, author *models.User) error {
	if follower.ID == author.ID {
		return nil
	}
	if err := s.repos.Follows.Create(ctx, follower.ID, author.ID); err != nil {
		return fmt.Errorf("follow: %w", err)
	}
	return nil
}

// Unfollow removes the edge if it exists.
func (s *FollowService) Unfollow(ctx context.Context, follower, author *models.User) error {
	if err := s.repos.Follows.Delete(ctx, follower.ID, author.ID); err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}
	return nil
}

// IsFollowing reports whether viewer follows author; anonymous viewers never do.
func (s *FollowService) IsFollowing(ctx context.Context, viewer, author *models.User) (bool, error) {
	if viewer == nil {
		return false, nil
	}
	return s.repos.Follows.Exists(ctx, viewer.ID, author.ID)
}

type FollowStats struct {
	Followers int64
	Following int64
}

func (s *FollowService) Stats(ctx context.Context, user *models.User) (FollowStats, error) {
	var stats FollowStats
	var err error
	if stats.Followers, err = s.repos.Follows.CountFollowers(ctx, user.ID); err != nil {
		return stats, err
	}
	if stats.Following, err = s.repos.Follows.CountFollowing(ctx, user.ID); err != nil {
		return stats, err
	}
	return stats, nil
}
