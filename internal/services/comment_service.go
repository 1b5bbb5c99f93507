package services

import (
	"context"
	"fmt"

	"postboard/internal/forms"
	"postboard/internal/models"
	"postboard/internal/repository"
)

type CommentService struct {
	repos *repository.Repositories
}

func NewCommentService(repos *repository.Repositories) *CommentService {
	return &CommentService{repos: repos}
}

func (s *CommentService) List(ctx context.Context, post *models.Post) ([]models.Comment, error) {
	return s.repos.Comments.ListByPost(ctx, post.ID)
}

func (s *CommentService) Create(ctx context.Context, post *models.Post, author *models.User, form *forms.CommentForm) (*models.Comment, error) {
	if err := forms.Validate(form); err != nil {
		return nil, err
	}
	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Text:     form.Text,
	}
	if err := s.repos.Comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	comment.Author = *author
	return comment, nil
}
