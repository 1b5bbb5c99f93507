package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"postboard/internal/forms"
	"postboard/internal/models"
	"postboard/internal/repository"
)

// reservedSlugs would shadow fixed routes under /group/.
var reservedSlugs = map[string]bool{
	"new": true,
}

type GroupService struct {
	repos *repository.Repositories
}

func NewGroupService(repos *repository.Repositories) *GroupService {
	return &GroupService{repos: repos}
}

func (s *GroupService) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return s.repos.Groups.GetBySlug(ctx, slug)
}

func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	return s.repos.Groups.List(ctx)
}

// Create validates the form and stores a new group. A taken slug is a field
// error whether it is caught by the lookup or by the unique index.
func (s *GroupService) Create(ctx context.Context, form *forms.GroupForm) (*models.Group, error) {
	if err := forms.Validate(form); err != nil {
		return nil, err
	}

	if reservedSlugs[strings.ToLower(form.Slug)] {
		return nil, forms.NewValidationError("slug", forms.SlugTakenMessage)
	}
	taken, err := s.repos.Groups.SlugExists(ctx, form.Slug)
	if err != nil {
		return nil, fmt.Errorf("check slug: %w", err)
	}
	if taken {
		return nil, forms.NewValidationError("slug", forms.SlugTakenMessage)
	}

	group := &models.Group{
		Title:       form.Title,
		Slug:        form.Slug,
		Description: form.Description,
	}
	if err := s.repos.Groups.Create(ctx, group); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, forms.NewValidationError("slug", forms.SlugTakenMessage)
		}
		return nil, fmt.Errorf("create group: %w", err)
	}
	return group, nil
}
