package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"postboard/internal/forms"
	"postboard/internal/models"
	"postboard/internal/repository"
	"postboard/internal/utils"
)

var ErrInvalidCredentials = errors.New(forms.LoginMessage)

// reservedUsernames collide with top-level routes.
var reservedUsernames = map[string]bool{
	"new":    true,
	"follow": true,
	"group":  true,
	"auth":   true,
	"media":  true,
}

type AuthService struct {
	repos *repository.Repositories
}

func NewAuthService(repos *repository.Repositories) *AuthService {
	return &AuthService{repos: repos}
}

// Register creates an account from a signup form. The captcha field is
// checked by the handler, which owns the session.
func (s *AuthService) Register(ctx context.Context, form *forms.SignupForm) (*models.User, error) {
	if err := forms.Validate(form); err != nil {
		return nil, err
	}

	if reservedUsernames[strings.ToLower(form.Username)] {
		return nil, forms.NewValidationError("username", forms.UsernameTakenMessage)
	}
	taken, err := s.repos.Users.UsernameExists(ctx, form.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, forms.NewValidationError("username", forms.UsernameTakenMessage)
	}

	hash, err := utils.HashPassword(form.Password1)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Username:  form.Username,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Password:  hash,
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, forms.NewValidationError("username", forms.UsernameTakenMessage)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate checks a login form against the stored password hash.
func (s *AuthService) Authenticate(ctx context.Context, form *forms.LoginForm) (*models.User, error) {
	if err := forms.Validate(form); err != nil {
		return nil, err
	}
	user, err := s.repos.Users.GetByUsername(ctx, form.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(form.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repos.Users.GetByUsername(ctx, username)
}
