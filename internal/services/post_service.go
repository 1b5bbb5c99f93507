package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"postboard/internal/forms"
	"postboard/internal/logger"
	"postboard/internal/models"
	"postboard/internal/pagination"
	"postboard/internal/repository"
	"postboard/internal/storage"
)

// ErrForbidden is returned when someone other than the author tries to
// change a post.
var ErrForbidden = errors.New("forbidden: requester is not the author")

// Feed is one page of a post listing.
type Feed struct {
	Posts []models.Post
	Page  pagination.Page
}

type PostService struct {
	repos     *repository.Repositories
	images    storage.ImageStore
	perPage   int
	maxUpload int64
	log       *logger.Logger
}

func NewPostService(repos *repository.Repositories, images storage.ImageStore, perPage int, maxUpload int64, log *logger.Logger) *PostService {
	return &PostService{
		repos:     repos,
		images:    images,
		perPage:   perPage,
		maxUpload: maxUpload,
		log:       log,
	}
}

func (s *PostService) feed(ctx context.Context, filter repository.PostFilter, rawPage string) (*Feed, error) {
	total, err := s.repos.Posts.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	page := pagination.New(total, s.perPage, rawPage)
	posts, err := s.repos.Posts.List(ctx, filter, page.PerPage, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return &Feed{Posts: posts, Page: page}, nil
}

// HomeFeed lists every post, newest first.
func (s *PostService) HomeFeed(ctx context.Context, rawPage string) (*Feed, error) {
	return s.feed(ctx, repository.PostFilter{}, rawPage)
}

func (s *PostService) GroupFeed(ctx context.Context, group *models.Group, rawPage string) (*Feed, error) {
	return s.feed(ctx, repository.PostFilter{GroupID: group.ID}, rawPage)
}

func (s *PostService) AuthorFeed(ctx context.Context, author *models.User, rawPage string) (*Feed, error) {
	return s.feed(ctx, repository.PostFilter{AuthorID: author.ID}, rawPage)
}

// FollowFeed lists posts by the authors user follows.
func (s *PostService) FollowFeed(ctx context.Context, user *models.User, rawPage string) (*Feed, error) {
	return s.feed(ctx, repository.PostFilter{FollowerID: user.ID}, rawPage)
}

func (s *PostService) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.repos.Posts.Count(ctx, repository.PostFilter{AuthorID: authorID})
}

// Get loads a post addressed as /{username}/{id}/. A post that exists under a
// different author is reported as not found.
func (s *PostService) Get(ctx context.Context, username string, id uint) (*models.Post, error) {
	post, err := s.repos.Posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Author.Username != username {
		return nil, repository.ErrNotFound
	}
	return post, nil
}

// clean validates the form and resolves its group and image. Errors from all
// fields are collected into one *forms.ValidationError.
func (s *PostService) clean(ctx context.Context, form *forms.PostForm) (*uint, *forms.Image, error) {
	verr := &forms.ValidationError{Fields: map[string]string{}}
	if err := forms.Validate(form); err != nil {
		var fe *forms.ValidationError
		if !errors.As(err, &fe) {
			return nil, nil, err
		}
		verr = fe
	}

	var groupID *uint
	if _, bad := verr.Fields["group"]; !bad && form.Group != "" {
		id, err := strconv.ParseUint(form.Group, 10, 64)
		if err != nil {
			verr.Add("group", forms.InvalidChoiceMessage)
		} else if group, err := s.repos.Groups.GetByID(ctx, uint(id)); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, nil, fmt.Errorf("load group: %w", err)
			}
			verr.Add("group", forms.InvalidChoiceMessage)
		} else {
			groupID = &group.ID
		}
	}

	var img *forms.Image
	if form.Image != nil {
		var err error
		img, err = forms.ReadImage(form.Image, s.maxUpload)
		switch {
		case errors.Is(err, forms.ErrInvalidImage):
			verr.Add("image", forms.InvalidImageMessage)
		case errors.Is(err, forms.ErrImageTooLarge):
			verr.Add("image", forms.ImageTooLargeMessage(s.maxUpload))
		case err != nil:
			return nil, nil, err
		}
	}

	if len(verr.Fields) > 0 {
		return nil, nil, verr
	}
	return groupID, img, nil
}

func (s *PostService) storeImage(ctx context.Context, img *forms.Image) (string, error) {
	name := storage.NewObjectName(img.Ext)
	if err := s.images.Save(ctx, name, img.ContentType, bytes.NewReader(img.Data), int64(len(img.Data))); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return name, nil
}

func (s *PostService) dropImage(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.images.Delete(ctx, name); err != nil {
		s.log.Error("posts", "Failed to delete image "+name, err)
	}
}

// Create publishes a new post by author.
func (s *PostService) Create(ctx context.Context, author *models.User, form *forms.PostForm) (*models.Post, error) {
	groupID, img, err := s.clean(ctx, form)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     form.Text,
		PubDate:  time.Now(),
		AuthorID: author.ID,
		GroupID:  groupID,
	}
	if img != nil {
		if post.Image, err = s.storeImage(ctx, img); err != nil {
			return nil, err
		}
	}

	if err := s.repos.Posts.Create(ctx, post); err != nil {
		s.dropImage(ctx, post.Image)
		return nil, fmt.Errorf("create post: %w", err)
	}
	post.Author = *author
	return post, nil
}

// Update edits post on behalf of requester. The image is replaced when a new
// one is uploaded, removed when ClearImage is set, and kept otherwise.
func (s *PostService) Update(ctx context.Context, post *models.Post, requester *models.User, form *forms.PostForm) (*models.Post, error) {
	if post.AuthorID != requester.ID {
		return nil, ErrForbidden
	}
	groupID, img, err := s.clean(ctx, form)
	if err != nil {
		return nil, err
	}

	oldImage := post.Image
	updated := *post
	updated.Text = form.Text
	updated.GroupID = groupID
	updated.Group = nil
	switch {
	case img != nil:
		if updated.Image, err = s.storeImage(ctx, img); err != nil {
			return nil, err
		}
	case form.ClearImage:
		updated.Image = ""
	}

	if err := s.repos.Posts.Update(ctx, &updated); err != nil {
		if updated.Image != oldImage {
			s.dropImage(ctx, updated.Image)
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	if oldImage != updated.Image {
		s.dropImage(ctx, oldImage)
	}
	return &updated, nil
}

// Delete removes post and its comments on behalf of requester.
func (s *PostService) Delete(ctx context.Context, post *models.Post, requester *models.User) error {
	if post.AuthorID != requester.ID {
		return ErrForbidden
	}
	if err := s.repos.Posts.Delete(ctx, post.ID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	s.dropImage(ctx, post.Image)
	return nil
}
