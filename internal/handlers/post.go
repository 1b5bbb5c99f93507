package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"postboard/internal/forms"
	"postboard/internal/logger"
	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/repository"
	"postboard/internal/services"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts    *services.PostService
	comments *services.CommentService
	groups   *services.GroupService
	follows  *services.FollowService
	log      *logger.Logger
}

func NewPostHandler(posts *services.PostService, comments *services.CommentService, groups *services.GroupService, follows *services.FollowService, log *logger.Logger) *PostHandler {
	return &PostHandler{
		posts:    posts,
		comments: comments,
		groups:   groups,
		follows:  follows,
		log:      log,
	}
}

// Index 首页, 全部帖子按时间倒序
func (h *PostHandler) Index(c *gin.Context) {
	feed, err := h.posts.HomeFeed(c.Request.Context(), c.Query("page"))
	if err != nil {
		ServerError(c, h.log, "posts", err)
		return
	}
	Render(c, http.StatusOK, "posts/index.html", gin.H{
		"Title": "Latest posts",
		"Posts": feed.Posts,
		"Page":  feed.Page,
	})
}

// FollowIndex lists posts by the authors the current user follows.
func (h *PostHandler) FollowIndex(c *gin.Context) {
	user := middleware.CurrentUser(c)
	feed, err := h.posts.FollowFeed(c.Request.Context(), user, c.Query("page"))
	if err != nil {
		ServerError(c, h.log, "posts", err)
		return
	}
	Render(c, http.StatusOK, "posts/follow.html", gin.H{
		"Title": "Posts by authors you follow",
		"Posts": feed.Posts,
		"Page":  feed.Page,
	})
}

// loadPost resolves /:username/:post_id/. It renders the error page itself
// and returns nil when the post cannot be shown.
func (h *PostHandler) loadPost(c *gin.Context) *models.Post {
	id, ok := parseID(c.Param("post_id"))
	if !ok {
		NotFound(c)
		return nil
	}
	post, err := h.posts.Get(c.Request.Context(), c.Param("username"), id)
	if errors.Is(err, repository.ErrNotFound) {
		NotFound(c)
		return nil
	}
	if err != nil {
		ServerError(c, h.log, "posts", err)
		return nil
	}
	return post
}

func (h *PostHandler) renderDetail(c *gin.Context, post *models.Post, form *forms.CommentForm, errs map[string]string) {
	ctx := c.Request.Context()
	comments, err := h.comments.List(ctx, post)
	if err != nil {
		ServerError(c, h.log, "posts", err)
		return
	}
	postCount, err := h.posts.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		ServerError(c, h.log, "posts", err)
		return
	}
	following, err := h.follows.IsFollowing(ctx, middleware.CurrentUser(c), &post.Author)
	if err != nil {
		ServerError(c, h.log, "posts", err)
		return
	}
	if form == nil {
		form = &forms.CommentForm{}
	}
	Render(c, http.StatusOK, "posts/detail.html", gin.H{
		"Post":      post,
		"Author":    &post.Author,
		"Comments":  comments,
		"PostCount": postCount,
		"Following": following,
		"Form":      form,
		"Errors":    errs,
	})
}

func (h *PostHandler) Detail(c *gin.Context) {
	post := h.loadPost(c)
	if post == nil {
		return
	}
	h.renderDetail(c, post, nil, nil)
}

func (h *PostHandler) AddComment(c *gin.Context) {
	post := h.loadPost(c)
	if post == nil {
		return
	}
	var form forms.CommentForm
	if !bindForm(c, h.log, "posts", &form) {
		return
	}

	_, err := h.comments.Create(c.Request.Context(), post, middleware.CurrentUser(c), &form)
	if errs, ok := fieldErrors(err); ok {
		h.renderDetail(c, post, &form, errs)
		return
	}
	if err != nil {
		ServerError(c, h.log, "posts", err)
		return
	}
	c.Redirect(http.StatusFound, PostURL(post))
}

// bindPostForm reads the post form including the optional image upload.
func bindPostForm(c *gin.Context) (*forms.PostForm, error) {
	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	form := &forms.PostForm{
		Text:       c.PostForm("text"),
		Group:      c.PostForm("group"),
		ClearImage: c.PostForm("image-clear") != "",
	}
	fh, err := c.FormFile("image")
	switch {
	case err == nil:
		form.Image = fh
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return nil, err
	}
	return form, nil
}

func (h *PostHandler) renderForm(c *gin.Context, form *forms.PostForm, errs map[string]string, post *models.Post) {
	groups, err := h.groups.List(c.Request.Context())
	if err != nil {
		ServerError(c, h.log, "posts", err)
		return
	}
	title := "New post"
	if post != nil {
		title = "Edit post"
	}
	Render(c, http.StatusOK, "posts/create.html", gin.H{
		"Title":  title,
		"Form":   form,
		"Errors": errs,
		"Groups": groups,
		"Post":   post,
		"IsEdit": post != nil,
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	h.renderForm(c, &forms.PostForm{}, nil, nil)
}

func (h *PostHandler) Create(c *gin.Context) {
	form, err := bindPostForm(c)
	if err != nil {
		BadRequest(c, h.log, "posts", err)
		return
	}

	_, err = h.posts.Create(c.Request.Context(), middleware.CurrentUser(c), form)
	if errs, ok := fieldErrors(err); ok {
		h.renderForm(c, form, errs, nil)
		return
	}
	if err != nil {
		ServerError(c, h.log, "posts", err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// authorOnly sends everyone but the author back to the post page.
func authorOnly(c *gin.Context, post *models.Post) bool {
	if user := middleware.CurrentUser(c); user == nil || user.ID != post.AuthorID {
		c.Redirect(http.StatusFound, PostURL(post))
		return false
	}
	return true
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	post := h.loadPost(c)
	if post == nil || !authorOnly(c, post) {
		return
	}
	form := &forms.PostForm{Text: post.Text}
	if post.GroupID != nil {
		form.Group = strconv.FormatUint(uint64(*post.GroupID), 10)
	}
	h.renderForm(c, form, nil, post)
}

func (h *PostHandler) Update(c *gin.Context) {
	post := h.loadPost(c)
	if post == nil || !authorOnly(c, post) {
		return
	}
	form, err := bindPostForm(c)
	if err != nil {
		BadRequest(c, h.log, "posts", err)
		return
	}

	updated, err := h.posts.Update(c.Request.Context(), post, middleware.CurrentUser(c), form)
	switch errs, ok := fieldErrors(err); {
	case ok:
		h.renderForm(c, form, errs, post)
	case errors.Is(err, services.ErrForbidden):
		c.Redirect(http.StatusFound, PostURL(post))
	case err != nil:
		ServerError(c, h.log, "posts", err)
	default:
		c.Redirect(http.StatusFound, PostURL(updated))
	}
}

func (h *PostHandler) ConfirmDelete(c *gin.Context) {
	post := h.loadPost(c)
	if post == nil || !authorOnly(c, post) {
		return
	}
	Render(c, http.StatusOK, "posts/delete_confirm.html", gin.H{
		"Title": "Delete post",
		"Post":  post,
	})
}

func (h *PostHandler) Delete(c *gin.Context) {
	post := h.loadPost(c)
	if post == nil || !authorOnly(c, post) {
		return
	}
	err := h.posts.Delete(c.Request.Context(), post, middleware.CurrentUser(c))
	switch {
	case errors.Is(err, services.ErrForbidden):
		c.Redirect(http.StatusFound, PostURL(post))
		return
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c)
		return
	case err != nil:
		ServerError(c, h.log, "posts", err)
		return
	}
	h.log.Info("posts", "Post "+strconv.FormatUint(uint64(post.ID), 10)+" deleted by "+post.Author.Username)
	Render(c, http.StatusOK, "posts/delete_done.html", gin.H{
		"Title":  "Post deleted",
		"Author": &post.Author,
	})
}
