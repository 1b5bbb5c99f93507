package handlers

import (
	"errors"
	"net/http"

	"postboard/internal/logger"
	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/repository"
	"postboard/internal/services"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	auth    *services.AuthService
	posts   *services.PostService
	follows *services.FollowService
	log     *logger.Logger
}

func NewProfileHandler(auth *services.AuthService, posts *services.PostService, follows *services.FollowService, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{auth: auth, posts: posts, follows: follows, log: log}
}

func (h *ProfileHandler) loadAuthor(c *gin.Context) *models.User {
	author, err := h.auth.GetByUsername(c.Request.Context(), c.Param("username"))
	if errors.Is(err, repository.ErrNotFound) {
		NotFound(c)
		return nil
	}
	if err != nil {
		ServerError(c, h.log, "profile", err)
		return nil
	}
	return author
}

// Profile 用户主页: 个人信息与帖子列表
func (h *ProfileHandler) Profile(c *gin.Context) {
	author := h.loadAuthor(c)
	if author == nil {
		return
	}
	ctx := c.Request.Context()

	feed, err := h.posts.AuthorFeed(ctx, author, c.Query("page"))
	if err != nil {
		ServerError(c, h.log, "profile", err)
		return
	}
	stats, err := h.follows.Stats(ctx, author)
	if err != nil {
		ServerError(c, h.log, "profile", err)
		return
	}
	following, err := h.follows.IsFollowing(ctx, middleware.CurrentUser(c), author)
	if err != nil {
		ServerError(c, h.log, "profile", err)
		return
	}

	Render(c, http.StatusOK, "users/profile.html", gin.H{
		"Title":     author.DisplayName(),
		"Author":    author,
		"Posts":     feed.Posts,
		"Page":      feed.Page,
		"PostCount": feed.Page.Total,
		"Stats":     stats,
		"Following": following,
	})
}

func (h *ProfileHandler) Follow(c *gin.Context) {
	author := h.loadAuthor(c)
	if author == nil {
		return
	}
	if err := h.follows.Follow(c.Request.Context(), middleware.CurrentUser(c), author); err != nil {
		ServerError(c, h.log, "profile", err)
		return
	}
	c.Redirect(http.StatusFound, ProfileURL(author.Username))
}

func (h *ProfileHandler) Unfollow(c *gin.Context) {
	author := h.loadAuthor(c)
	if author == nil {
		return
	}
	if err := h.follows.Unfollow(c.Request.Context(), middleware.CurrentUser(c), author); err != nil {
		ServerError(c, h.log, "profile", err)
		return
	}
	c.Redirect(http.StatusFound, ProfileURL(author.Username))
}
