package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"postboard/internal/forms"
	"postboard/internal/logger"
	"postboard/internal/repository"
	"postboard/internal/services"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	groups *services.GroupService
	posts  *services.PostService
	log    *logger.Logger
}

func NewGroupHandler(groups *services.GroupService, posts *services.PostService, log *logger.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, posts: posts, log: log}
}

// Posts 小组页面, 组内帖子按时间倒序
func (h *GroupHandler) Posts(c *gin.Context) {
	ctx := c.Request.Context()
	group, err := h.groups.GetBySlug(ctx, c.Param("slug"))
	if errors.Is(err, repository.ErrNotFound) {
		NotFound(c)
		return
	}
	if err != nil {
		ServerError(c, h.log, "groups", err)
		return
	}

	feed, err := h.posts.GroupFeed(ctx, group, c.Query("page"))
	if err != nil {
		ServerError(c, h.log, "groups", err)
		return
	}
	Render(c, http.StatusOK, "groups/group.html", gin.H{
		"Title": group.Title,
		"Group": group,
		"Posts": feed.Posts,
		"Page":  feed.Page,
	})
}

func (h *GroupHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "groups/create.html", gin.H{
		"Title": "New group",
		"Form":  &forms.GroupForm{},
	})
}

func (h *GroupHandler) Create(c *gin.Context) {
	var form forms.GroupForm
	if !bindForm(c, h.log, "groups", &form) {
		return
	}

	group, err := h.groups.Create(c.Request.Context(), &form)
	if errs, ok := fieldErrors(err); ok {
		Render(c, http.StatusOK, "groups/create.html", gin.H{
			"Title":  "New group",
			"Form":   &form,
			"Errors": errs,
		})
		return
	}
	if err != nil {
		ServerError(c, h.log, "groups", err)
		return
	}
	c.Redirect(http.StatusFound, "/group/"+url.PathEscape(group.Slug)+"/")
}
