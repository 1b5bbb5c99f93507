package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"postboard/internal/forms"
	"postboard/internal/logger"
	"postboard/internal/middleware"
	"postboard/internal/models"

	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path
	obj["Year"] = time.Now().Year()

	c.HTML(code, name, obj)
}

// NotFound renders the 404 page.
func NotFound(c *gin.Context) {
	Render(c, http.StatusNotFound, "misc/404.html", gin.H{"Path": c.Request.URL.Path})
}

// ServerError logs err and renders the 500 page.
func ServerError(c *gin.Context, log *logger.Logger, module string, err error) {
	log.Error(module, c.Request.Method+" "+c.Request.URL.Path, err)
	Render(c, http.StatusInternalServerError, "misc/500.html", nil)
	c.Abort()
}

// bindForm fills form from the request body. A body that cannot be parsed is
// logged and answered with the 400 page, and bindForm reports false.
func bindForm(c *gin.Context, log *logger.Logger, module string, form any) bool {
	if err := c.ShouldBind(form); err != nil {
		BadRequest(c, log, module, err)
		return false
	}
	return true
}

func BadRequest(c *gin.Context, log *logger.Logger, module string, err error) {
	log.Error(module, "Bad form body for "+c.Request.Method+" "+c.Request.URL.Path, err)
	Render(c, http.StatusBadRequest, "misc/400.html", nil)
	c.Abort()
}

// fieldErrors unwraps a form validation failure. ok is false for any other error.
func fieldErrors(err error) (map[string]string, bool) {
	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}

// PostURL is the canonical address of a post page.
func PostURL(post *models.Post) string {
	return "/" + url.PathEscape(post.Author.Username) + "/" + strconv.FormatUint(uint64(post.ID), 10) + "/"
}

func ProfileURL(username string) string {
	return "/" + url.PathEscape(username) + "/"
}

// safeNext keeps only local redirect targets.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
