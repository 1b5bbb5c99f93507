package middleware

import (
	"net/http"
	"net/url"

	"postboard/internal/models"
	"postboard/internal/repository"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	CheckUserKey = "user"
	SessionKey   = "user_id"
	LoginPath    = "/auth/login/"
)

// LoadUser retrieves user from session and sets to context
func LoadUser(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if id, ok := session.Get(SessionKey).(uint); ok {
			user, err := users.GetByID(c.Request.Context(), id)
			if err == nil {
				c.Set(CheckUserKey, user)
			} else {
				// 用户已不存在, 清理会话
				session.Delete(SessionKey)
				_ = session.Save()
			}
		}
		c.Next()
	}
}

// AuthRequired sends anonymous visitors to the login page, remembering where
// they were going.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the logged-in user or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func LoginURL(next string) string {
	if next == "" {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{"next": {next}}.Encode()
}
