package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"postboard/internal/logger"
	"postboard/internal/models"
	"postboard/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func withUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			c.Set(CheckUserKey, user)
		}
		c.Next()
	}
}

func TestAuthRequiredRedirectsWithNext(t *testing.T) {
	r := gin.New()
	r.GET("/new/", withUser(nil), AuthRequired(), func(c *gin.Context) { c.String(http.StatusOK, "form") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/new/?x=1", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=%2Fnew%2F%3Fx%3D1", w.Header().Get("Location"))
}

func TestAuthRequiredLetsUsersThrough(t *testing.T) {
	r := gin.New()
	r.GET("/new/", withUser(&models.User{ID: 1, Username: "leo"}), AuthRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Username)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/new/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "leo", w.Body.String())
}

func TestCachePage(t *testing.T) {
	cache, err := utils.NewCache(10)
	require.NoError(t, err)

	var user *models.User
	body := "v1"
	calls := 0
	r := gin.New()
	r.Use(func(c *gin.Context) { withUser(user)(c) })
	r.GET("/", CachePage(cache, time.Minute), func(c *gin.Context) {
		calls++
		c.String(http.StatusOK, body)
	})
	get := func(uri string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, uri, nil))
		return w
	}

	assert.Equal(t, "v1", get("/").Body.String())
	body = "v2"
	w := get("/")
	assert.Equal(t, "v1", w.Body.String())
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, 1, calls)

	// other query strings and other viewers get their own entries
	assert.Equal(t, "v2", get("/?page=2").Body.String())
	user = &models.User{ID: 7}
	assert.Equal(t, "v2", get("/").Body.String())

	cache.Purge()
	user = nil
	assert.Equal(t, "v2", get("/").Body.String())
}

func TestCachePageSkipsErrors(t *testing.T) {
	cache, err := utils.NewCache(10)
	require.NoError(t, err)
	r := gin.New()
	r.GET("/", CachePage(cache, time.Minute), func(c *gin.Context) {
		c.String(http.StatusInternalServerError, "boom")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 0, cache.Len())
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "/auth/login/", LoginURL(""))
	assert.Equal(t, "/auth/login/?next=%2Ffollow%2F", LoginURL("/follow/"))
}

func TestRequestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(logger.NewWithWriter(&buf)))
	r.GET("/search/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search/?q=leo@example.com", nil))
	require.Equal(t, http.StatusOK, w.Code)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry logger.LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, logger.InfoLevel, entry.Level)
	assert.Equal(t, "http", entry.Module)
	assert.Contains(t, entry.Message, "GET /search/?q=[REDACTED_EMAIL] 200")
	assert.NotContains(t, entry.Message, "leo@example.com")
}
