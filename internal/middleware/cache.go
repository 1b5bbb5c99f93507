package middleware

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"postboard/internal/utils"

	"github.com/gin-gonic/gin"
)

type cachedPage struct {
	contentType string
	body        []byte
}

// bodyWriter copies everything written to the response into a buffer.
type bodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage serves whole GET responses from cache for ttl. Entries are keyed
// by viewer and request URI and are not invalidated on writes, so new content
// shows up only after the entry expires.
func CachePage(cache *utils.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := pageCacheKey(c)
		if page, ok := cache.Get(key).(*cachedPage); ok {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, page.contentType, page.body)
			c.Abort()
			return
		}

		w := &bodyWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w
		c.Next()

		if w.Status() == http.StatusOK && !c.IsAborted() {
			cache.Set(key, &cachedPage{
				contentType: w.Header().Get("Content-Type"),
				body:        w.body.Bytes(),
			}, ttl)
		}
	}
}

func pageCacheKey(c *gin.Context) string {
	viewer := "anon"
	if user := CurrentUser(c); user != nil {
		viewer = strconv.FormatUint(uint64(user.ID), 10)
	}
	return "page:" + viewer + ":" + c.Request.URL.RequestURI()
}
