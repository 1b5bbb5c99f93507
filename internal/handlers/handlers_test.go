package handlers_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"postboard/internal/config"
	"postboard/internal/db/dbtest"
	"postboard/internal/logger"
	"postboard/internal/models"
	"postboard/internal/repository"
	"postboard/internal/router"
	"postboard/internal/storage"
	"postboard/internal/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testPassword = "password123"

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x21, 0xf9,
	0x04, 0x01, 0x0a, 0x00, 0x01, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x4c, 0x01, 0x00, 0x3b,
}

func init() {
	gin.SetMode(gin.TestMode)
}

type app struct {
	srv   *httptest.Server
	repos *repository.Repositories
	cache *utils.Cache
	store *storage.LocalStore
}

func newApp(t *testing.T) *app {
	t.Helper()
	conn := dbtest.New(t)
	store, err := storage.NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)
	cache, err := utils.NewCache(100)
	require.NoError(t, err)

	cfg := &config.Config{
		SessionSecret: "test-secret",
		PostsPerPage:  10,
		IndexCacheTTL: 20 * time.Second,
		CacheSize:     100,
		Storage: config.Storage{
			Backend:       "local",
			MediaURL:      "/media/",
			MaxUploadSize: 1 << 20,
		},
	}
	engine, err := router.New(router.Deps{
		Config: cfg,
		DB:     conn,
		Images: store,
		Cache:  cache,
		Logger: logger.NewWithWriter(io.Discard),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return &app{srv: srv, repos: repository.New(conn), cache: cache, store: store}
}

func (a *app) user(t *testing.T, username string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(testPassword)
	require.NoError(t, err)
	u := &models.User{Username: username, Password: hash}
	require.NoError(t, a.repos.Users.Create(context.Background(), u))
	return u
}

func (a *app) group(t *testing.T, slug string) *models.Group {
	t.Helper()
	g := &models.Group{Title: "Group " + slug, Slug: slug}
	require.NoError(t, a.repos.Groups.Create(context.Background(), g))
	return g
}

var seedClock = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func (a *app) post(t *testing.T, author *models.User, text string, group *models.Group) *models.Post {
	t.Helper()
	seedClock = seedClock.Add(time.Minute)
	p := &models.Post{Text: text, AuthorID: author.ID, PubDate: seedClock}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(t, a.repos.Posts.Create(context.Background(), p))
	p.Author = *author
	return p
}

func (a *app) countPosts(t *testing.T) int64 {
	t.Helper()
	n, err := a.repos.Posts.Count(context.Background(), repository.PostFilter{})
	require.NoError(t, err)
	return n
}

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func (a *app) client(t *testing.T) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{
		t:    t,
		base: a.srv.URL,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type page struct {
	Code     int
	Location string
	Body     string
	Doc      *goquery.Document
}

func (c *client) do(req *http.Request) *page {
	c.t.Helper()
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	require.NoError(c.t, err)
	return &page{
		Code:     resp.StatusCode,
		Location: resp.Header.Get("Location"),
		Body:     string(body),
		Doc:      doc,
	}
}

func (c *client) get(path string) *page {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.base+path, nil)
	require.NoError(c.t, err)
	return c.do(req)
}

func (c *client) post(path string, form url.Values) *page {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postRaw(path, body string) *page {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.base+path, strings.NewReader(body))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postFile(path string, fields map[string]string, filename string, data []byte) *page {
	c.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(c.t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("image", filename)
		require.NoError(c.t, err)
		_, err = fw.Write(data)
		require.NoError(c.t, err)
	}
	require.NoError(c.t, w.Close())

	req, err := http.NewRequest(http.MethodPost, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

func (c *client) login(username string) {
	c.t.Helper()
	p := c.post("/auth/login/", url.Values{"username": {username}, "password": {testPassword}})
	require.Equal(c.t, http.StatusFound, p.Code, "login failed: %s", p.Body)
}

func postPath(p *models.Post) string {
	return "/" + p.Author.Username + "/" + strconv.FormatUint(uint64(p.ID), 10) + "/"
}

func postTexts(p *page) []string {
	var texts []string
	p.Doc.Find("article.post .post-text").Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(s.Text()))
	})
	return texts
}

func commentOn(p *models.Post, author *models.User, text string) *models.Comment {
	return &models.Comment{PostID: p.ID, AuthorID: author.ID, Text: text}
}
