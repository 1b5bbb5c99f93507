package router

import (
	"fmt"
	"net/http"
	"strings"

	"postboard/internal/config"
	"postboard/internal/handlers"
	"postboard/internal/logger"
	"postboard/internal/middleware"
	"postboard/internal/repository"
	"postboard/internal/services"
	"postboard/internal/storage"
	"postboard/internal/utils"
	"postboard/web"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const sessionName = "postboard_session"

// Deps are the long-lived collaborators the HTTP layer is built from.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Images storage.ImageStore
	Cache  *utils.Cache
	Logger *logger.Logger
}

// New assembles the gin engine: middleware, templates and routes.
func New(d Deps) (*gin.Engine, error) {
	cfg := d.Config
	r := gin.New()
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(gin.CustomRecovery(func(c *gin.Context, rec any) {
		handlers.ServerError(c, d.Logger, "router", fmt.Errorf("panic: %v", rec))
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.MaxMultipartMemory = cfg.Storage.MaxUploadSize + 1<<20

	// Setup Sessions
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	renderer, err := LoadTemplates(web.Templates, d.Images)
	if err != nil {
		return nil, err
	}
	r.HTMLRender = renderer

	if local, ok := d.Images.(*storage.LocalStore); ok {
		r.Static(strings.TrimSuffix(cfg.Storage.MediaURL, "/"), local.Root())
	}

	repos := repository.New(d.DB)
	r.Use(middleware.LoadUser(repos.Users))

	postService := services.NewPostService(repos, d.Images, cfg.PostsPerPage, cfg.Storage.MaxUploadSize, d.Logger)
	commentService := services.NewCommentService(repos)
	groupService := services.NewGroupService(repos)
	followService := services.NewFollowService(repos)
	authService := services.NewAuthService(repos)

	registerRoutes(r, routeHandlers{
		auth:    handlers.NewAuthHandler(authService, services.NewCaptchaService(), d.Logger),
		posts:   handlers.NewPostHandler(postService, commentService, groupService, followService, d.Logger),
		groups:  handlers.NewGroupHandler(groupService, postService, d.Logger),
		profile: handlers.NewProfileHandler(authService, postService, followService, d.Logger),
		index:   middleware.CachePage(d.Cache, cfg.IndexCacheTTL),
	})
	r.NoRoute(handlers.NotFound)
	return r, nil
}

type routeHandlers struct {
	auth    *handlers.AuthHandler
	posts   *handlers.PostHandler
	groups  *handlers.GroupHandler
	profile *handlers.ProfileHandler
	index   gin.HandlerFunc
}

func registerRoutes(r *gin.Engine, h routeHandlers) {
	// 公共路由 (Public Routes)
	r.GET("/", h.index, h.posts.Index)            // 首页, 带整页缓存
	r.GET("/group/:slug/", h.groups.Posts)        // 小组帖子
	r.GET("/:username/", h.profile.Profile)       // 用户主页
	r.GET("/:username/:post_id/", h.posts.Detail) // 帖子详情

	auth := r.Group("/auth")
	{
		auth.GET("/signup/", h.auth.ShowSignup)
		auth.POST("/signup/", h.auth.Signup)
		auth.GET("/login/", h.auth.ShowLogin)
		auth.POST("/login/", h.auth.Login)
		auth.GET("/logout/", h.auth.Logout)
		auth.POST("/logout/", h.auth.Logout)
	}

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/new/", h.posts.ShowCreate)
		authorized.POST("/new/", h.posts.Create)
		authorized.GET("/group/new/", h.groups.ShowCreate)
		authorized.POST("/group/new/", h.groups.Create)
		authorized.GET("/follow/", h.posts.FollowIndex)

		authorized.GET("/:username/follow/", h.profile.Follow)
		authorized.POST("/:username/follow/", h.profile.Follow)
		authorized.GET("/:username/unfollow/", h.profile.Unfollow)
		authorized.POST("/:username/unfollow/", h.profile.Unfollow)

		authorized.GET("/:username/:post_id/edit/", h.posts.ShowEdit)
		authorized.POST("/:username/:post_id/edit/", h.posts.Update)
		authorized.GET("/:username/:post_id/delete/", h.posts.ConfirmDelete)
		authorized.POST("/:username/:post_id/delete/", h.posts.Delete)
		authorized.POST("/:username/:post_id/comment/", h.posts.AddComment)
	}
}
