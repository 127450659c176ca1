package router

import (
	"net/http"
	"time"

	"Faran/internal/config"
	"Faran/internal/handler"
	"Faran/internal/middleware"
	"Faran/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Services struct {
	Users   *service.UserService
	Follows *service.FollowService
	Feed    *service.FeedService
	Profile *service.ProfileService
	Search  *service.SearchService
	Uploads *service.UploadService
}

// Options UploadsDir 非空时以 /uploads 提供本地存储的文件
type Options struct {
	MaxUploadBytes int64
	AllowedOrigins []string
	UploadsDir     string
}

func NewOptions(cfg *config.Config) Options {
	opts := Options{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if cfg.Storage.Type == "local" {
		opts.UploadsDir = cfg.Storage.Local.Path
	}
	return opts
}

func InitRouter(svcs Services, opts Options, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(log), middleware.Metrics())
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	user := handler.NewUserHandler(svcs.Users)
	follow := handler.NewFollowHandler(svcs.Follows)
	upload := handler.NewUploadHandler(svcs.Uploads)
	social := handler.NewSocialHandler(svcs.Feed, svcs.Profile, svcs.Search)
	auth := middleware.AuthMiddleware(svcs.Users)
	limit := middleware.MaxBodySize(opts.MaxUploadBytes)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(middleware.MetricsHandler()))
	if opts.UploadsDir != "" {
		r.Static("/uploads", opts.UploadsDir)
	}

	api := r.Group("/api")

	// 用户相关接口
	userGroup := api.Group("/user")
	{
		userGroup.POST("/register", limit, user.Register)
		userGroup.POST("/login", user.Login)
		userGroup.POST("/logout", auth, user.Logout)
	}

	// token相关接口
	api.POST("/token/refresh", user.TokenRefresh)

	// 登录态接口
	authGroup := api.Group("")
	authGroup.Use(auth)
	{
		authGroup.GET("/me", user.Me)
		authGroup.GET("/feed", social.Feed)
		authGroup.GET("/profile/:username", social.Profile)
		authGroup.GET("/search", social.Search)
		authGroup.POST("/post/upload", limit, upload.CreatePost)
	}

	// 用户关注相关接口
	followGroup := api.Group("")
	followGroup.Use(auth)
	{
		followGroup.POST("/follow/:username", follow.Follow)
		followGroup.POST("/unfollow/:username", follow.Unfollow)
		followGroup.GET("/follow/:username/followers", follow.ListFollowers)
		followGroup.GET("/follow/:username/followings", follow.ListFollowings)
	}

	return r
}
