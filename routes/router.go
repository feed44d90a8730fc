package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/controllers"
	"github.com/cppla/blogicum/middleware"
	"github.com/cppla/blogicum/utils"
)

// SetupRouter wires routes, middlewares, and controllers. now is the clock used
// for publication checks; nil means time.Now.
func SetupRouter(db *gorm.DB, now func() time.Time) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	// Access log goes to its own rolling file; fall back to the app logger.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err != nil {
		gl = utils.Logger
	}
	r.Use(utils.Ginzap(gl, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(gl, false))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.PageViewRecorder(db))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	postController := controllers.NewPostController(db, now)
	catalogController := controllers.NewCatalogController(db)
	statsController := controllers.NewStatsController(db, now)
	pagesController := controllers.NewPagesController()

	limiter := middleware.NewIPRateLimiter(cfg.RateLimitPerMinute)

	// Public reads; a valid token lets owners see their hidden posts.
	public := r.Group("")
	public.Use(middleware.OptionalAuth())
	public.GET("/", postController.ListPosts)
	public.GET("/category/:slug", postController.CategoryPosts)
	public.GET("/profile/:username", postController.Profile)
	public.GET(middleware.PostDetailRoute, postController.GetPost)
	public.GET("/posts/:id/stats", statsController.GetPostStats)

	r.GET("/users/:username", authController.GetUserPublicByUsername)
	r.GET("/categories", catalogController.ListCategories)
	r.GET("/locations", catalogController.ListLocations)
	r.GET("/stats", statsController.GetStats)
	r.GET("/pages/about", pagesController.About)
	r.GET("/pages/rules", pagesController.Rules)

	authGroup := r.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(limiter))
	authGroup.POST("/registration", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	protected := r.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware(limiter))
	protected.PATCH("/edit_profile", authController.UpdateProfile)
	protected.POST("/post/create", postController.CreatePost)
	protected.GET("/posts/:id/edit", postController.EditPost)
	protected.PUT("/posts/:id/edit", postController.UpdatePost)
	protected.PATCH("/posts/:id/edit", postController.UpdatePost)
	protected.DELETE("/posts/:id/delete", postController.DeletePost)
	protected.POST("/posts/:id/comment", postController.CreateComment)
	protected.PATCH("/posts/:id/edit_comment/:comment_id", postController.UpdateComment)
	protected.DELETE("/posts/:id/delete_comment/:comment_id", postController.DeleteComment)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
