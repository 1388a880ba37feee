package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/goodkarma/goodkarma/config"
	"github.com/goodkarma/goodkarma/controllers"
	"github.com/goodkarma/goodkarma/middleware"
	"github.com/goodkarma/goodkarma/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, coach controllers.AdviceService) *gin.Engine {
	// Load config and set Gin mode from configuration
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
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	postController := controllers.NewPostController(db)
	statsController := controllers.NewStatsController(db)
	coachingController := controllers.NewCoachingController(db, coach)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public feed, post detail, likes and comments
	api.GET("/feed", postController.ListFeed)
	api.GET("/feed/:id", postController.GetPost)
	api.GET("/posts/:id", postController.GetPost)
	api.GET("/posts/:id/likes", middleware.AuthOptional(), postController.GetLikes)
	api.GET("/posts/:id/comments", postController.ListComments)
	api.GET("/posts/:id/comments/count", postController.GetCommentCount)

	// Public user profile
	api.GET("/users/:id", authController.GetUserPublic)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.GET("/users/me/posts", postController.ListMyPosts)

	protected.POST("/posts/:id/likes", postController.LikePost)
	protected.DELETE("/posts/:id/likes", postController.UnlikePost)

	protected.POST("/posts/:id/comments", postController.CreateComment)
	protected.PUT("/comments/:commentId", postController.UpdateComment)
	protected.DELETE("/comments/:commentId", postController.DeleteComment)

	protected.GET("/users/:id/karma-stats", statsController.GetKarmaStats)

	protected.GET("/users/:id/coaching", coachingController.GetCoaching)
	protected.POST("/users/:id/coaching", coachingController.UpsertCoaching)
	protected.GET("/users/:id/coaching/api-status", coachingController.GetAPIStatus)
	protected.POST("/users/:id/coaching/advice", coachingController.RequestAdvice)
	protected.GET("/users/:id/coaching/progress", coachingController.GetProgress)
	protected.POST("/users/:id/coaching/progress", coachingController.UpdateProgress)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
