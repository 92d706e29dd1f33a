package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cppla/commentbox/config"
	"github.com/cppla/commentbox/controllers"
	"github.com/cppla/commentbox/middleware"
	"github.com/cppla/commentbox/services"
	"github.com/cppla/commentbox/utils"
)

// Dependencies are the long-lived components the router wires into handlers.
type Dependencies struct {
	Config      config.AppConfig
	Logger      *zap.Logger
	AccessLog   *zap.Logger // nil falls back to Logger
	Tokens      *utils.TokenService
	Credentials *services.CredentialStore
	Gate        *services.AuthGate
	Comments    *services.CommentService
	Registry    *prometheus.Registry // nil disables /metrics
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	switch strings.ToLower(cfg.Gin.Mode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	accessLog := deps.AccessLog
	if accessLog == nil {
		accessLog = logger
	}

	r := gin.New()
	r.Use(utils.Ginzap(accessLog, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(logger, false))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if deps.Registry != nil {
		r.Use(middleware.NewMetrics(deps.Registry).Handler())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	r.GET("/", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "ok")
	})
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	cookie := middleware.NewSessionCookie(cfg.Auth)
	authRequired := middleware.AuthRequired(deps.Gate, deps.Tokens, cookie, logger)

	authController := controllers.NewAuthController(deps.Credentials, deps.Gate, deps.Tokens, cookie, logger)
	commentController := controllers.NewCommentController(deps.Comments, logger)

	r.POST("/register", authController.Register)
	r.POST("/login", authController.Login)
	r.POST("/logout", authController.Logout)
	r.GET("/user", authRequired, authController.Me)

	comments := r.Group("/comments")
	comments.GET("", commentController.ListRoots)
	comments.GET("/root/:rootId", commentController.ListByRoot)
	comments.GET("/:id", commentController.GetComment)
	comments.POST("", authRequired, commentController.CreateComment)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
