package cmd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/commentbox/config"
	"github.com/cppla/commentbox/models"
	"github.com/cppla/commentbox/repositories"
	"github.com/cppla/commentbox/routes"
	"github.com/cppla/commentbox/services"
	"github.com/cppla/commentbox/utils"
)

// NewServeCmd runs the HTTP API until SIGINT/SIGTERM.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE:  runServe,
	}
	cmd.Flags().String("port", "", "listen port override")
	cmd.Flags().String("gin-mode", "", "gin mode override (debug, release, test)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := config.OpenDatabase(cfg, logger)
	if err != nil {
		return err
	}
	if *cfg.Database.AutoMigrate {
		if err := config.Migrate(db, models.All()...); err != nil {
			return err
		}
	}

	deps, err := buildDependencies(cfg, db, logger)
	if err != nil {
		return err
	}

	accessLog, err := utils.NewRollingFileLogger(cfg.Gin.LogPath, cfg.Log)
	if err != nil {
		logger.Warn("access log unavailable, using application logger", zap.Error(err))
	} else {
		deps.AccessLog = accessLog
		defer func() { _ = accessLog.Sync() }()
	}

	router := routes.SetupRouter(deps)
	logger.Info("starting server", zap.String("port", cfg.App.Port))
	return utils.NewServer(":"+cfg.App.Port, router, logger).Run(cmd.Context())
}

// buildDependencies constructs every long-lived component once; nothing is
// reachable through package-level state.
func buildDependencies(cfg config.AppConfig, db *gorm.DB, logger *zap.Logger) (routes.Dependencies, error) {
	rc := utils.NewRedisClient(cfg.Redis, logger)

	tokens := utils.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.RefreshWindow)
	credentials, err := services.NewCredentialStore(
		repositories.NewUserRepository(db),
		utils.NewPasswordHasher(cfg.Auth.BcryptCost),
		logger,
	)
	if err != nil {
		return routes.Dependencies{}, err
	}

	var revoked *utils.TokenBlacklist
	if cfg.Auth.RevokeOnLogout {
		revoked = utils.NewTokenBlacklist(rc)
	}
	gate := services.NewAuthGate(tokens, credentials, revoked, logger)

	var opts []services.CommentOption
	if rc != nil {
		opts = append(opts, services.WithCache(utils.NewCache(rc, cfg.Redis.CacheTTL, logger)))
	}
	comments := services.NewCommentService(repositories.NewCommentRepository(db), utils.NewSanitizer(), logger, opts...)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return routes.Dependencies{
		Config:      cfg,
		Logger:      logger,
		Tokens:      tokens,
		Credentials: credentials,
		Gate:        gate,
		Comments:    comments,
		Registry:    registry,
	}, nil
}
