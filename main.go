package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/storage/memory/v2"
	"github.com/gofiber/storage/redis/v3"
	"github.com/khanghh/ltcms/internal/audit"
	"github.com/khanghh/ltcms/internal/auth"
	"github.com/khanghh/ltcms/internal/common"
	"github.com/khanghh/ltcms/internal/config"
	"github.com/khanghh/ltcms/internal/content"
	"github.com/khanghh/ltcms/internal/handlers/api"
	"github.com/khanghh/ltcms/internal/middlewares"
	"github.com/khanghh/ltcms/internal/secrets"
	"github.com/khanghh/ltcms/internal/tokens"
	"github.com/khanghh/ltcms/internal/users"
	"github.com/khanghh/ltcms/model"
	"github.com/khanghh/ltcms/params"
	goredis "github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "ltcms - content management backend with a hardened auth core"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
		{
			Name:  "gensecret",
			Usage: "Generate a random secret suitable for the jwt, csrf and salt settings",
			Action: func(ctx *cli.Context) error {
				secret, err := common.GenerateSecret(params.JWTSecretMinLength + 5)
				if err != nil {
					return err
				}
				fmt.Println(secret)
				return nil
			},
		},
	}
	app.Action = run
}

func mustInitLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func mustInitDatabase(dbConfig config.MySQLConfig) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dbConfig.Dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: dbConfig.TablePrefix,
		},
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if len(dbConfig.ReplicaDsns) > 0 {
		replicas := make([]gorm.Dialector, 0, len(dbConfig.ReplicaDsns))
		for _, dsn := range dbConfig.ReplicaDsns {
			replicas = append(replicas, mysql.Open(dsn))
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{Replicas: replicas})); err != nil {
			slog.Error("Failed to register database replicas", "error", err)
			os.Exit(1)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Failed to access database pool", "error", err)
		os.Exit(1)
	}
	if dbConfig.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	}
	if dbConfig.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	}
	if dbConfig.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(dbConfig.ConnMaxIdleTime) * time.Second)
	}
	if dbConfig.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Second)
	}

	if err := model.AutoMigrate(db); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}
	return db
}

func mustInitSecrets(cfg config.SecretsConfig) *secrets.Store {
	store, err := secrets.FromConfig(cfg)
	if err != nil {
		slog.Error("Secret validation failed", "error", err)
		os.Exit(1)
	}
	return store
}

// mustInitLimiterStorage prefers redis so limits hold across instances,
// falling back to in-process memory for single-node deployments.
func mustInitLimiterStorage(redisCfg config.RedisConfig) (fiber.Storage, *redis.Storage) {
	if redisCfg.URL == "" {
		slog.Warn("Redis not configured, rate limit state is per process")
		return memory.New(), nil
	}
	storage := redis.New(redis.Config{
		URL:           redisCfg.URL,
		PoolSize:      redisCfg.PoolSize,
		IsClusterMode: redisCfg.ClusterMode,
	})
	return storage, storage
}

func loginBodyLimit(ctx *fiber.Ctx) error {
	if len(ctx.Body()) > params.LoginBodyLimit {
		return fiber.ErrRequestEntityTooLarge
	}
	return ctx.Next()
}

func setupAPIRoutes(
	router fiber.Router,
	limiterStorage fiber.Storage,
	authService *auth.AuthService,
	cookies auth.CookieSettings,
	tutorialRepo content.TutorialRepository,
	pageRepo content.PageRepository,
	postRepo content.PostRepository,
	commentRepo content.CommentRepository,
	siteContentRepo content.SiteContentRepository) {

	// handlers
	var (
		authHandler        = api.NewAuthHandler(authService, cookies)
		tutorialHandler    = api.NewTutorialHandler(tutorialRepo)
		pageHandler        = api.NewPageHandler(pageRepo, postRepo)
		commentHandler     = api.NewCommentHandler(commentRepo, postRepo)
		siteContentHandler = api.NewSiteContentHandler(siteContentRepo)
	)

	// middlewares
	var (
		requireAuth  = middlewares.RequireAuth(authService)
		optionalAuth = middlewares.OptionalAuth(authService)
		requireAdmin = middlewares.RequireRole("admin")
		csrfGuard    = middlewares.CSRFGuard(authService)
		loginLimiter = middlewares.RateLimit(middlewares.RateLimitConfig{
			Max:     params.LoginRateLimitMax,
			Window:  params.LoginRateLimitWindow,
			Storage: limiterStorage,
			Name:    "login",
		})
		adminLimiter = middlewares.RateLimit(middlewares.RateLimitConfig{
			Max:     params.AdminRateLimitMax,
			Window:  params.AdminRateLimitWindow,
			Storage: limiterStorage,
			Name:    "admin",
		})
		publicLimiter = middlewares.RateLimit(middlewares.RateLimitConfig{
			Max:     params.PublicRateLimitMax,
			Window:  params.PublicRateLimitWindow,
			Storage: limiterStorage,
			Name:    "public",
		})
	)
	adminChain := func(handler fiber.Handler) []fiber.Handler {
		return []fiber.Handler{requireAuth, requireAdmin, csrfGuard, adminLimiter, handler}
	}

	router.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusOK)
	})

	// session
	router.Post("/auth/login", loginLimiter, loginBodyLimit, authHandler.PostLogin)
	router.Post("/auth/logout", requireAuth, csrfGuard, authHandler.PostLogout)
	router.Get("/auth/me", requireAuth, authHandler.GetMe)

	// public reads
	router.Get("/tutorials", tutorialHandler.GetTutorials)
	router.Get("/tutorials/:id", tutorialHandler.GetTutorial)
	router.Get("/tutorials/:id/comments", commentHandler.GetTutorialComments)
	router.Get("/content", siteContentHandler.GetSections)
	router.Get("/content/:section", siteContentHandler.GetSection)
	router.Get("/public/navigation", pageHandler.GetNavigation)
	router.Get("/public/pages/:slug", pageHandler.GetPublicPage)
	router.Get("/public/pages/:slug/posts/:postSlug", pageHandler.GetPublicPost)
	router.Get("/posts/:id/comments", commentHandler.GetPostComments)

	// public writes
	router.Post("/tutorials/:id/comments", publicLimiter, optionalAuth, commentHandler.PostTutorialComment)
	router.Post("/posts/:id/comments", publicLimiter, optionalAuth, commentHandler.PostPostComment)
	router.Post("/comments/:id/vote", publicLimiter, commentHandler.PostVote)

	// admin
	router.Post("/tutorials", adminChain(tutorialHandler.PostTutorial)...)
	router.Put("/tutorials/:id", adminChain(tutorialHandler.PutTutorial)...)
	router.Delete("/tutorials/:id", adminChain(tutorialHandler.DeleteTutorial)...)
	router.Put("/content/:section", adminChain(siteContentHandler.PutSection)...)
	router.Get("/pages", adminChain(pageHandler.GetPages)...)
	router.Post("/pages", adminChain(pageHandler.PostPage)...)
	router.Get("/pages/:id", adminChain(pageHandler.GetPage)...)
	router.Put("/pages/:id", adminChain(pageHandler.PutPage)...)
	router.Delete("/pages/:id", adminChain(pageHandler.DeletePage)...)
	router.Get("/pages/:id/posts", adminChain(pageHandler.GetPagePosts)...)
	router.Post("/pages/:id/posts", adminChain(pageHandler.PostPagePost)...)
	router.Get("/posts/:id", adminChain(pageHandler.GetPost)...)
	router.Put("/posts/:id", adminChain(pageHandler.PutPost)...)
	router.Delete("/posts/:id", adminChain(pageHandler.DeletePost)...)
	router.Delete("/comments/:id", adminChain(commentHandler.DeleteComment)...)
}

func run(ctx *cli.Context) error {
	config, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}

	mustInitLogger(config.Debug || ctx.IsSet(debugFlag.Name))

	secretStore := mustInitSecrets(config.Secrets)
	db := mustInitDatabase(config.MySQL)
	limiterStorage, redisStorage := mustInitLimiterStorage(config.Redis)

	// repositories
	var (
		userRepo        = users.NewUserRepository(db)
		attemptRepo     = users.NewLoginAttemptRepository(db)
		blacklistRepo   = tokens.NewBlacklistRepository(db)
		auditRepo       = audit.NewAuditEventRepository(db)
		tutorialRepo    = content.NewTutorialRepository(db)
		pageRepo        = content.NewPageRepository(db)
		postRepo        = content.NewPostRepository(db)
		commentRepo     = content.NewCommentRepository(db)
		siteContentRepo = content.NewSiteContentRepository(db)
	)
	audit.Initialize(auditRepo)

	authService := auth.NewAuthService(secretStore, userRepo, attemptRepo, blacklistRepo)

	startupCtx, cancelStartup := context.WithTimeout(ctx.Context, 30*time.Second)
	defer cancelStartup()
	if err := users.BootstrapAdmin(startupCtx, userRepo, config.Admin.Username, config.Admin.Password); err != nil {
		slog.Error("Admin bootstrap failed", "error", err)
		return err
	}
	if err := content.SeedDefaults(startupCtx, db); err != nil {
		slog.Error("Site content seeding failed", "error", err)
		return err
	}

	cookies := auth.CookieSettings{Secure: !config.Session.InsecureCookies}
	if config.Session.InsecureCookies {
		slog.Warn("Session cookies are NOT marked Secure, use for local development only")
	}

	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		BodyLimit:     params.ServerBodyLimit,
		IdleTimeout:   params.ServerIdleTimeout,
		ReadTimeout:   params.ServerReadTimeout,
		WriteTimeout:  params.ServerWriteTimeout,
		ErrorHandler:  middlewares.ErrorHandler,
	})

	router.Use(recover.New())
	router.Use(logger.New())
	router.Use(middlewares.StripProxyHeaders(config.TrustProxyHeaders))
	router.Use(middlewares.SecurityHeaders(middlewares.SecurityHeadersConfig{Debug: config.Debug}))
	// Credentialed CORS requires explicit origins; a wildcard here would be
	// rejected by browsers and by the middleware itself.
	if len(config.AllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(config.AllowOrigins, ", "),
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Csrf-Token",
			AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
			AllowCredentials: true,
		}))
	}

	setupAPIRoutes(
		router.Group("/api"),
		limiterStorage,
		authService,
		cookies,
		tutorialRepo,
		pageRepo,
		postRepo,
		commentRepo,
		siteContentRepo,
	)

	healthCheckCtx, term := context.WithCancel(ctx.Context)
	done := make(chan struct{})
	var rdb goredis.UniversalClient
	if redisStorage != nil {
		rdb = redisStorage.Conn()
	}
	go startHealthCheckServer(healthCheckCtx, done, params.HealthCheckServerAddr, rdb, db)
	defer func() {
		term()
		<-done
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("Shutting down")
		if err := router.ShutdownWithTimeout(10 * time.Second); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting server", "addr", config.ListenAddr)
	return router.Listen(config.ListenAddr)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
