// Package server contains the HTTP handlers and routing for the Quill web application.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"quill/internal/bootstrap"
	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/featureflags"
	"quill/internal/middleware"
	"quill/internal/render"
	"quill/internal/repository"
	"quill/internal/service"
	"quill/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	renderer       *render.Renderer
	sessions       *SessionManager
	featureFlags   *featureflags.Manager
	blobs          storage.BlobStore
	indexCache     *cache.IndexCache
	userRepo       repository.UserRepository
	groupRepo      repository.GroupRepository
	postService    *service.PostService
	commentService *service.CommentService
	followService  *service.FollowService
	feedService    *service.FeedService
	userService    *service.UserService
}

// NewServer connects to the database and, when configured, Redis, then
// builds a Server on top of them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil redisClient selects the in-memory page cache and session blacklist.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	renderer, err := render.New(cfg.Language)
	if err != nil {
		return nil, err
	}
	blobs, err := storage.NewFileStore(cfg.MediaRoot, cfg.MaxUploadBytes())
	if err != nil {
		return nil, err
	}

	var store cache.Store = cache.NewMemoryStore()
	if redisClient != nil {
		store = cache.NewRedisStore(redisClient)
	}

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("quill"),
		renderer:       renderer,
		sessions:       NewSessionManager(cfg.JWTSecret, cfg.SessionTTL(), redisClient),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		blobs:          blobs,
		indexCache:     cache.NewIndexCache(store, cfg.IndexCacheTTL()),
		userRepo:       userRepo,
		groupRepo:      groupRepo,
	}
	s.postService = service.NewPostService(postRepo, groupRepo, blobs, s.indexCache)
	s.commentService = service.NewCommentService(postRepo, commentRepo)
	s.followService = service.NewFollowService(userRepo, followRepo)
	s.feedService = service.NewFeedService(postRepo, groupRepo, userRepo, followRepo, commentRepo, cfg.PageSize)
	s.userService = service.NewUserService(userRepo)

	return s, nil
}

// IndexCache exposes the anonymous index page cache.
func (s *Server) IndexCache() *cache.IndexCache {
	return s.indexCache
}

// NewApp builds the Fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Quill",
		DisableStartupMessage: true,
		BodyLimit:             int(s.config.MaxUploadBytes()) + 1024*1024,
		ErrorHandler:          s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Resolve the session cookie before the context middleware copies userID
	app.Use(s.Identity())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())
}

// SetupRoutes configures all routes for the application. Fixed paths are
// registered before the /:username catch-alls.
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{Title: "Quill Metrics"}))

	app.Get("/media/*", s.ServeMedia)

	auth := app.Group("/auth")
	auth.Get("/signup/", s.SignupForm)
	auth.Post("/signup/", s.Signup)
	auth.Get("/login/", s.LoginForm)
	auth.Post("/login/", s.Login)
	auth.Get("/logout/", s.Logout)

	app.Get("/", s.Index)
	app.Get("/group/:slug/", s.GroupPosts)
	app.Get("/follow/", s.LoginRequired(), s.FollowIndex)
	app.Get("/new/", s.LoginRequired(), s.NewPostForm)
	app.Post("/new/", s.LoginRequired(), s.CreatePost)

	// Specific /:username/:resource routes before the generic profile route
	app.Get("/:username/follow/", s.LoginRequired(), s.ProfileFollow)
	app.Get("/:username/unfollow/", s.LoginRequired(), s.ProfileUnfollow)
	app.Get("/:username/:post_id<int>/edit/", s.LoginRequired(), s.EditPostForm)
	app.Post("/:username/:post_id<int>/edit/", s.LoginRequired(), s.UpdatePost)
	app.Get("/:username/:post_id<int>/comment/", s.LoginRequired(), s.AddComment)
	app.Post("/:username/:post_id<int>/comment/", s.LoginRequired(), s.AddComment)
	app.Get("/:username/:post_id<int>/", s.PostDetail)
	app.Get("/:username/", s.Profile)

	app.Use(s.NotFound)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional; the in-memory cache keeps the app serving without it
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// errorHandler renders fiber routing errors and anything a handler failed
// to turn into a response.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			return s.renderStatus(c, fe.Code, render.Template404, render.ErrorView{Base: s.base(c, ""), Path: c.Path()})
		case fiber.StatusRequestEntityTooLarge:
			return c.Status(fe.Code).SendString(fe.Message)
		}
	}
	return s.renderServerError(c, err)
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
