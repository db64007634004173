// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"skatespot/internal/auth"
	"skatespot/internal/cache"
	"skatespot/internal/config"
	"skatespot/internal/database"
	"skatespot/internal/middleware"
	"skatespot/internal/models"
	"skatespot/internal/observability"
	"skatespot/internal/repository"
	"skatespot/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
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
	userRepo       repository.UserRepository
	spotRepo       repository.SpotRepository
	commentRepo    repository.CommentRepository
	tokens         *auth.TokenService
	google         *auth.GoogleProvider
	uploads        *storage.Client
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with a mocked DB and an in-process Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("skatespot-api"),
		userRepo:       repository.NewUserRepository(db),
		spotRepo:       repository.NewSpotRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		tokens:         tokens,
		google:         auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthCallbackURL),
	}

	if cfg.StorageConfigured() {
		server.uploads = storage.NewClient(cfg)
	}

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Distributed tracing spans per request
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Get("/google/login", s.GoogleLogin)
	authGroup.Get("/google/callback", s.GoogleCallback)
	authGroup.Get("/google/me", s.AuthRequired(), s.GetMe)
	authGroup.Post("/logout", s.Logout)

	// Public spot routes (browse). The session is optional here: anonymous
	// viewers see scores, signed-in viewers also see their own vote.
	publicSpots := api.Group("/spots")
	publicSpots.Get("/", s.GetSpots)
	publicSpots.Get("/s/:shortId", s.GetSpotByShortID)
	publicSpots.Get("/:id/comments", s.GetComments)
	publicSpots.Get("/:id", s.GetSpot)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// Spot mutations
	spots := protected.Group("/spots")
	spots.Post("/", s.CreateSpot)
	spots.Post("/image-upload-url", s.IssueUploadURL)
	spots.Put("/by-short-id/:shortId", s.UpdateSpotByShortID)
	// Specific /:id/:resource routes BEFORE generic /:id route
	spots.Post("/:id/vote", s.VoteSpot)
	spots.Delete("/:id/vote", s.UnvoteSpot)
	spots.Post("/:id/comments", s.CreateComment)
	spots.Put("/:id/comments/:commentId", s.UpdateComment)
	spots.Delete("/:id/comments/:commentId", s.DeleteComment)
	// Generic /:id routes (update, delete)
	spots.Put("/:id", s.UpdateSpot)
	spots.Delete("/:id", s.DeleteSpot)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional so it is
// reported but never fails readiness on its own.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
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

// AuthRequired returns the authentication middleware. Every failure mode
// (missing header, bad signature, expired token, unknown user) produces the
// same 401 so callers cannot probe which check failed.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := s.bearerUserID(c)
		if !ok {
			observability.AuthFailures.WithLabelValues("required").Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		// The token may outlive the account. Treat a deleted user the same
		// as a bad token.
		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil || user == nil {
			observability.AuthFailures.WithLabelValues("required").Inc()
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		c.Locals("userID", userID)
		c.Locals("user", user)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID.String())
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// optionalUserID attempts to extract the viewer's ID from the request but
// never enforces it. An absent or invalid token simply means anonymous.
func (s *Server) optionalUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	userID, ok := s.bearerUserID(c)
	if !ok {
		return uuid.Nil, false
	}
	return userID, true
}

// bearerUserID extracts and verifies the bearer token from the Authorization
// header, falling back to the session cookie set at OAuth callback time.
func (s *Server) bearerUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	tokenString := ""

	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		tokenString = c.Cookies(sessionCookieName)
	}
	if tokenString == "" {
		return uuid.Nil, false
	}

	userID, err := s.tokens.Verify(tokenString)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Skatespot API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
