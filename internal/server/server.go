// Package server wires the HTTP surface: the scheduling endpoints, the
// task views, and the operational middleware around them.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/scoutcal/scout/internal/dto"
	"github.com/scoutcal/scout/internal/repository"
	"github.com/scoutcal/scout/internal/scheduler"
	"github.com/scoutcal/scout/pkg/config"
	"github.com/scoutcal/scout/pkg/llm"
	"github.com/scoutcal/scout/pkg/middleware"
)

// Server is the scheduling service server
type Server struct {
	app    *fiber.App
	config *config.Config
	db     *pgxpool.Pool
	redis  *redis.Client
	chain  *llm.Chain
}

// NewServer creates the server and all of its dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	db, err := repository.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient, err := repository.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	chain := llm.NewChain(llm.Config{
		GroqAPIKey:   cfg.Providers.GroqAPIKey,
		GeminiAPIKey: cfg.Providers.GeminiAPIKey,
		CohereAPIKey: cfg.Providers.CohereAPIKey,
		Timeout:      cfg.Providers.Timeout,
	})
	if chain.Available() == 0 {
		log.Warn().Msg("no completion providers configured, only pattern extraction will work")
	}

	server := &Server{
		config: cfg,
		db:     db,
		redis:  redisClient,
		chain:  chain,
	}

	server.app = server.createApp()
	server.registerRoutes()

	return server, nil
}

func (s *Server) createApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "scout-scheduler",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.Recovery())
	app.Use(middleware.RequestLogger())
	app.Use(compress.New())
	app.Use(helmet.New())

	// Rate limiting - 100 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error": fiber.Map{
					"code":    "RATE_LIMIT_EXCEEDED",
					"message": "too many requests, please try again later",
				},
			})
		},
	}))

	// CORS
	if s.config.IsDevelopment() {
		app.Use(middleware.DevelopmentCORS())
	} else {
		app.Use(middleware.ProductionCORS(s.config.Server.AllowedOrigins))
	}

	return app
}

func (s *Server) registerRoutes() {
	// Health check
	s.app.Get("/health", s.healthCheck)

	events := repository.NewEventStore(s.db)
	proposals := repository.NewProposalStore(s.redis)
	svc := scheduler.NewService(s.chain, events, proposals, s.config.Calendar.Location(), log.Logger)

	// API v1
	v1 := s.app.Group("/api/v1")

	aiHandler := NewAIHandler(svc)
	v1.Post("/users/:userID/ai/generate-schedule", aiHandler.GenerateSchedule)
	v1.Post("/users/:userID/ai/add-task", aiHandler.AddTask)
	v1.Post("/ai/scheduler/chat", aiHandler.Chat)
	v1.Post("/users/:userID/ai/proposals/:proposalID/confirm", aiHandler.ConfirmProposal)
	v1.Post("/users/:userID/ai/proposals/:proposalID/decline", aiHandler.DeclineProposal)

	taskHandler := NewTaskHandler(events)
	v1.Get("/users/:userID/tasks", taskHandler.List)
	v1.Get("/users/:userID/schedule/month", taskHandler.MonthView)
	v1.Delete("/users/:userID/tasks/:id", taskHandler.Delete)
}

func (s *Server) healthCheck(c *fiber.Ctx) error {
	services := make(map[string]string)

	// Check database
	if err := s.db.Ping(c.Context()); err != nil {
		services["database"] = "error"
	} else {
		services["database"] = "ok"
	}

	// Check Redis
	if err := s.redis.Ping(c.Context()).Err(); err != nil {
		services["redis"] = "error"
	} else {
		services["redis"] = "ok"
	}

	// Providers are degraded, not fatal: pattern extraction still works
	if s.chain.Available() > 0 {
		services["providers"] = fmt.Sprintf("%d configured", s.chain.Available())
	} else {
		services["providers"] = "none configured"
	}

	status := "healthy"
	for k, v := range services {
		if k != "providers" && v == "error" {
			status = "unhealthy"
			break
		}
	}

	return c.JSON(dto.HealthResponse{
		Status:   status,
		Version:  "1.0.0",
		Services: services,
	})
}

// Listen starts the HTTP server
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// ShutdownWithContext gracefully shuts down the server
func (s *Server) ShutdownWithContext(ctx context.Context) error {
	if s.db != nil {
		s.db.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	return s.app.ShutdownWithContext(ctx)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(dto.Error(
		errorCodeFromStatus(code),
		err.Error(),
	))
}

func errorCodeFromStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusTooManyRequests:
		return "RATE_LIMIT"
	default:
		return "INTERNAL_ERROR"
	}
}
