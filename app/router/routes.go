// Package router wires the ops API routes and middleware
package router

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amirphl/tariff-sheets-sync/app/dto"
	"github.com/amirphl/tariff-sheets-sync/app/handlers"
	"github.com/amirphl/tariff-sheets-sync/app/middleware"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	Shutdown(ctx context.Context) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app         *fiber.App
	taskHandler handlers.TaskHandlerInterface
	logger      *log.Logger
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(taskHandler handlers.TaskHandlerInterface, logger *log.Logger) Router {
	if logger == nil {
		logger = log.Default()
	}

	r := &FiberRouter{
		taskHandler: taskHandler,
		logger:      logger,
	}
	r.app = fiber.New(fiber.Config{
		AppName:      "Tariff Sheets Sync",
		ErrorHandler: r.errorHandler,
		BodyLimit:    64 * 1024,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})
	return r
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	r.setupMiddleware()

	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := r.app.Group("/api/v1")
	api.Get("/health", r.taskHandler.Health)

	tasks := api.Group("/tasks")
	tasks.Get("/status", r.taskHandler.Status)

	// Manual runs hit the tariff API and Google; keep them rare
	runLimit := limiter.New(limiter.Config{
		Max:        6,
		Expiration: time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() + ":" + c.Path()
		},
		LimitReached: func(c fiber.Ctx) error {
			return handlers.ErrorResponse(c, fiber.StatusTooManyRequests,
				"Too many requests. Please try again later.", "RATE_LIMIT_EXCEEDED", nil)
		},
	})
	tasks.Post("/ingestion/run", runLimit, r.taskHandler.RunIngestion)
	tasks.Post("/export/run", runLimit, r.taskHandler.RunExport)

	r.app.Use(r.notFoundHandler)

	r.logger.Println("router: routes configured")
}

func (r *FiberRouter) setupMiddleware() {
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			r.logger.Printf("router: panic request_id=%s method=%s path=%s: %v",
				requestid.FromContext(c), c.Method(), c.Path(), e)
		},
	}))

	r.app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: uuid.NewString,
	}))

	r.app.Use(helmet.New())

	r.app.Use(middleware.Metrics())

	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","method":"${method}","path":"${path}","status":${status},"latency":"${latency}","ip":"${ip}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health" || c.Path() == "/metrics"
		},
	}))
}

// Start listens on address until Shutdown
func (r *FiberRouter) Start(address string) error {
	r.logger.Printf("router: listening on %s", address)
	return r.app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops accepting connections and waits for in-flight requests
func (r *FiberRouter) Shutdown(ctx context.Context) error {
	return r.app.ShutdownWithContext(ctx)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

func (r *FiberRouter) errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	r.logger.Printf("router: error %d on %s %s: %v", code, c.Method(), c.Path(), err)

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: err.Error(),
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"request_id": requestid.FromContext(c),
			},
		},
	})
}
