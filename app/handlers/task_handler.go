package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"github.com/amirphl/tariff-sheets-sync/app/dto"
	businessflow "github.com/amirphl/tariff-sheets-sync/business_flow"
	"github.com/amirphl/tariff-sheets-sync/utils"
)

// TaskService is what the handler needs from the scheduler and the run status store
type TaskService interface {
	RunIngestion(ctx context.Context) *dto.TaskRunResponse
	RunExport(ctx context.Context) *dto.TaskRunResponse
	Status(ctx context.Context) (*dto.TasksStatusResponse, error)
}

// PingFunc checks that a dependency is reachable
type PingFunc func(ctx context.Context) error

// TaskHandlerInterface defines the contract for the task handlers
type TaskHandlerInterface interface {
	Health(c fiber.Ctx) error
	Status(c fiber.Ctx) error
	RunIngestion(c fiber.Ctx) error
	RunExport(c fiber.Ctx) error
}

// TaskHandler serves health, task status and manual task runs
type TaskHandler struct {
	tasks       TaskService
	pingDB      PingFunc
	clock       utils.Clock
	taskTimeout time.Duration
}

// NewTaskHandler creates a new task handler. pingDB may be nil.
func NewTaskHandler(tasks TaskService, pingDB PingFunc, clock utils.Clock, taskTimeout time.Duration) *TaskHandler {
	if clock == nil {
		clock = utils.NewRealClock()
	}
	if taskTimeout <= 0 {
		taskTimeout = 10 * time.Minute
	}
	return &TaskHandler{
		tasks:       tasks,
		pingDB:      pingDB,
		clock:       clock,
		taskTimeout: taskTimeout,
	}
}

// Health reports whether the database answers
// @Router /api/v1/health [get]
func (h *TaskHandler) Health(c fiber.Ctx) error {
	res := dto.HealthResponse{
		Status:   "ok",
		Database: "ok",
		Time:     h.clock.Now(),
	}
	if h.pingDB != nil {
		ctx, cancel := h.createRequestContextWithTimeout(c, 5*time.Second)
		defer cancel()
		if err := h.pingDB(ctx); err != nil {
			res.Status = "degraded"
			res.Database = err.Error()
			return ErrorResponse(c, fiber.StatusServiceUnavailable, "Database is unreachable", "DATABASE_UNAVAILABLE", res)
		}
	}
	return SuccessResponse(c, fiber.StatusOK, "Service is healthy", res)
}

// Status returns the last recorded run of each task
// @Router /api/v1/tasks/status [get]
func (h *TaskHandler) Status(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContextWithTimeout(c, 5*time.Second)
	defer cancel()

	res, err := h.tasks.Status(ctx)
	if err != nil {
		return ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read task status", "STATUS_UNAVAILABLE", err.Error())
	}
	return SuccessResponse(c, fiber.StatusOK, "Task status retrieved successfully", res)
}

// RunIngestion runs ingestion now and waits for the outcome
// @Router /api/v1/tasks/ingestion/run [post]
func (h *TaskHandler) RunIngestion(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContextWithTimeout(c, h.taskTimeout)
	defer cancel()
	return h.runResponse(c, h.tasks.RunIngestion(ctx), "Ingestion completed")
}

// RunExport runs export now and waits for the outcome
// @Router /api/v1/tasks/export/run [post]
func (h *TaskHandler) RunExport(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContextWithTimeout(c, h.taskTimeout)
	defer cancel()
	return h.runResponse(c, h.tasks.RunExport(ctx), "Export completed")
}

func (h *TaskHandler) runResponse(c fiber.Ctx, run *dto.TaskRunResponse, message string) error {
	if run.Success {
		return SuccessResponse(c, fiber.StatusOK, message, run)
	}
	status := fiber.StatusInternalServerError
	switch run.ErrorCode {
	case businessflow.CodeConnectivity:
		status = fiber.StatusBadGateway
	case businessflow.CodeDataShape, businessflow.CodeCredentials, businessflow.CodeConstraint:
		status = fiber.StatusUnprocessableEntity
	}
	return ErrorResponse(c, status, run.Task+" failed", run.ErrorCode, run)
}

func (h *TaskHandler) createRequestContextWithTimeout(c fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	if requestID := requestid.FromContext(c); requestID != "" {
		ctx = context.WithValue(ctx, utils.RequestIDKey, requestID)
	}
	return ctx, cancel
}
