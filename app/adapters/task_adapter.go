// Package adapters bridges the scheduler and run status store to the HTTP handlers
package adapters

import (
	"context"
	"time"

	"github.com/amirphl/tariff-sheets-sync/app/dto"
	"github.com/amirphl/tariff-sheets-sync/app/handlers"
	"github.com/amirphl/tariff-sheets-sync/app/services"
	"github.com/amirphl/tariff-sheets-sync/utils"
)

// TaskScheduler is the part of the scheduler the ops API drives
type TaskScheduler interface {
	TriggerIngestion(ctx context.Context) services.TaskRun
	TriggerExport(ctx context.Context) services.TaskRun
	NextRun(task string, after time.Time) (time.Time, bool)
}

// HandlerTaskAdapter adapts the scheduler and status store to handlers.TaskService
type HandlerTaskAdapter struct {
	scheduler TaskScheduler
	store     services.RunStatusStore
	clock     utils.Clock
}

// NewHandlerTaskAdapter creates a new task adapter
func NewHandlerTaskAdapter(scheduler TaskScheduler, store services.RunStatusStore, clock utils.Clock) handlers.TaskService {
	if clock == nil {
		clock = utils.NewRealClock()
	}
	return &HandlerTaskAdapter{scheduler: scheduler, store: store, clock: clock}
}

func (a *HandlerTaskAdapter) RunIngestion(ctx context.Context) *dto.TaskRunResponse {
	run := a.scheduler.TriggerIngestion(ctx)
	return ToTaskRunResponse(&run)
}

func (a *HandlerTaskAdapter) RunExport(ctx context.Context) *dto.TaskRunResponse {
	run := a.scheduler.TriggerExport(ctx)
	return ToTaskRunResponse(&run)
}

// Status reads the last run of both tasks and the next scheduled firing times
func (a *HandlerTaskAdapter) Status(ctx context.Context) (*dto.TasksStatusResponse, error) {
	ingestion, err := a.store.Last(ctx, utils.TaskIngestion)
	if err != nil {
		return nil, err
	}
	export, err := a.store.Last(ctx, utils.TaskExport)
	if err != nil {
		return nil, err
	}

	res := &dto.TasksStatusResponse{
		Ingestion: ToTaskRunResponse(ingestion),
		Export:    ToTaskRunResponse(export),
	}
	now := a.clock.Now()
	if next, ok := a.scheduler.NextRun(utils.TaskIngestion, now); ok {
		res.NextIngestionAt = utils.ToPtr(next)
	}
	if next, ok := a.scheduler.NextRun(utils.TaskExport, now); ok {
		res.NextExportAt = utils.ToPtr(next)
	}
	return res, nil
}

// ToTaskRunResponse converts a recorded run; nil stays nil
func ToTaskRunResponse(run *services.TaskRun) *dto.TaskRunResponse {
	if run == nil {
		return nil
	}
	return &dto.TaskRunResponse{
		Task:       run.Task,
		RunID:      run.RunID,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		DurationMs: run.Duration().Milliseconds(),
		Success:    run.Success,
		ErrorCode:  run.ErrorCode,
		Error:      run.Error,
		Details:    run.Details,
	}
}
