package businessflow

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/amirphl/tariff-sheets-sync/app/services"
	"github.com/amirphl/tariff-sheets-sync/utils"
)

// taskBoundary turns a task outcome into a recorded TaskRun. Nothing that
// happens here is returned as an error: a failed status write is only logged.
type taskBoundary struct {
	task   string
	store  services.RunStatusStore
	clock  utils.Clock
	logger *log.Logger
}

func (b taskBoundary) begin() services.TaskRun {
	return services.TaskRun{
		Task:      b.task,
		RunID:     uuid.NewString(),
		StartedAt: b.clock.Now(),
	}
}

func (b taskBoundary) finish(ctx context.Context, run services.TaskRun, runErr error, rows int64) services.TaskRun {
	run.FinishedAt = b.clock.Now()
	run.Success = runErr == nil
	if runErr != nil {
		run.ErrorCode = ErrorCode(runErr)
		run.Error = runErr.Error()
	}

	observeTaskRun(run.Task, run.ErrorCode, run.Duration(), rows, run.FinishedAt)

	if b.store != nil {
		// the run context may already be cancelled or timed out
		storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), utils.RunStatusWriteTimeout)
		defer cancel()
		if err := b.store.Record(storeCtx, run); err != nil {
			b.logger.Printf("%s: run=%s failed to record status: %v", b.task, run.RunID, err)
		}
	}
	return run
}
