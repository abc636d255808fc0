// Package scheduler runs the ingestion and export tasks on cron schedules
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/amirphl/tariff-sheets-sync/app/services"
	businessflow "github.com/amirphl/tariff-sheets-sync/business_flow"
	"github.com/amirphl/tariff-sheets-sync/config"
	"github.com/amirphl/tariff-sheets-sync/utils"
)

// TaskRunner is a task whose outcome is logged and recorded rather than returned
type TaskRunner interface {
	RunLogged(ctx context.Context) services.TaskRun
}

// TariffScheduler owns the cron jobs for both tasks
type TariffScheduler struct {
	ingestion TaskRunner
	export    TaskRunner
	cfg       config.SchedulerConfig
	logger    *log.Logger
	cron      *cron.Cron
	entries   map[string]cron.EntryID

	mu     sync.RWMutex
	jobCtx context.Context
	wg     sync.WaitGroup
}

// NewTariffScheduler registers both jobs. Nothing runs until Start.
func NewTariffScheduler(ingestion, export TaskRunner, cfg config.SchedulerConfig, logger *log.Logger) (*TariffScheduler, error) {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 10 * time.Minute
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler: invalid timezone %q: %w", cfg.Timezone, err)
	}

	s := &TariffScheduler{
		ingestion: ingestion,
		export:    export,
		cfg:       cfg,
		logger:    logger,
		entries:   make(map[string]cron.EntryID, 2),
		jobCtx:    context.Background(),
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cron.PrintfLogger(logger))),
		),
	}

	id, err := s.cron.AddFunc(cfg.IngestionSpec, func() { s.TriggerIngestion(s.context()) })
	if err != nil {
		return nil, fmt.Errorf("scheduler: invalid ingestion spec %q: %w", cfg.IngestionSpec, err)
	}
	s.entries[utils.TaskIngestion] = id

	id, err = s.cron.AddFunc(cfg.ExportSpec, func() { s.TriggerExport(s.context()) })
	if err != nil {
		return nil, fmt.Errorf("scheduler: invalid export spec %q: %w", cfg.ExportSpec, err)
	}
	s.entries[utils.TaskExport] = id

	return s, nil
}

// Start launches cron and, if configured, the startup pass (ingestion, then
// export). The returned stop function cancels running jobs and blocks until
// they have returned; calling it more than once is safe.
func (s *TariffScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)
	s.mu.Lock()
	s.jobCtx = ctx
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Printf("scheduler: started (ingestion %q, export %q, %s)",
		s.cfg.IngestionSpec, s.cfg.ExportSpec, s.cfg.Timezone)

	if s.cfg.RunOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.TriggerIngestion(ctx)
			if ctx.Err() != nil {
				return
			}
			s.TriggerExport(ctx)
		}()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-s.cron.Stop().Done()
			s.wg.Wait()
			s.logger.Println("scheduler: stopped")
		})
	}
}

// TriggerIngestion runs ingestion now and waits for it
func (s *TariffScheduler) TriggerIngestion(ctx context.Context) services.TaskRun {
	return s.run(ctx, utils.TaskIngestion, s.ingestion)
}

// TriggerExport runs export now and waits for it
func (s *TariffScheduler) TriggerExport(ctx context.Context) services.TaskRun {
	return s.run(ctx, utils.TaskExport, s.export)
}

// NextRun reports when the task's job fires next, computed from after
func (s *TariffScheduler) NextRun(task string, after time.Time) (time.Time, bool) {
	id, ok := s.entries[task]
	if !ok {
		return time.Time{}, false
	}
	entry := s.cron.Entry(id)
	if entry.Schedule == nil {
		return time.Time{}, false
	}
	return entry.Schedule.Next(after), true
}

func (s *TariffScheduler) run(ctx context.Context, task string, runner TaskRunner) (run services.TaskRun) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.TaskTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("scheduler: %s panicked: %v", task, r)
			run = services.TaskRun{Task: task, ErrorCode: businessflow.CodeTaskFailed, Error: fmt.Sprint(r)}
		}
	}()

	if requestID, ok := ctx.Value(utils.RequestIDKey).(string); ok && requestID != "" {
		s.logger.Printf("scheduler: %s triggered by request %s", task, requestID)
	}

	return runner.RunLogged(ctx)
}

func (s *TariffScheduler) context() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobCtx
}
