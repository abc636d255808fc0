// Package main runs the tariff sync service: hourly ingestion from the tariff API and a daily spreadsheet export
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/amirphl/tariff-sheets-sync/app/adapters"
	"github.com/amirphl/tariff-sheets-sync/app/handlers"
	"github.com/amirphl/tariff-sheets-sync/app/router"
	"github.com/amirphl/tariff-sheets-sync/app/scheduler"
	"github.com/amirphl/tariff-sheets-sync/app/services"
	businessflow "github.com/amirphl/tariff-sheets-sync/business_flow"
	"github.com/amirphl/tariff-sheets-sync/config"
	"github.com/amirphl/tariff-sheets-sync/migrations"
	"github.com/amirphl/tariff-sheets-sync/repository"
	"github.com/amirphl/tariff-sheets-sync/utils"
)

// Application holds the long-lived pieces main has to shut down
type Application struct {
	config    *config.Config
	logger    *log.Logger
	scheduler *scheduler.TariffScheduler
	router    router.Router
	closers   []io.Closer
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, logCloser, err := utils.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.Println("Starting tariff sync service...")

	app, err := initializeApplication(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize application: %v", err)
	}
	// closed last
	app.closers = append([]io.Closer{logCloser}, app.closers...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopScheduler := app.scheduler.Start(ctx)

	if app.router != nil {
		app.router.SetupRoutes()
		go func() {
			address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			if err := app.router.Start(address); err != nil {
				logger.Printf("Server stopped with error: %v", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Printf("Received %s, shutting down gracefully...", sig)

	if app.router != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		if err := app.router.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Error during server shutdown: %v", err)
		}
		shutdownCancel()
	}

	stopScheduler()
	app.close()
}

func initializeApplication(cfg *config.Config, logger *log.Logger) (*Application, error) {
	app := &Application{config: cfg, logger: logger}

	db, err := initializeDatabase(cfg.Database, cfg.Logging.Level, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	app.closers = append(app.closers, sqlDB)

	if err := migrations.Up(cfg.Database.URL(), logger); err != nil {
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	statusStore, err := initializeRunStatusStore(cfg.Cache, logger)
	if err != nil {
		return nil, err
	}
	if c, ok := statusStore.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}

	clock := utils.NewRealClock()

	tariffRepo := repository.NewTariffRepository(db)
	warehouseRepo := repository.NewWarehouseRepository(db)
	tariffWarehouseRepo := repository.NewTariffWarehouseRepository(db)
	reportRepo := repository.NewTariffReportRepository(db)

	ingestion := businessflow.NewIngestionFlow(
		services.NewWBTariffClient(cfg.TariffAPI),
		tariffRepo,
		warehouseRepo,
		tariffWarehouseRepo,
		statusStore,
		clock,
		logger,
	)

	var snapshot services.SnapshotWriter
	if cfg.Export.XLSXPath != "" {
		snapshot = services.NewXLSXSnapshotWriter(cfg.Export.XLSXPath)
	}
	export := businessflow.NewExportFlow(
		reportRepo,
		newSheetWriterFactory(),
		snapshot,
		businessflow.NewExportSettings(cfg),
		statusStore,
		clock,
		logger,
	)

	app.scheduler, err = scheduler.NewTariffScheduler(ingestion, export, cfg.Scheduler, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Server.Enabled {
		handler := handlers.NewTaskHandler(
			adapters.NewHandlerTaskAdapter(app.scheduler, statusStore, clock),
			sqlDB.PingContext,
			clock,
			cfg.Scheduler.TaskTimeout,
		)
		app.router = router.NewFiberRouter(handler, logger)
	}

	return app, nil
}

// initializeDatabase opens the gorm pool. LOG_LEVEL picks the gorm logger level.
func initializeDatabase(cfg config.DatabaseConfig, level string, logger *log.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(level),
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}

// initializeRunStatusStore returns the redis-backed store when the cache is
// enabled and the in-memory store otherwise
func initializeRunStatusStore(cfg config.CacheConfig, logger *log.Logger) (services.RunStatusStore, error) {
	if !cfg.Enabled {
		return services.NewMemoryRunStatusStore(), nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Printf("Redis connection established (db=%d)", cfg.RedisDB)
	return services.NewRedisRunStatusStore(rc, cfg.RedisPrefix, utils.RunStatusTTL), nil
}

// newSheetWriterFactory authorizes a fresh Sheets client on every export run,
// so a replaced key file is picked up without a restart
func newSheetWriterFactory() services.SheetWriterFactory {
	return func(ctx context.Context, account *services.ServiceAccount) (services.SheetWriter, error) {
		return services.NewServiceAccountSheetWriter(ctx, account)
	}
}

func (a *Application) close() {
	a.logger.Println("Service stopping")
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		log.Printf("Error during shutdown: %v", err)
		return
	}
	log.Println("Service stopped")
}
