package businessflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/amirphl/tariff-sheets-sync/app/dto"
	"github.com/amirphl/tariff-sheets-sync/app/services"
	"github.com/amirphl/tariff-sheets-sync/models"
	"github.com/amirphl/tariff-sheets-sync/repository"
	"github.com/amirphl/tariff-sheets-sync/utils"
)

// IngestionFlow pulls the current box tariffs and stores them.
// Rows are written one statement at a time without a surrounding transaction,
// so a failure part way through leaves the rows written before it.
type IngestionFlow interface {
	Run(ctx context.Context) (*IngestionResult, error)
	RunLogged(ctx context.Context) services.TaskRun
}

// IngestionResult counts what one run wrote. TariffID is zero when the run
// failed before the tariff row was inserted.
type IngestionResult struct {
	TariffID   uint
	FetchDate  time.Time
	Warehouses int
	Rows       int
}

type IngestionFlowImpl struct {
	client              services.TariffClient
	tariffRepo          repository.TariffRepository
	warehouseRepo       repository.WarehouseRepository
	tariffWarehouseRepo repository.TariffWarehouseRepository
	validator           *validator.Validate
	clock               utils.Clock
	logger              *log.Logger
	boundary            taskBoundary
}

func NewIngestionFlow(
	client services.TariffClient,
	tariffRepo repository.TariffRepository,
	warehouseRepo repository.WarehouseRepository,
	tariffWarehouseRepo repository.TariffWarehouseRepository,
	statusStore services.RunStatusStore,
	clock utils.Clock,
	logger *log.Logger,
) IngestionFlow {
	return &IngestionFlowImpl{
		client:              client,
		tariffRepo:          tariffRepo,
		warehouseRepo:       warehouseRepo,
		tariffWarehouseRepo: tariffWarehouseRepo,
		validator:           dto.NewTariffValidator(),
		clock:               clock,
		logger:              logger,
		boundary: taskBoundary{
			task:   utils.TaskIngestion,
			store:  statusStore,
			clock:  clock,
			logger: logger,
		},
	}
}

// Run fetches the payload, inserts one tariff row, then for every warehouse
// entry inserts a new warehouse row and upserts its figures keyed by
// (tariff, warehouse, fetch date). The fetch date is today's UTC date.
func (f *IngestionFlowImpl) Run(ctx context.Context) (*IngestionResult, error) {
	result := &IngestionResult{FetchDate: utils.TruncateToDate(f.clock.Now())}

	payload, err := f.client.FetchBoxTariffs(ctx, result.FetchDate)
	if err != nil {
		return result, ClassifyError("failed to fetch box tariffs", err)
	}

	dtNextBox, err := utils.ParseDate(payload.DtNextBox)
	if err != nil {
		return result, NewBusinessError(CodeDataShape, "invalid dtNextBox", err)
	}
	dtTillMax, err := utils.ParseDate(payload.DtTillMax)
	if err != nil {
		return result, NewBusinessError(CodeDataShape, "invalid dtTillMax", err)
	}

	tariff := &models.Tariff{DtNextBox: dtNextBox, DtTillMax: dtTillMax}
	if err := f.tariffRepo.Save(ctx, tariff); err != nil {
		return result, ClassifyError("failed to save tariff", err)
	}
	result.TariffID = tariff.ID

	// the tariff row stays behind when the list is absent
	if payload.WarehouseList == nil {
		return result, NewBusinessError(CodeDataShape, "tariff payload has no warehouse list", ErrWarehouseListMissing)
	}

	for i, entry := range payload.WarehouseList {
		if err := f.validator.Struct(entry); err != nil {
			return result, NewBusinessErrorf(CodeDataShape, "invalid warehouse entry %d", err, i)
		}

		warehouse := &models.Warehouse{Name: entry.WarehouseName}
		if err := f.warehouseRepo.Save(ctx, warehouse); err != nil {
			return result, ClassifyError(fmt.Sprintf("failed to save warehouse %q", entry.WarehouseName), err)
		}
		result.Warehouses++

		row := &models.TariffWarehouse{
			FetchDate:                 result.FetchDate,
			BoxDeliveryAndStorageExpr: entry.BoxDeliveryAndStorageExpr.Float64(),
			BoxDeliveryBase:           entry.BoxDeliveryBase.Float64(),
			BoxDeliveryLiter:          entry.BoxDeliveryLiter.Float64(),
			BoxStorageBase:            entry.BoxStorageBase.Float64(),
			BoxStorageLiter:           entry.BoxStorageLiter.Float64(),
			TariffID:                  tariff.ID,
			WarehouseID:               warehouse.ID,
		}
		if err := f.tariffWarehouseRepo.Upsert(ctx, row); err != nil {
			return result, ClassifyError(fmt.Sprintf("failed to upsert figures for warehouse %q", entry.WarehouseName), err)
		}
		result.Rows++
	}

	return result, nil
}

// RunLogged is the scheduled entry point. Errors are logged and recorded, never returned.
func (f *IngestionFlowImpl) RunLogged(ctx context.Context) services.TaskRun {
	run := f.boundary.begin()

	res, err := f.Run(ctx)

	run.Details = map[string]int64{
		"tariff_id":  int64(res.TariffID),
		"warehouses": int64(res.Warehouses),
		"rows":       int64(res.Rows),
	}
	run = f.boundary.finish(ctx, run, err, int64(res.Rows))

	if err != nil {
		f.logger.Printf("ingestion: run=%s failed [%s] after %d rows: %v", run.RunID, run.ErrorCode, res.Rows, err)
		return run
	}
	f.logger.Printf("ingestion: run=%s data inserted successfully (tariff=%d warehouses=%d rows=%d fetch_date=%s took=%s)",
		run.RunID, res.TariffID, res.Warehouses, res.Rows, utils.FormatDate(res.FetchDate), run.Duration())
	return run
}
