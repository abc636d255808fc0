// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/tariff-sheets-sync/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// TariffRepository defines operations for tariff snapshots
type TariffRepository interface {
	Repository[models.Tariff, models.TariffFilter]
	Latest(ctx context.Context) (*models.Tariff, error)
}

// WarehouseRepository defines operations for warehouses
type WarehouseRepository interface {
	Repository[models.Warehouse, models.WarehouseFilter]
	CountByName(ctx context.Context, name string) (int64, error)
}

// TariffWarehouseRepository defines operations for per-warehouse tariff figures
type TariffWarehouseRepository interface {
	Repository[models.TariffWarehouse, models.TariffWarehouseFilter]
	// Upsert inserts the row, or overwrites the five figures of the row already
	// stored under (TariffID, WarehouseID, FetchDate). row.ID is set either way.
	Upsert(ctx context.Context, row *models.TariffWarehouse) error
	ByKey(ctx context.Context, tariffID, warehouseID uint, fetchDate time.Time) (*models.TariffWarehouse, error)
}

// TariffReportRepository reads the joined export view
type TariffReportRepository interface {
	ListJoined(ctx context.Context) ([]*models.TariffReportRow, error)
}
