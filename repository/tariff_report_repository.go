package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/tariff-sheets-sync/models"
	"gorm.io/gorm"
)

// TariffReportRepositoryImpl implements TariffReportRepository interface
type TariffReportRepositoryImpl struct {
	db *gorm.DB
}

// NewTariffReportRepository creates a new report repository
func NewTariffReportRepository(db *gorm.DB) TariffReportRepository {
	return &TariffReportRepositoryImpl{db: db}
}

const tariffReportSelect = `tariffs."dtNextBox", tariffs."dtTillMax", warehouses.name, ` +
	`tariff_warehouse.id, tariff_warehouse."fetchDate", ` +
	`tariff_warehouse."boxDeliveryAndStorageExpr", tariff_warehouse."boxDeliveryBase", ` +
	`tariff_warehouse."boxDeliveryLiter", tariff_warehouse."boxStorageBase", ` +
	`tariff_warehouse."boxStorageLiter", tariff_warehouse.tariff_id, tariff_warehouse.warehouse_id`

// ListJoined returns every tariff_warehouse row joined with its tariff and warehouse.
// No filter and no ORDER BY: row order is whatever the database produces.
func (r *TariffReportRepositoryImpl) ListJoined(ctx context.Context) ([]*models.TariffReportRow, error) {
	db := r.db.WithContext(ctx)
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		db = tx.WithContext(ctx)
	}

	var rows []*models.TariffReportRow
	err := db.Model(&models.TariffWarehouse{}).
		Select(tariffReportSelect).
		Joins("INNER JOIN tariffs ON tariffs.id = tariff_warehouse.tariff_id").
		Joins("INNER JOIN warehouses ON warehouses.id = tariff_warehouse.warehouse_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load tariff report: %w", err)
	}
	return rows, nil
}
