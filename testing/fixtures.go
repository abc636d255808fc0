package testing

import (
	"fmt"
	"time"

	"github.com/amirphl/tariff-sheets-sync/models"
	"github.com/amirphl/tariff-sheets-sync/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestTariff inserts a tariff whose window starts the day after fetchDate
func (tf *TestFixtures) CreateTestTariff(fetchDate time.Time) (*models.Tariff, error) {
	day := utils.TruncateToDate(fetchDate)
	tariff := &models.Tariff{
		DtNextBox: day.AddDate(0, 0, 1),
		DtTillMax: day.AddDate(0, 0, 14),
	}
	if err := tf.DB.DB.Create(tariff).Error; err != nil {
		return nil, fmt.Errorf("failed to insert tariff: %w", err)
	}
	return tariff, nil
}

// CreateTestWarehouse inserts a warehouse with the given name
func (tf *TestFixtures) CreateTestWarehouse(name string) (*models.Warehouse, error) {
	warehouse := &models.Warehouse{Name: name}
	if err := tf.DB.DB.Create(warehouse).Error; err != nil {
		return nil, fmt.Errorf("failed to insert warehouse %s: %w", name, err)
	}
	return warehouse, nil
}

// CreateTestTariffWarehouse inserts a figures row linking tariff and warehouse on fetchDate.
// Every figure is set to base.
func (tf *TestFixtures) CreateTestTariffWarehouse(tariff *models.Tariff, warehouse *models.Warehouse, fetchDate time.Time, base float64) (*models.TariffWarehouse, error) {
	row := &models.TariffWarehouse{
		FetchDate:                 utils.TruncateToDate(fetchDate),
		BoxDeliveryAndStorageExpr: base,
		BoxDeliveryBase:           base,
		BoxDeliveryLiter:          base,
		BoxStorageBase:            base,
		BoxStorageLiter:           base,
		TariffID:                  tariff.ID,
		WarehouseID:               warehouse.ID,
	}
	if err := tf.DB.DB.Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to insert tariff_warehouse: %w", err)
	}
	return row, nil
}
