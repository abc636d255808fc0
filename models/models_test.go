package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "tariffs", Tariff{}.TableName())
	assert.Equal(t, "warehouses", Warehouse{}.TableName())
	assert.Equal(t, "tariff_warehouse", TariffWarehouse{}.TableName())
}

func TestTariffReportRowValuesOrder(t *testing.T) {
	row := TariffReportRow{
		DtNextBox:                 time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC),
		DtTillMax:                 time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		Name:                      "Коледино",
		ID:                        7,
		FetchDate:                 time.Date(2025, 2, 13, 0, 0, 0, 0, time.UTC),
		BoxDeliveryAndStorageExpr: 160,
		BoxDeliveryBase:           48,
		BoxDeliveryLiter:          11.2,
		BoxStorageBase:            0.1,
		BoxStorageLiter:           0.1,
		TariffID:                  3,
		WarehouseID:               5,
	}

	values := row.Values()

	assert.Len(t, values, len(TariffReportColumns))
	assert.Equal(t, []any{
		"2025-02-14", "2025-02-28", "Коледино", uint(7), "2025-02-13",
		160.0, 48.0, 11.2, 0.1, 0.1, uint(3), uint(5),
	}, values)
}
