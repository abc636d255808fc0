package businessflow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirphl/tariff-sheets-sync/app/services"
	"github.com/amirphl/tariff-sheets-sync/config"
	"github.com/amirphl/tariff-sheets-sync/models"
	"github.com/amirphl/tariff-sheets-sync/repository"
	testingutil "github.com/amirphl/tariff-sheets-sync/testing"
	"github.com/amirphl/tariff-sheets-sync/utils"
)

const boxTariffsBody = `{"response":{"data":{
	"dtNextBox":"2025-02-14",
	"dtTillMax":"2025-02-28",
	"warehouseList":[
		{"warehouseName":"Коледино","boxDeliveryAndStorageExpr":"160","boxDeliveryBase":"48","boxDeliveryLiter":"11,2","boxStorageBase":"0,1","boxStorageLiter":"0,1"},
		{"warehouseName":"Подольск","boxDeliveryAndStorageExpr":"150","boxDeliveryBase":"46,5","boxDeliveryLiter":"10","boxStorageBase":"0,08","boxStorageLiter":"0,08"}
	]
}}}`

func TestIngestThenExportAgainstDatabase(t *testing.T) {
	testDB := testingutil.RequireTestDB(t)
	ctx := testingutil.CreateTestContext()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(boxTariffsBody))
	}))
	defer api.Close()

	logger, logs := newTestLogger()
	clock := utils.NewMockClock(testNow)
	status := services.NewMemoryRunStatusStore()

	ingestion := NewIngestionFlow(
		services.NewWBTariffClient(config.TariffAPIConfig{BaseURL: api.URL, Timeout: 5 * time.Second}),
		repository.NewTariffRepository(testDB.DB),
		repository.NewWarehouseRepository(testDB.DB),
		repository.NewTariffWarehouseRepository(testDB.DB),
		status,
		clock,
		logger,
	)

	first := ingestion.RunLogged(ctx)
	require.True(t, first.Success, logs.String())
	clock.Advance(time.Hour)
	second := ingestion.RunLogged(ctx)
	require.True(t, second.Success, logs.String())

	var tariffs, warehouses, rows int64
	require.NoError(t, testDB.DB.Model(&models.Tariff{}).Count(&tariffs).Error)
	require.NoError(t, testDB.DB.Model(&models.Warehouse{}).Count(&warehouses).Error)
	require.NoError(t, testDB.DB.Model(&models.TariffWarehouse{}).Count(&rows).Error)
	assert.Equal(t, int64(2), tariffs)
	assert.Equal(t, int64(4), warehouses)
	assert.Equal(t, int64(4), rows)

	writer := &fakeSheetWriter{}
	export := NewExportFlow(
		repository.NewTariffReportRepository(testDB.DB),
		func(context.Context, *services.ServiceAccount) (services.SheetWriter, error) { return writer, nil },
		nil,
		ExportSettings{CredentialsPath: writeServiceAccountFile(t), SpreadsheetID: "sheet-123"},
		status,
		clock,
		logger,
	)

	run := export.RunLogged(ctx)
	require.True(t, run.Success, logs.String())
	require.Len(t, writer.gotGrid, 4)
	for _, row := range writer.gotGrid {
		assert.Equal(t, "2025-02-14", row[0])
		assert.Equal(t, "2025-02-13", row[4])
	}
	assert.Contains(t, logs.String(), "48 cells updated.")
}
