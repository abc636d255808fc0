package models

import (
	"time"

	"github.com/amirphl/tariff-sheets-sync/utils"
)

// TariffReportRow is one row of the tariffs x warehouses x tariff_warehouse join that is exported to the sheet.
// Field order is the export column order.
type TariffReportRow struct {
	DtNextBox                 time.Time `gorm:"column:dtNextBox"`
	DtTillMax                 time.Time `gorm:"column:dtTillMax"`
	Name                      string    `gorm:"column:name"`
	ID                        uint      `gorm:"column:id"`
	FetchDate                 time.Time `gorm:"column:fetchDate"`
	BoxDeliveryAndStorageExpr float64   `gorm:"column:boxDeliveryAndStorageExpr"`
	BoxDeliveryBase           float64   `gorm:"column:boxDeliveryBase"`
	BoxDeliveryLiter          float64   `gorm:"column:boxDeliveryLiter"`
	BoxStorageBase            float64   `gorm:"column:boxStorageBase"`
	BoxStorageLiter           float64   `gorm:"column:boxStorageLiter"`
	TariffID                  uint      `gorm:"column:tariff_id"`
	WarehouseID               uint      `gorm:"column:warehouse_id"`
}

// TariffReportColumns are the sheet header labels, in export order
var TariffReportColumns = []string{
	"dtNextBox",
	"dtTillMax",
	"name",
	"id",
	"fetchDate",
	"boxDeliveryAndStorageExpr",
	"boxDeliveryBase",
	"boxDeliveryLiter",
	"boxStorageBase",
	"boxStorageLiter",
	"tariff_id",
	"warehouse_id",
}

// Values flattens the row in export order. Dates are rendered as YYYY-MM-DD.
func (r TariffReportRow) Values() []any {
	return []any{
		utils.FormatDate(r.DtNextBox),
		utils.FormatDate(r.DtTillMax),
		r.Name,
		r.ID,
		utils.FormatDate(r.FetchDate),
		r.BoxDeliveryAndStorageExpr,
		r.BoxDeliveryBase,
		r.BoxDeliveryLiter,
		r.BoxStorageBase,
		r.BoxStorageLiter,
		r.TariffID,
		r.WarehouseID,
	}
}
