package models

import "time"

// TariffWarehouse holds the five box figures of one warehouse for one tariff snapshot on one fetch date.
// Table: tariff_warehouse
// Unique on (tariff_id, warehouse_id, "fetchDate"); only the figures change after insert
// Both foreign keys cascade on delete
type TariffWarehouse struct {
	ID                        uint      `gorm:"primaryKey;column:id" json:"id"`
	FetchDate                 time.Time `gorm:"type:date;not null;column:fetchDate;uniqueIndex:uq_tariff_warehouse_tariff_warehouse_fetch_date,priority:3" json:"fetchDate"`
	BoxDeliveryAndStorageExpr float64   `gorm:"not null;column:boxDeliveryAndStorageExpr" json:"boxDeliveryAndStorageExpr"`
	BoxDeliveryBase           float64   `gorm:"not null;column:boxDeliveryBase" json:"boxDeliveryBase"`
	BoxDeliveryLiter          float64   `gorm:"not null;column:boxDeliveryLiter" json:"boxDeliveryLiter"`
	BoxStorageBase            float64   `gorm:"not null;column:boxStorageBase" json:"boxStorageBase"`
	BoxStorageLiter           float64   `gorm:"not null;column:boxStorageLiter" json:"boxStorageLiter"`
	TariffID                  uint      `gorm:"not null;column:tariff_id;uniqueIndex:uq_tariff_warehouse_tariff_warehouse_fetch_date,priority:1" json:"tariff_id"`
	WarehouseID               uint      `gorm:"not null;column:warehouse_id;uniqueIndex:uq_tariff_warehouse_tariff_warehouse_fetch_date,priority:2" json:"warehouse_id"`

	Tariff    *Tariff    `gorm:"foreignKey:TariffID;constraint:OnDelete:CASCADE" json:"-"`
	Warehouse *Warehouse `gorm:"foreignKey:WarehouseID;constraint:OnDelete:CASCADE" json:"-"`
}

func (TariffWarehouse) TableName() string { return "tariff_warehouse" }

// TariffWarehouseFigureColumns are the columns overwritten when an upsert hits an existing key
var TariffWarehouseFigureColumns = []string{
	"boxDeliveryAndStorageExpr",
	"boxDeliveryBase",
	"boxDeliveryLiter",
	"boxStorageBase",
	"boxStorageLiter",
}

// TariffWarehouseKeyColumns form the upsert conflict target
var TariffWarehouseKeyColumns = []string{"tariff_id", "warehouse_id", "fetchDate"}

// TariffWarehouseFilter represents filter criteria for tariff_warehouse queries
type TariffWarehouseFilter struct {
	ID          *uint
	TariffID    *uint
	WarehouseID *uint
	FetchDate   *time.Time
}
