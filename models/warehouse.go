package models

// Warehouse is a named warehouse as reported by one ingestion run.
// A new row is written for every entry of every run, so names repeat.
type Warehouse struct {
	ID   uint   `gorm:"primaryKey;column:id" json:"id"`
	Name string `gorm:"size:255;not null;column:name" json:"name"`
}

func (Warehouse) TableName() string { return "warehouses" }

// WarehouseFilter represents filter criteria for warehouse queries
type WarehouseFilter struct {
	ID   *uint
	Name *string
}
