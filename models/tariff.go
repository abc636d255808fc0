// Package models contains the gorm mappings for the tariff tables
package models

import "time"

// Tariff is one snapshot of the box tariff validity window, written once per ingestion run.
// Table: tariffs
// Column names are camelCase and quoted in SQL
type Tariff struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	DtNextBox time.Time `gorm:"type:date;not null;column:dtNextBox" json:"dtNextBox"`
	DtTillMax time.Time `gorm:"type:date;not null;column:dtTillMax" json:"dtTillMax"`
}

func (Tariff) TableName() string { return "tariffs" }

// TariffFilter represents filter criteria for tariff queries
type TariffFilter struct {
	ID             *uint
	DtNextBox      *time.Time
	DtTillMax      *time.Time
	DtTillMaxAfter *time.Time
}
