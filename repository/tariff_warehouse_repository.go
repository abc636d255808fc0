package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/tariff-sheets-sync/models"
	"github.com/amirphl/tariff-sheets-sync/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TariffWarehouseRepositoryImpl implements TariffWarehouseRepository interface
type TariffWarehouseRepositoryImpl struct {
	*BaseRepository[models.TariffWarehouse, models.TariffWarehouseFilter]
}

// NewTariffWarehouseRepository creates a new tariff_warehouse repository
func NewTariffWarehouseRepository(db *gorm.DB) TariffWarehouseRepository {
	return &TariffWarehouseRepositoryImpl{
		BaseRepository: NewBaseRepository[models.TariffWarehouse, models.TariffWarehouseFilter](db),
	}
}

// Upsert issues INSERT ... ON CONFLICT (tariff_id, warehouse_id, "fetchDate") DO UPDATE
// on the five figure columns. Key columns are never rewritten.
func (r *TariffWarehouseRepositoryImpl) Upsert(ctx context.Context, row *models.TariffWarehouse) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	row.FetchDate = utils.TruncateToDate(row.FetchDate)

	conflict := make([]clause.Column, 0, len(models.TariffWarehouseKeyColumns))
	for _, name := range models.TariffWarehouseKeyColumns {
		conflict = append(conflict, clause.Column{Name: name})
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   conflict,
		DoUpdates: clause.AssignmentColumns(models.TariffWarehouseFigureColumns),
	}).Create(row).Error
	if err != nil {
		err = fmt.Errorf("failed to upsert tariff_warehouse (tariff=%d, warehouse=%d, date=%s): %w",
			row.TariffID, row.WarehouseID, utils.FormatDate(row.FetchDate), err)
	}

	return finish(db, shouldCommit, err)
}

// ByKey retrieves the row stored under the composite upsert key
func (r *TariffWarehouseRepositoryImpl) ByKey(ctx context.Context, tariffID, warehouseID uint, fetchDate time.Time) (*models.TariffWarehouse, error) {
	fetchDate = utils.TruncateToDate(fetchDate)
	rows, err := r.ByFilter(ctx, models.TariffWarehouseFilter{
		TariffID:    &tariffID,
		WarehouseID: &warehouseID,
		FetchDate:   &fetchDate,
	}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ByID retrieves a row by its ID
func (r *TariffWarehouseRepositoryImpl) ByID(ctx context.Context, id uint) (*models.TariffWarehouse, error) {
	db := r.getDB(ctx)
	var row models.TariffWarehouse
	if err := db.Last(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *TariffWarehouseRepositoryImpl) applyFilter(query *gorm.DB, filter models.TariffWarehouseFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.TariffID != nil {
		query = query.Where("tariff_id = ?", *filter.TariffID)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.FetchDate != nil {
		query = query.Where(`"fetchDate" = ?`, utils.FormatDate(*filter.FetchDate))
	}
	return query
}

// ByFilter retrieves rows based on filter criteria
func (r *TariffWarehouseRepositoryImpl) ByFilter(ctx context.Context, filter models.TariffWarehouseFilter, orderBy string, limit, offset int) ([]*models.TariffWarehouse, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.TariffWarehouse{}), filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.TariffWarehouse
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of rows matching the filter
func (r *TariffWarehouseRepositoryImpl) Count(ctx context.Context, filter models.TariffWarehouseFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.TariffWarehouse{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any row matching the filter exists
func (r *TariffWarehouseRepositoryImpl) Exists(ctx context.Context, filter models.TariffWarehouseFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
