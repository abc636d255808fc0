package repository

import (
	"context"

	"github.com/amirphl/tariff-sheets-sync/models"
	"gorm.io/gorm"
)

// WarehouseRepositoryImpl implements WarehouseRepository interface
type WarehouseRepositoryImpl struct {
	*BaseRepository[models.Warehouse, models.WarehouseFilter]
}

// NewWarehouseRepository creates a new warehouse repository
func NewWarehouseRepository(db *gorm.DB) WarehouseRepository {
	return &WarehouseRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Warehouse, models.WarehouseFilter](db),
	}
}

// CountByName counts warehouse rows carrying the given name. Every ingestion
// run writes its own rows, so this grows by one per run that reported the name.
func (r *WarehouseRepositoryImpl) CountByName(ctx context.Context, name string) (int64, error) {
	return r.Count(ctx, models.WarehouseFilter{Name: &name})
}

func (r *WarehouseRepositoryImpl) applyFilter(query *gorm.DB, filter models.WarehouseFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	return query
}

// ByFilter retrieves warehouses based on filter criteria
func (r *WarehouseRepositoryImpl) ByFilter(ctx context.Context, filter models.WarehouseFilter, orderBy string, limit, offset int) ([]*models.Warehouse, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Warehouse{}), filter)

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

	var rows []*models.Warehouse
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of warehouses matching the filter
func (r *WarehouseRepositoryImpl) Count(ctx context.Context, filter models.WarehouseFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Warehouse{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *WarehouseRepositoryImpl) Exists(ctx context.Context, filter models.WarehouseFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
