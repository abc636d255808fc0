package repository

import (
	"context"
	"errors"

	"github.com/amirphl/tariff-sheets-sync/models"
	"gorm.io/gorm"
)

// TariffRepositoryImpl implements TariffRepository interface
type TariffRepositoryImpl struct {
	*BaseRepository[models.Tariff, models.TariffFilter]
}

// NewTariffRepository creates a new tariff repository
func NewTariffRepository(db *gorm.DB) TariffRepository {
	return &TariffRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Tariff, models.TariffFilter](db),
	}
}

// Latest returns the most recently inserted tariff snapshot
func (r *TariffRepositoryImpl) Latest(ctx context.Context) (*models.Tariff, error) {
	db := r.getDB(ctx)
	var row models.Tariff
	if err := db.Order("id DESC").First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *TariffRepositoryImpl) applyFilter(query *gorm.DB, filter models.TariffFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.DtNextBox != nil {
		query = query.Where(`"dtNextBox" = ?`, *filter.DtNextBox)
	}
	if filter.DtTillMax != nil {
		query = query.Where(`"dtTillMax" = ?`, *filter.DtTillMax)
	}
	if filter.DtTillMaxAfter != nil {
		query = query.Where(`"dtTillMax" > ?`, *filter.DtTillMaxAfter)
	}
	return query
}

// ByFilter retrieves tariffs based on filter criteria
func (r *TariffRepositoryImpl) ByFilter(ctx context.Context, filter models.TariffFilter, orderBy string, limit, offset int) ([]*models.Tariff, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Tariff{}), filter)

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

	var rows []*models.Tariff
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of tariffs matching the filter
func (r *TariffRepositoryImpl) Count(ctx context.Context, filter models.TariffFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Tariff{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any tariff matching the filter exists
func (r *TariffRepositoryImpl) Exists(ctx context.Context, filter models.TariffFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
