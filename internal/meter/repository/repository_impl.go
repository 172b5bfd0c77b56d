package repository

import (
	"context"
	"errors"

	meterdomain "github.com/smallbiznis/metr/internal/meter/domain"
	"github.com/smallbiznis/metr/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() meterdomain.Repository {
	return &repo{}
}

func (r *repo) ExistsByExternalReference(ctx context.Context, db *gorm.DB, externalReference string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&meterdomain.Meter{}).
		Where("external_reference = ?", externalReference).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) ExistsByID(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&meterdomain.Meter{}).
		Where("meter_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, m *meterdomain.Meter) error {
	return db.WithContext(ctx).Create(m).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter meterdomain.Filter, opts ...option.QueryOption) ([]meterdomain.Meter, error) {
	query := applyFilter(db.WithContext(ctx).Model(&meterdomain.Meter{}), filter)
	query = option.Apply(query, opts...)

	var meters []meterdomain.Meter
	if err := query.Find(&meters).Error; err != nil {
		return nil, err
	}
	return meters, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter meterdomain.Filter) (int64, error) {
	var total int64
	err := applyFilter(db.WithContext(ctx).Model(&meterdomain.Meter{}), filter).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*meterdomain.Meter, error) {
	var meter meterdomain.Meter
	err := db.WithContext(ctx).
		Where("meter_id = ?", id).
		Take(&meter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meter, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, m *meterdomain.Meter) error {
	updates := map[string]any{
		meterdomain.ColumnExternalReference: nil,
		meterdomain.ColumnSupplyStartDate:   m.SupplyStartDate,
		meterdomain.ColumnSupplyEndDate:     nil,
		meterdomain.ColumnEnabled:           m.Enabled,
		meterdomain.ColumnAnnualQuantity:    m.AnnualQuantity,
	}
	if m.ExternalReference != nil {
		updates[meterdomain.ColumnExternalReference] = *m.ExternalReference
	}
	if m.SupplyEndDate != nil {
		updates[meterdomain.ColumnSupplyEndDate] = *m.SupplyEndDate
	}

	return db.WithContext(ctx).
		Model(&meterdomain.Meter{}).
		Where("meter_id = ?", m.MeterID).
		Updates(updates).Error
}

func (r *repo) DeleteByID(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	result := db.WithContext(ctx).
		Where("meter_id = ?", id).
		Delete(&meterdomain.Meter{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func applyFilter(db *gorm.DB, f meterdomain.Filter) *gorm.DB {
	if f.MeterID != nil {
		db = db.Where("meter_id = ?", *f.MeterID)
	}
	if f.ExternalReference != nil {
		db = db.Where("external_reference = ?", *f.ExternalReference)
	}
	if f.Enabled != nil {
		db = db.Where("enabled = ?", *f.Enabled)
	}
	if f.SupplyStartDate != nil {
		db = db.Where("supply_start_date >= ?", f.SupplyStartDate.Column())
	}
	if f.SupplyEndDate != nil {
		db = db.Where("supply_end_date >= ?", f.SupplyEndDate.Column())
	}
	if f.AnnualQuantity != nil {
		db = db.Where("annual_quantity = ?", *f.AnnualQuantity)
	}
	return db
}
