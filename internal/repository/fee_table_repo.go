package repository

import (
	"context"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FeeTableRepository interface {
	Create(ctx context.Context, table *model.FeeTable) error
	Update(ctx context.Context, table *model.FeeTable) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FeeTable, error)
	FindByIDWithGroups(ctx context.Context, id uuid.UUID) (*model.FeeTable, error)
	List(ctx context.Context, activeOnly bool, search string, page, limit int) ([]model.FeeTable, int64, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ReplaceGroups(ctx context.Context, tableID uuid.UUID, groups []model.BrandGroup) error
}

type feeTableRepository struct {
	db *gorm.DB
}

func NewFeeTableRepository(db *gorm.DB) FeeTableRepository {
	return &feeTableRepository{db: db}
}

func (r *feeTableRepository) Create(ctx context.Context, table *model.FeeTable) error {
	return GetDB(ctx, r.db).Create(table).Error
}

func (r *feeTableRepository) Update(ctx context.Context, table *model.FeeTable) error {
	return GetDB(ctx, r.db).Omit("BrandGroups").Save(table).Error
}

func (r *feeTableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.FeeTable{}).Error
}

func (r *feeTableRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.FeeTable, error) {
	var table model.FeeTable
	if err := GetDB(ctx, r.db).First(&table, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

// FindByIDWithGroups loads the full aggregate. Groups come back in position
// order and rows in (kind, installment) order so clones are deterministic.
func (r *feeTableRepository) FindByIDWithGroups(ctx context.Context, id uuid.UUID) (*model.FeeTable, error) {
	var table model.FeeTable
	err := GetDB(ctx, r.db).
		Preload("BrandGroups", func(db *gorm.DB) *gorm.DB {
			return db.Order("brand_groups.position ASC")
		}).
		Preload("BrandGroups.ProductTypes", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_types.kind ASC, product_types.installment_start ASC")
		}).
		First(&table, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *feeTableRepository) List(ctx context.Context, activeOnly bool, search string, page, limit int) ([]model.FeeTable, int64, error) {
	var tables []model.FeeTable
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.FeeTable{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&tables).Error; err != nil {
		return nil, 0, err
	}

	return tables, total, nil
}

func (r *feeTableRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return GetDB(ctx, r.db).Model(&model.FeeTable{}).
		Where("id = ?", id).
		Update("active", active).Error
}

// ReplaceGroups swaps the whole brand-group tree of a table (delete-all +
// re-create, same strategy as address replacement on merchants). Run inside
// a transaction by the caller.
func (r *feeTableRepository) ReplaceGroups(ctx context.Context, tableID uuid.UUID, groups []model.BrandGroup) error {
	db := GetDB(ctx, r.db)

	var oldGroupIDs []uuid.UUID
	if err := db.Model(&model.BrandGroup{}).
		Where("fee_table_id = ?", tableID).
		Pluck("id", &oldGroupIDs).Error; err != nil {
		return err
	}
	if len(oldGroupIDs) > 0 {
		if err := db.Where("brand_group_id IN ?", oldGroupIDs).Delete(&model.ProductType{}).Error; err != nil {
			return err
		}
		if err := db.Where("fee_table_id = ?", tableID).Delete(&model.BrandGroup{}).Error; err != nil {
			return err
		}
	}

	if len(groups) == 0 {
		return nil
	}
	for i := range groups {
		groups[i].FeeTableID = &tableID
	}
	return db.Create(&groups).Error
}
