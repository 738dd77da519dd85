package repository

import (
	"context"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MerchantPriceRepository interface {
	Create(ctx context.Context, price *model.MerchantPrice) error
	Update(ctx context.Context, price *model.MerchantPrice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.MerchantPrice, error)
	FindByIDWithGroups(ctx context.Context, id uuid.UUID) (*model.MerchantPrice, error)
	CreateBrandGroup(ctx context.Context, group *model.BrandGroup) error
	CreateProductType(ctx context.Context, row *model.ProductType) error
	FindProductType(ctx context.Context, priceID uuid.UUID, groupSlug, kind string, installmentStart, installmentEnd int) (*model.ProductType, error)
	FindProductTypeCovering(ctx context.Context, priceID uuid.UUID, groupSlug, kind string, installment int) (*model.ProductType, error)
	UpdateProductType(ctx context.Context, row *model.ProductType) error
	DeleteProductType(ctx context.Context, id uuid.UUID) error
}

type merchantPriceRepository struct {
	db *gorm.DB
}

func NewMerchantPriceRepository(db *gorm.DB) MerchantPriceRepository {
	return &merchantPriceRepository{db: db}
}

func (r *merchantPriceRepository) Create(ctx context.Context, price *model.MerchantPrice) error {
	return GetDB(ctx, r.db).Omit("BrandGroups").Create(price).Error
}

func (r *merchantPriceRepository) Update(ctx context.Context, price *model.MerchantPrice) error {
	return GetDB(ctx, r.db).Omit("BrandGroups").Save(price).Error
}

func (r *merchantPriceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.MerchantPrice, error) {
	var price model.MerchantPrice
	if err := GetDB(ctx, r.db).First(&price, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &price, nil
}

func (r *merchantPriceRepository) FindByIDWithGroups(ctx context.Context, id uuid.UUID) (*model.MerchantPrice, error) {
	var price model.MerchantPrice
	err := GetDB(ctx, r.db).
		Preload("BrandGroups", func(db *gorm.DB) *gorm.DB {
			return db.Order("brand_groups.position ASC")
		}).
		Preload("BrandGroups.ProductTypes", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_types.kind ASC, product_types.installment_start ASC")
		}).
		First(&price, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (r *merchantPriceRepository) CreateBrandGroup(ctx context.Context, group *model.BrandGroup) error {
	return GetDB(ctx, r.db).Omit("ProductTypes").Create(group).Error
}

func (r *merchantPriceRepository) CreateProductType(ctx context.Context, row *model.ProductType) error {
	return GetDB(ctx, r.db).Create(row).Error
}

func (r *merchantPriceRepository) FindProductType(ctx context.Context, priceID uuid.UUID, groupSlug, kind string, installmentStart, installmentEnd int) (*model.ProductType, error) {
	var row model.ProductType
	err := GetDB(ctx, r.db).
		Joins("JOIN brand_groups ON brand_groups.id = product_types.brand_group_id").
		Where("brand_groups.merchant_price_id = ? AND brand_groups.slug = ?", priceID, groupSlug).
		Where("product_types.kind = ? AND product_types.installment_start = ? AND product_types.installment_end = ?",
			kind, installmentStart, installmentEnd).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindProductTypeCovering locates the row whose installment range contains
// the given installment count, whether that is a per-installment row [n,n] or
// a wider bucket like [2,6].
func (r *merchantPriceRepository) FindProductTypeCovering(ctx context.Context, priceID uuid.UUID, groupSlug, kind string, installment int) (*model.ProductType, error) {
	var row model.ProductType
	err := GetDB(ctx, r.db).
		Joins("JOIN brand_groups ON brand_groups.id = product_types.brand_group_id").
		Where("brand_groups.merchant_price_id = ? AND brand_groups.slug = ?", priceID, groupSlug).
		Where("product_types.kind = ? AND product_types.installment_start <= ? AND product_types.installment_end >= ?",
			kind, installment, installment).
		Order("product_types.installment_end - product_types.installment_start ASC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *merchantPriceRepository) UpdateProductType(ctx context.Context, row *model.ProductType) error {
	return GetDB(ctx, r.db).Save(row).Error
}

func (r *merchantPriceRepository) DeleteProductType(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ProductType{}).Error
}
