package repository

import (
	"context"
	"errors"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MerchantRepository interface {
	Create(ctx context.Context, merchant *model.Merchant) error
	Update(ctx context.Context, merchant *model.Merchant) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Merchant, error)
	FindByDocument(ctx context.Context, document string) (*model.Merchant, error)
	List(ctx context.Context, status, search string, page, limit int) ([]model.Merchant, int64, error)
	SetMerchantPriceID(ctx context.Context, merchantID, priceID uuid.UUID) error
}

type merchantRepository struct {
	db *gorm.DB
}

func NewMerchantRepository(db *gorm.DB) MerchantRepository {
	return &merchantRepository{db: db}
}

func (r *merchantRepository) Create(ctx context.Context, merchant *model.Merchant) error {
	return GetDB(ctx, r.db).Create(merchant).Error
}

func (r *merchantRepository) Update(ctx context.Context, merchant *model.Merchant) error {
	return GetDB(ctx, r.db).Save(merchant).Error
}

func (r *merchantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Merchant{}).Error
}

func (r *merchantRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Merchant, error) {
	var merchant model.Merchant
	if err := GetDB(ctx, r.db).First(&merchant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (r *merchantRepository) FindByDocument(ctx context.Context, document string) (*model.Merchant, error) {
	var merchant model.Merchant
	if err := GetDB(ctx, r.db).First(&merchant, "document = ?", document).Error; err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (r *merchantRepository) List(ctx context.Context, status, search string, page, limit int) ([]model.Merchant, int64, error) {
	var merchants []model.Merchant
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Merchant{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		query = query.Where("legal_name ILIKE ? OR trade_name ILIKE ? OR document ILIKE ? OR email ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&merchants).Error; err != nil {
		return nil, 0, err
	}

	return merchants, total, nil
}

// ErrMerchantAlreadyLinked reports that the merchant picked up a price
// between the caller's pre-check and the link write.
var ErrMerchantAlreadyLinked = errors.New("merchant already linked to a price")

// SetMerchantPriceID links a merchant to its materialized price as a
// compare-and-swap: the update only lands while merchant_price_id is still
// NULL, so of two clones racing on the same merchant exactly one wins and
// the loser gets ErrMerchantAlreadyLinked instead of silently overwriting
// the link. The unique index on merchant_price_id separately keeps one
// price from being claimed by two merchants.
func (r *merchantRepository) SetMerchantPriceID(ctx context.Context, merchantID, priceID uuid.UUID) error {
	res := GetDB(ctx, r.db).Model(&model.Merchant{}).
		Where("id = ? AND merchant_price_id IS NULL", merchantID).
		Update("merchant_price_id", priceID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMerchantAlreadyLinked
	}
	return nil
}
