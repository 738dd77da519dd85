package repository

import (
	"context"
	"time"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SettlementFilter struct {
	Status     string
	MerchantID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

type SettlementRepository interface {
	Create(ctx context.Context, settlement *model.Settlement) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Settlement, error)
	List(ctx context.Context, filter SettlementFilter) ([]model.Settlement, int64, error)
	Update(ctx context.Context, settlement *model.Settlement) error
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
}

type settlementRepository struct {
	db *gorm.DB
}

func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) Create(ctx context.Context, settlement *model.Settlement) error {
	return GetDB(ctx, r.db).Create(settlement).Error
}

func (r *settlementRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Settlement, error) {
	var settlement model.Settlement
	if err := GetDB(ctx, r.db).Preload("Merchant").First(&settlement, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &settlement, nil
}

func (r *settlementRepository) List(ctx context.Context, filter SettlementFilter) ([]model.Settlement, int64, error) {
	var settlements []model.Settlement
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Settlement{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MerchantID != nil {
		query = query.Where("merchant_id = ?", *filter.MerchantID)
	}
	if filter.From != nil {
		query = query.Where("reference_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("reference_date <= ?", *filter.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Merchant").Order("reference_date DESC").
		Offset(offset).Limit(filter.Limit).Find(&settlements).Error; err != nil {
		return nil, 0, err
	}

	return settlements, total, nil
}

func (r *settlementRepository) Update(ctx context.Context, settlement *model.Settlement) error {
	return GetDB(ctx, r.db).Save(settlement).Error
}

// CountByPrefix supports sequential settlement numbers like "ST-202608-0042".
func (r *settlementRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Settlement{}).
		Where("settlement_no LIKE ?", prefix+"%").
		Count(&count).Error
	return count, err
}
