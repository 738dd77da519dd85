package repository

import (
	"context"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportRepository interface {
	Create(ctx context.Context, report *model.ReportRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ReportRequest, error)
	List(ctx context.Context, status string, page, limit int) ([]model.ReportRequest, int64, error)
	Update(ctx context.Context, report *model.ReportRequest) error
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.ReportRequest) error {
	return GetDB(ctx, r.db).Create(report).Error
}

func (r *reportRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ReportRequest, error) {
	var report model.ReportRequest
	if err := GetDB(ctx, r.db).Preload("Requester").First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, status string, page, limit int) ([]model.ReportRequest, int64, error) {
	var reports []model.ReportRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.ReportRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Requester").Order("created_at DESC").Offset(offset).Limit(limit).Find(&reports).Error; err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

func (r *reportRepository) Update(ctx context.Context, report *model.ReportRequest) error {
	return GetDB(ctx, r.db).Save(report).Error
}
