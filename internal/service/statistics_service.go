package service

import (
	"context"
	"time"

	"backoffice/internal/model"

	"gorm.io/gorm"
)

type StatisticsService interface {
	GetDashboard(ctx context.Context, startDate, endDate time.Time) (model.DashboardResponse, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetDashboard aggregates settlement volume and merchant counts over the range.
func (s *statisticsService) GetDashboard(ctx context.Context, startDate, endDate time.Time) (model.DashboardResponse, error) {
	response := model.DashboardResponse{
		SettlementsByStatus: map[string]int64{},
		MerchantsByStatus:   map[string]int64{},
		TimeRangeStartDate:  startDate,
		TimeRangeEndDate:    endDate,
	}

	// Volume totals over the range.
	var totals struct {
		Gross float64
		Fee   float64
		Net   float64
	}
	s.db.WithContext(ctx).Table("settlements").
		Select("COALESCE(SUM(gross_amount), 0) as gross, COALESCE(SUM(fee_amount), 0) as fee, COALESCE(SUM(CASE WHEN status = ? THEN net_amount ELSE 0 END), 0) as net", model.SettlementPaid).
		Where("reference_date >= ? AND reference_date <= ?", startDate, endDate).
		Scan(&totals)
	response.TotalGrossVolume = totals.Gross
	response.TotalFeeRevenue = totals.Fee
	response.TotalNetPaid = totals.Net

	// Settlement counts grouped by status.
	var settlementCounts []struct {
		Status string
		Count  int64
	}
	s.db.WithContext(ctx).Table("settlements").
		Select("status, COUNT(*) as count").
		Where("reference_date >= ? AND reference_date <= ?", startDate, endDate).
		Group("status").
		Scan(&settlementCounts)
	for _, row := range settlementCounts {
		response.SettlementsByStatus[row.Status] = row.Count
	}

	// Merchant counts grouped by status.
	var merchantCounts []struct {
		Status string
		Count  int64
	}
	s.db.WithContext(ctx).Table("merchants").
		Select("status, COUNT(*) as count").
		Where("deleted_at IS NULL").
		Group("status").
		Scan(&merchantCounts)
	for _, row := range merchantCounts {
		response.MerchantsByStatus[row.Status] = row.Count
	}

	s.db.WithContext(ctx).Table("merchants").
		Where("merchant_price_id IS NOT NULL AND deleted_at IS NULL").
		Count(&response.MerchantsWithPricing)

	// Top merchants by settled gross volume.
	var topMerchants []model.MerchantVolume
	s.db.WithContext(ctx).Table("settlements").
		Select("merchants.id as merchant_id, merchants.legal_name as legal_name, merchants.document as document, SUM(settlements.gross_amount) as gross_total, SUM(settlements.fee_amount) as fee_total").
		Joins("JOIN merchants ON merchants.id = settlements.merchant_id").
		Where("settlements.reference_date >= ? AND settlements.reference_date <= ?", startDate, endDate).
		Group("merchants.id, merchants.legal_name, merchants.document").
		Order("gross_total DESC").
		Limit(5).
		Scan(&topMerchants)
	response.TopMerchants = topMerchants

	return response, nil
}
