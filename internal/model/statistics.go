package model

import (
	"time"
)

// DashboardResponse aggregates settlement volume and merchant counts for the
// back-office landing page.
type DashboardResponse struct {
	TotalGrossVolume     float64          `json:"total_gross_volume"`
	TotalFeeRevenue      float64          `json:"total_fee_revenue"`
	TotalNetPaid         float64          `json:"total_net_paid"`
	SettlementsByStatus  map[string]int64 `json:"settlements_by_status"`
	MerchantsByStatus    map[string]int64 `json:"merchants_by_status"`
	MerchantsWithPricing int64            `json:"merchants_with_pricing"`
	TopMerchants         []MerchantVolume `json:"top_merchants"`
	TimeRangeStartDate   time.Time        `json:"time_range_start_date"`
	TimeRangeEndDate     time.Time        `json:"time_range_end_date"`
}

// MerchantVolume ranks a merchant by settled volume in the selected range.
type MerchantVolume struct {
	MerchantID string  `json:"merchant_id"`
	LegalName  string  `json:"legal_name"`
	Document   string  `json:"document"`
	GrossTotal float64 `json:"gross_total"`
	FeeTotal   float64 `json:"fee_total"`
}
