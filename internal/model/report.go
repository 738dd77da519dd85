package model

import (
	"time"

	"github.com/google/uuid"
)

// ReportType enum constants
const (
	ReportSettlementSummary = "SETTLEMENT_SUMMARY"
	ReportMerchantPricing   = "MERCHANT_PRICING"
	ReportFeeRevenue        = "FEE_REVENUE"
)

// ReportStatus enum constants
const (
	ReportPending    = "PENDING"
	ReportProcessing = "PROCESSING"
	ReportDone       = "DONE"
	ReportFailed     = "FAILED"
)

// ReportRequest is a queued report-generation job. Rendering (PDF/XLSX) and
// delivery happen in an external worker; this table only tracks request state.
type ReportRequest struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReportType  string     `gorm:"type:varchar(30);not null;index" json:"report_type"`
	Status      string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Params      string     `gorm:"type:jsonb" json:"params"` // serialized filter payload
	RequestedBy *uuid.UUID `gorm:"type:uuid;index" json:"requested_by"`
	Requester   *User      `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	ResultPath  string     `gorm:"type:text" json:"result_path"` // filled by the worker on DONE
	FailReason  string     `gorm:"type:text" json:"fail_reason"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
