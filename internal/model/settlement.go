package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementStatus enum constants
const (
	SettlementPending = "PENDING"
	SettlementPaid    = "PAID"
	SettlementFailed  = "FAILED"
)

// Settlement represents one payout cycle for a merchant: the gross captured
// volume, the fees withheld, and the net amount transferred.
type Settlement struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SettlementNo  string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"settlement_no"`
	MerchantID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"merchant_id"`
	Merchant      *Merchant       `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"`
	GrossAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"gross_amount"`
	FeeAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"fee_amount"`
	NetAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"net_amount"` // gross - fee
	Status        string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	ReferenceDate time.Time       `gorm:"type:date;not null;index" json:"reference_date"` // captured-transactions day
	PaymentDate   *time.Time      `gorm:"type:date" json:"payment_date"`
	Note          string          `gorm:"type:text" json:"note"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
