package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification kind enum constants
const (
	NotificationFeeAssigned      = "FEE_ASSIGNED"
	NotificationPricingChanged   = "PRICING_CHANGED"
	NotificationSettlementStatus = "SETTLEMENT_STATUS"
	NotificationGeneral          = "GENERAL"
)

// Notification is a back-office message shown to operators; rows created by
// system events (fee clone, settlement updates) reference the merchant.
type Notification struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Kind       string     `gorm:"type:varchar(30);not null;index" json:"kind"`
	MerchantID *uuid.UUID `gorm:"type:uuid;index" json:"merchant_id,omitempty"`
	Title      string     `gorm:"type:varchar(255);not null" json:"title"`
	Message    string     `gorm:"type:text" json:"message"`
	Read       bool       `gorm:"not null;default:false;index" json:"read"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
