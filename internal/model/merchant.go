package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MerchantStatus enum constants
const (
	MerchantStatusPending   = "PENDING"
	MerchantStatusActive    = "ACTIVE"
	MerchantStatusSuspended = "SUSPENDED"
)

// Merchant is an affiliated establishment. BusinessDays is a 7-char binary
// string ordered Monday through Sunday; opening/closing hours are stored
// normalized as "HH:MM" (see pkg/parse).
//
// MerchantPriceID is only ever written through a conditional update that
// requires it to still be NULL, which is what guarantees at most one price
// per merchant even under concurrent clone calls. Its unique index covers
// the other direction: one price cannot be claimed by two merchants.
type Merchant struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LegalName       string         `gorm:"type:varchar(255);not null" json:"legal_name"`
	TradeName       string         `gorm:"type:varchar(255)" json:"trade_name"`
	Document        string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"document"` // CNPJ
	Email           string         `gorm:"type:varchar(255)" json:"email"`
	Phone           string         `gorm:"type:varchar(20)" json:"phone"`
	Status          string         `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	OpeningDate     *time.Time     `gorm:"type:date" json:"opening_date"`
	OpeningHour     string         `gorm:"type:varchar(5);not null;default:'09:00'" json:"opening_hour"`
	ClosingHour     string         `gorm:"type:varchar(5);not null;default:'19:00'" json:"closing_hour"`
	BusinessDays    string         `gorm:"type:varchar(7);not null;default:'1111100'" json:"business_days"`
	MerchantPriceID *uuid.UUID     `gorm:"type:uuid;uniqueIndex" json:"merchant_price_id,omitempty"`
	MerchantPrice   *MerchantPrice `gorm:"foreignKey:MerchantPriceID" json:"merchant_price,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
