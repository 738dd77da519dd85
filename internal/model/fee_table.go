package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AnticipationType enum constants
const (
	AnticipationNone       = "NOANTICIPATION"
	AnticipationEventual   = "EVENTUAL"
	AnticipationCompulsory = "COMPULSORY"
)

// Product kind enum constants
const (
	KindCredit  = "credit"
	KindDebit   = "debit"
	KindVoucher = "voucher"
	KindPrepaid = "prepaid"
)

// PixFeeConfig holds the PIX pricing fields embedded directly in a fee table
// (PIX is not a brand and has no installments, so it lives outside the
// brand-group tree).
type PixFeeConfig struct {
	CardPixMdr            decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"card_pix_mdr"`
	NonCardPixMdr         decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"non_card_pix_mdr"`
	CardPixCeilingFee     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"card_pix_ceiling_fee"`
	NonCardPixCeilingFee  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"non_card_pix_ceiling_fee"`
	CardPixMinimumFee     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"card_pix_minimum_fee"`
	NonCardPixMinimumFee  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"non_card_pix_minimum_fee"`
}

// FeeTable is a reusable named pricing configuration. Fields that only apply
// to one anticipation type (CompulsoryAnticipationDays, EventualAnticipationFee)
// are persisted as zero when the table runs another type; switching the type
// does not clear them.
type FeeTable struct {
	ID                         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                       string          `gorm:"type:varchar(255);not null" json:"name"`
	Active                     bool            `gorm:"not null;default:true;index" json:"active"`
	TableType                  string          `gorm:"type:varchar(50)" json:"table_type"`
	AnticipationType           string          `gorm:"type:varchar(20);not null;default:'NOANTICIPATION'" json:"anticipation_type"`
	CompulsoryAnticipationDays int             `gorm:"not null;default:0" json:"compulsory_anticipation_days"` // business days, COMPULSORY only
	EventualAnticipationFee    decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"eventual_anticipation_fee"` // % per month, EVENTUAL only
	Pix                        PixFeeConfig    `gorm:"embedded" json:"pix"`
	BrandGroups                []BrandGroup    `gorm:"foreignKey:FeeTableID;constraint:OnDelete:CASCADE" json:"brand_groups"`
	CreatedAt                  time.Time       `json:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at"`
}

// BrandGroup is one card brand's pricing block inside a fee table or a
// merchant price. Brands that share identical pricing carry the same Slug.
// Exactly one of FeeTableID / MerchantPriceID is set.
type BrandGroup struct {
	ID              uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FeeTableID      *uuid.UUID    `gorm:"type:uuid;index" json:"fee_table_id,omitempty"`
	MerchantPriceID *uuid.UUID    `gorm:"type:uuid;index" json:"merchant_price_id,omitempty"`
	Slug            string        `gorm:"type:varchar(100);not null;index" json:"slug"`
	Brand           string        `gorm:"type:varchar(50);not null" json:"brand"` // MASTERCARD, VISA, ELO...
	Position        int           `gorm:"not null;default:0" json:"position"`
	ProductTypes    []ProductType `gorm:"foreignKey:BrandGroupID;constraint:OnDelete:CASCADE" json:"product_types"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// ProductType is the rate row for one payment modality of a brand group.
// InstallmentStart/End are both 1 for anything that is not installment
// credit; credit buckets in this domain are exactly [1,1], [2,6] and [7,12].
type ProductType struct {
	ID                      uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BrandGroupID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"brand_group_id"`
	Kind                    string          `gorm:"type:varchar(20);not null" json:"kind"` // credit, debit, voucher, prepaid
	InstallmentStart        int             `gorm:"not null;default:1" json:"installment_start"`
	InstallmentEnd          int             `gorm:"not null;default:1" json:"installment_end"`
	CardMdr                 decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"card_mdr"`
	NonCardMdr              decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"non_card_mdr"`
	CardFee                 decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"card_fee"`
	NonCardFee              decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"non_card_fee"`
	CardAnticipationRate    decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"card_anticipation_rate"`
	NonCardAnticipationRate decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"non_card_anticipation_rate"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// MerchantPrice is the pricing materialized onto a single merchant by cloning
// a fee table. Structurally a FeeTable, but never shared between merchants.
type MerchantPrice struct {
	ID                         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                       string          `gorm:"type:varchar(255);not null" json:"name"`
	TableType                  string          `gorm:"type:varchar(50)" json:"table_type"`
	AnticipationType           string          `gorm:"type:varchar(20);not null;default:'NOANTICIPATION'" json:"anticipation_type"`
	CompulsoryAnticipationDays int             `gorm:"not null;default:0" json:"compulsory_anticipation_days"`
	EventualAnticipationFee    decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"eventual_anticipation_fee"`
	Pix                        PixFeeConfig    `gorm:"embedded" json:"pix"`
	SourceFeeTableID           *uuid.UUID      `gorm:"type:uuid;index" json:"source_fee_table_id,omitempty"`
	BrandGroups                []BrandGroup    `gorm:"foreignKey:MerchantPriceID;constraint:OnDelete:CASCADE" json:"brand_groups"`
	CreatedAt                  time.Time       `json:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at"`
}
