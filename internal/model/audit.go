package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateMerchant   = "CREATE_MERCHANT"
	ActionUpdateMerchant   = "UPDATE_MERCHANT"
	ActionDeleteMerchant   = "DELETE_MERCHANT"
	ActionCreateFeeTable   = "CREATE_FEE_TABLE"
	ActionUpdateFeeTable   = "UPDATE_FEE_TABLE"
	ActionDeleteFeeTable   = "DELETE_FEE_TABLE"
	ActionCloneFeeTable    = "CLONE_FEE_TABLE"
	ActionUpdatePricing    = "UPDATE_PRICING"
	ActionUpdatePixConfig  = "UPDATE_PIX_CONFIG"
	ActionUpdateSettlement = "UPDATE_SETTLEMENT"
	ActionRequestReport    = "REQUEST_REPORT"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated job
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
