package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reference is an owner-level skim partner. ProfitRate percent of every
// investor settlement in the owner's workspace moves to the reference's
// balances before the investor is credited.
type Reference struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID       uuid.UUID       `gorm:"column:owner_id;type:uuid;not null;index"`
	UserID        uuid.UUID       `gorm:"column:user_id;type:uuid;not null"`
	ProfitRate    decimal.Decimal `gorm:"column:profit_rate;type:numeric(6,2);not null;default:0"`
	TotalProfit   decimal.Decimal `gorm:"column:total_profit;type:numeric(12,2);not null;default:0"`
	PendingAmount decimal.Decimal `gorm:"column:pending_amount;type:numeric(12,2);not null;default:0"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
