package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/droptide/droptide-backend/pkg/enums"
)

// User covers every actor role. Investor targets and accumulators and the
// driver commission default live on the row; reference skim balances have
// their own table. Authentication itself is an external collaborator; this
// service only consumes the identity claims.
type User struct {
	ID       uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	Name     string        `gorm:"column:name;not null"`
	Email    string        `gorm:"column:email;uniqueIndex;not null"`
	Phone    string        `gorm:"column:phone"`
	Role     enums.Role    `gorm:"column:role;type:text;not null;default:'user'"`
	Country  enums.Country `gorm:"column:country;type:text"`
	City     string        `gorm:"column:city"`
	IsActive bool          `gorm:"column:is_active;not null;default:true"`

	// Owner whose workspace this sub-account belongs to (managers, drivers,
	// agents, investors, references). Nil for top-level users.
	OwnerID *uuid.UUID `gorm:"column:owner_id;type:uuid;index"`

	// Investor accumulators. EarnedProfit only grows, and never past
	// TargetProfit while the target is positive. A zero target means the
	// investor is unbounded.
	InvestorStatus   *enums.InvestorStatus `gorm:"column:investor_status;type:text"`
	ProfitPercentage decimal.Decimal       `gorm:"column:profit_percentage;type:numeric(6,2);not null;default:0"`
	InvestedAmount   decimal.Decimal       `gorm:"column:invested_amount;type:numeric(12,2);not null;default:0"`
	TargetProfit     decimal.Decimal       `gorm:"column:target_profit;type:numeric(12,2);not null;default:0"`
	EarnedProfit     decimal.Decimal       `gorm:"column:earned_profit;type:numeric(12,2);not null;default:0"`
	PendingGross     decimal.Decimal       `gorm:"column:pending_gross;type:numeric(12,2);not null;default:0"`

	// Driver default, used when an order carries no per-order override.
	CommissionPerOrder decimal.Decimal `gorm:"column:commission_per_order;type:numeric(12,2);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
