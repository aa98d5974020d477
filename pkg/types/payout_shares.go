package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvestorProfitShare is the per-order investor attribution. It is written
// as pending at creation and settled (or zeroed) at delivery finalization.
type InvestorProfitShare struct {
	InvestorID       uuid.UUID       `json:"investor_id"`
	InvestorName     string          `json:"investor_name"`
	ProfitPercentage decimal.Decimal `json:"profit_percentage"`
	ProfitAmount     decimal.Decimal `json:"profit_amount"`
	IsPending        bool            `json:"is_pending"`
	AssignedAt       time.Time       `json:"assigned_at"`
}

// DropshipperProfitShare is the margin owed to a dropshipper creator,
// recomputed (overwritten, never accumulated) at delivery.
type DropshipperProfitShare struct {
	Amount decimal.Decimal `json:"amount"`
	IsPaid bool            `json:"is_paid"`
	PaidAt *time.Time      `json:"paid_at,omitempty"`
	PaidBy *uuid.UUID      `json:"paid_by,omitempty"`
}
