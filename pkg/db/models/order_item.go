package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is a priced line snapshot. Unit prices are copied from the
// product at creation so payout math is immune to later catalog edits.
type OrderItem struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID           uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID         uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	SKU               string          `gorm:"column:sku;not null"`
	Title             string          `gorm:"column:title;not null"`
	Qty               int             `gorm:"column:qty;not null"`
	UnitPrice         decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	PurchasePrice     decimal.Decimal `gorm:"column:purchase_price;type:numeric(12,2);not null;default:0"`
	DropshippingPrice decimal.Decimal `gorm:"column:dropshipping_price;type:numeric(12,2);not null;default:0"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
}
