package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable listing owned by a top-level seller. Per-country
// quantities live in ProductCountryStock rows; StockQty and InStock are
// derived and recomputed on every stock mutation.
type Product struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID           uuid.UUID             `gorm:"column:owner_id;type:uuid;not null;index"`
	SKU               string                `gorm:"column:sku;not null"`
	Title             string                `gorm:"column:title;not null"`
	Price             decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	PurchasePrice     decimal.Decimal       `gorm:"column:purchase_price;type:numeric(12,2);not null;default:0"`
	DropshippingPrice decimal.Decimal       `gorm:"column:dropshipping_price;type:numeric(12,2);not null;default:0"`
	StockQty          int                   `gorm:"column:stock_qty;not null;default:0"`
	InStock           bool                  `gorm:"column:in_stock;not null;default:false"`
	IsActive          bool                  `gorm:"column:is_active;not null;default:true"`
	CountryStocks     []ProductCountryStock `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
