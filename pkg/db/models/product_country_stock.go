package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/droptide/droptide-backend/pkg/enums"
)

// ProductCountryStock is the owner-level (tier-2) per-country counter for a
// product. Reservations decrement qty through a conditional update so the
// counter never goes negative.
type ProductCountryStock struct {
	ProductID uuid.UUID     `gorm:"column:product_id;type:uuid;primaryKey;uniqueIndex:ux_product_country"`
	Country   enums.Country `gorm:"column:country;type:text;primaryKey;uniqueIndex:ux_product_country"`
	Qty       int           `gorm:"column:qty;not null;default:0"`
	UpdatedAt time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
