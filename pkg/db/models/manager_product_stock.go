package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/droptide/droptide-backend/pkg/enums"
)

// ManagerProductStock is a manager's carve-out (tier-1 allocation) of the
// owner's country-level stock. The sum over all managers for one
// (owner, product, country) must never exceed the owner's country counter.
type ManagerProductStock struct {
	ID        uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID   uuid.UUID     `gorm:"column:owner_id;type:uuid;not null;uniqueIndex:ux_manager_product_stock"`
	ManagerID uuid.UUID     `gorm:"column:manager_id;type:uuid;not null;uniqueIndex:ux_manager_product_stock"`
	ProductID uuid.UUID     `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_manager_product_stock"`
	Country   enums.Country `gorm:"column:country;type:text;not null;uniqueIndex:ux_manager_product_stock"`
	Qty       int           `gorm:"column:qty;not null;default:0"`
	CreatedAt time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
