package types

import (
	"github.com/google/uuid"
)

// ConsumedItem records one product quantity taken from a stock tier.
type ConsumedItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Qty       int       `json:"qty"`
}

// ManagerStockConsumed is the snapshot of exactly what an order reserved
// from a manager sub-allocation. Release reads this snapshot, never the
// product's current stock fields, so restoration stays exact even if the
// allocation rows were edited or deleted after the reservation.
type ManagerStockConsumed struct {
	OwnerID   uuid.UUID      `json:"owner_id"`
	ManagerID uuid.UUID      `json:"manager_id"`
	Country   string         `json:"country"`
	Items     []ConsumedItem `json:"items"`
}

// IsZero reports whether no snapshot was recorded.
func (m *ManagerStockConsumed) IsZero() bool {
	return m == nil || (m.ManagerID == uuid.Nil && len(m.Items) == 0)
}
