package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/droptide/droptide-backend/pkg/enums"
	"github.com/droptide/droptide-backend/pkg/types"
)

// OrderCreatedEvent signals a new order with its reserved stock and invoice.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID       `json:"order_id"`
	InvoiceNumber string          `json:"invoice_number"`
	OwnerID       uuid.UUID       `json:"owner_id"`
	CreatedBy     uuid.UUID       `json:"created_by"`
	CreatedByRole enums.Role      `json:"created_by_role"`
	Country       enums.Country   `json:"country"`
	Currency      enums.Currency  `json:"currency"`
	Total         decimal.Decimal `json:"total"`
}

// OrderStatusChangedEvent is emitted on every shipment transition. The
// creator, owner and driver ids are the channels downstream notifiers fan
// out to.
type OrderStatusChangedEvent struct {
	OrderID       uuid.UUID            `json:"order_id"`
	InvoiceNumber string               `json:"invoice_number"`
	From          enums.ShipmentStatus `json:"from"`
	To            enums.ShipmentStatus `json:"to"`
	ActorRole     enums.Role           `json:"actor_role"`
	OwnerID       uuid.UUID            `json:"owner_id"`
	CreatedBy     uuid.UUID            `json:"created_by"`
	DriverID      *uuid.UUID           `json:"driver_id,omitempty"`
}

// OrderAssignedEvent reports a driver or manager assignment.
type OrderAssignedEvent struct {
	OrderID       uuid.UUID  `json:"order_id"`
	InvoiceNumber string     `json:"invoice_number"`
	AssigneeID    uuid.UUID  `json:"assignee_id"`
	AssigneeRole  enums.Role `json:"assignee_role"`
	AssignedBy    uuid.UUID  `json:"assigned_by"`
}

// OrderConfirmationChangedEvent reports the pre-delivery QA decision.
type OrderConfirmationChangedEvent struct {
	OrderID       uuid.UUID                `json:"order_id"`
	InvoiceNumber string                   `json:"invoice_number"`
	Confirmation  enums.ConfirmationStatus `json:"confirmation"`
	DecidedBy     uuid.UUID                `json:"decided_by"`
}

// OrderDeletedEvent is emitted after a delete restored the reserved stock.
type OrderDeletedEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	InvoiceNumber string    `json:"invoice_number"`
	DeletedBy     uuid.UUID `json:"deleted_by"`
}

// StockReservedEvent records the exact quantities an order consumed.
type StockReservedEvent struct {
	OrderID   uuid.UUID            `json:"order_id"`
	OwnerID   uuid.UUID            `json:"owner_id"`
	ManagerID *uuid.UUID           `json:"manager_id,omitempty"`
	Country   enums.Country        `json:"country"`
	Items     []types.ConsumedItem `json:"items"`
}

// StockReleasedEvent records a restoration, with the path that triggered it.
type StockReleasedEvent struct {
	OrderID   uuid.UUID            `json:"order_id"`
	OwnerID   uuid.UUID            `json:"owner_id"`
	ManagerID *uuid.UUID           `json:"manager_id,omitempty"`
	Country   enums.Country        `json:"country"`
	Items     []types.ConsumedItem `json:"items"`
	Reason    string               `json:"reason"`
}

// StockAllocationSetEvent reports a manager allocation change.
type StockAllocationSetEvent struct {
	OwnerID   uuid.UUID     `json:"owner_id"`
	ManagerID uuid.UUID     `json:"manager_id"`
	ProductID uuid.UUID     `json:"product_id"`
	Country   enums.Country `json:"country"`
	Qty       int           `json:"qty"`
}

// PayoutFinalizedEvent carries the settled waterfall amounts for one order.
type PayoutFinalizedEvent struct {
	OrderID           uuid.UUID       `json:"order_id"`
	InvoiceNumber     string          `json:"invoice_number"`
	DropshipperAmount decimal.Decimal `json:"dropshipper_amount"`
	InvestorAmount    decimal.Decimal `json:"investor_amount"`
	ReferenceSkim     decimal.Decimal `json:"reference_skim"`
	DriverCommission  decimal.Decimal `json:"driver_commission"`
	AgentCommission   decimal.Decimal `json:"agent_commission"`
	FinalizedAt       time.Time       `json:"finalized_at"`
}

// ReturnSubmittedEvent reports a driver handing a returned order back.
type ReturnSubmittedEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	InvoiceNumber string    `json:"invoice_number"`
	DriverID      uuid.UUID `json:"driver_id"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// ReturnVerifiedEvent reports company-side verification and stock restore.
type ReturnVerifiedEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	InvoiceNumber string    `json:"invoice_number"`
	VerifiedBy    uuid.UUID `json:"verified_by"`
	VerifiedAt    time.Time `json:"verified_at"`
}
