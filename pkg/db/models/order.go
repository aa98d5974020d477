package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/droptide/droptide-backend/pkg/enums"
	"github.com/droptide/droptide-backend/pkg/types"
)

// Order is the central fulfillment record. Stock consumption snapshots and
// payout attributions are embedded as jsonb so the release and finalization
// paths read exactly what creation wrote, regardless of later catalog edits.
type Order struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	InvoiceNumber  string     `gorm:"column:invoice_number;uniqueIndex;not null"`
	OwnerID        uuid.UUID  `gorm:"column:owner_id;type:uuid;not null;index"`
	CreatedBy      uuid.UUID  `gorm:"column:created_by;type:uuid;not null;index"`
	CreatedByRole  enums.Role `gorm:"column:created_by_role;type:text;not null"`
	ManagerID      *uuid.UUID `gorm:"column:manager_id;type:uuid;index"`
	DriverID       *uuid.UUID `gorm:"column:driver_id;type:uuid;index"`
	CommissionerID *uuid.UUID `gorm:"column:commissioner_id;type:uuid"`

	CustomerName    string        `gorm:"column:customer_name;not null"`
	CustomerPhone   string        `gorm:"column:customer_phone;not null"`
	CustomerAddress string        `gorm:"column:customer_address"`
	Country         enums.Country `gorm:"column:country;type:text;not null"`
	City            string        `gorm:"column:city"`

	Currency     enums.Currency           `gorm:"column:currency;type:text;not null;default:'USD'"`
	Status       enums.ShipmentStatus     `gorm:"column:status;type:text;not null;default:'pending'"`
	Confirmation enums.ConfirmationStatus `gorm:"column:confirmation_status;type:text;not null;default:'pending'"`

	Total           decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	Discount        decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	CODAmount       decimal.Decimal `gorm:"column:cod_amount;type:numeric(12,2);not null;default:0"`
	CollectedAmount decimal.Decimal `gorm:"column:collected_amount;type:numeric(12,2);not null;default:0"`
	ShippingFee     decimal.Decimal `gorm:"column:shipping_fee;type:numeric(12,2);not null;default:0"`
	BalanceDue      decimal.Decimal `gorm:"column:balance_due;type:numeric(12,2);not null;default:0"`

	DropshipperProfit      *types.DropshipperProfitShare `gorm:"column:dropshipper_profit;type:jsonb;serializer:json"`
	InvestorShares         []types.InvestorProfitShare   `gorm:"column:investor_shares;type:jsonb;serializer:json"`
	DriverCommission       decimal.Decimal               `gorm:"column:driver_commission;type:numeric(12,2);not null;default:0"`
	AgentCommissionPKR     decimal.Decimal               `gorm:"column:agent_commission_pkr;type:numeric(12,2);not null;default:0"`
	CommissionerCommission decimal.Decimal               `gorm:"column:commissioner_commission;type:numeric(12,2);not null;default:0"`
	PayoutFinalizedAt      *time.Time                    `gorm:"column:payout_finalized_at"`

	ManagerStockConsumed *types.ManagerStockConsumed `gorm:"column:manager_stock_consumed;type:jsonb;serializer:json"`
	InventoryAdjusted    bool                        `gorm:"column:inventory_adjusted;not null;default:false"`

	ReturnReason             *string    `gorm:"column:return_reason"`
	ReturnSubmittedToCompany bool       `gorm:"column:return_submitted_to_company;not null;default:false"`
	ReturnSubmittedAt        *time.Time `gorm:"column:return_submitted_at"`
	ReturnVerified           bool       `gorm:"column:return_verified;not null;default:false"`
	ReturnVerifiedAt         *time.Time `gorm:"column:return_verified_at"`
	ReturnVerifiedBy         *uuid.UUID `gorm:"column:return_verified_by;type:uuid"`

	ConfirmedAt      *time.Time `gorm:"column:confirmed_at"`
	PickedUpAt       *time.Time `gorm:"column:picked_up_at"`
	ShippedAt        *time.Time `gorm:"column:shipped_at"`
	OutForDeliveryAt *time.Time `gorm:"column:out_for_delivery_at"`
	DeliveredAt      *time.Time `gorm:"column:delivered_at"`
	ReturnedAt       *time.Time `gorm:"column:returned_at"`
	CancelledAt      *time.Time `gorm:"column:cancelled_at"`

	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
