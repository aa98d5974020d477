package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder           OutboxAggregateType = "order"
	AggregateStockAllocation OutboxAggregateType = "stock_allocation"
	AggregatePayout          OutboxAggregateType = "payout"
	AggregateReturn          OutboxAggregateType = "return"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateStockAllocation,
	AggregatePayout,
	AggregateReturn,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order_created"
	EventOrderStatusChanged OutboxEventType = "order_status_changed"
	EventOrderAssigned      OutboxEventType = "order_assigned"
	EventOrderConfirmed     OutboxEventType = "order_confirmation_changed"
	EventOrderDeleted       OutboxEventType = "order_deleted"
	EventStockReserved      OutboxEventType = "stock_reserved"
	EventStockReleased      OutboxEventType = "stock_released"
	EventStockAllocationSet OutboxEventType = "stock_allocation_set"
	EventPayoutFinalized    OutboxEventType = "payout_finalized"
	EventReturnSubmitted    OutboxEventType = "return_submitted"
	EventReturnVerified     OutboxEventType = "return_verified"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderStatusChanged,
	EventOrderAssigned,
	EventOrderConfirmed,
	EventOrderDeleted,
	EventStockReserved,
	EventStockReleased,
	EventStockAllocationSet,
	EventPayoutFinalized,
	EventReturnSubmitted,
	EventReturnVerified,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
