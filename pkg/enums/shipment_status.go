package enums

import "fmt"

// ShipmentStatus tracks the delivery lifecycle of an order.
type ShipmentStatus string

const (
	ShipmentStatusPending        ShipmentStatus = "pending"
	ShipmentStatusAssigned       ShipmentStatus = "assigned"
	ShipmentStatusPickedUp       ShipmentStatus = "picked_up"
	ShipmentStatusInTransit      ShipmentStatus = "in_transit"
	ShipmentStatusOutForDelivery ShipmentStatus = "out_for_delivery"
	ShipmentStatusNoResponse     ShipmentStatus = "no_response"
	ShipmentStatusAttempted      ShipmentStatus = "attempted"
	ShipmentStatusContacted      ShipmentStatus = "contacted"
	ShipmentStatusDelivered      ShipmentStatus = "delivered"
	ShipmentStatusReturned       ShipmentStatus = "returned"
	ShipmentStatusCancelled      ShipmentStatus = "cancelled"
)

var validShipmentStatuses = []ShipmentStatus{
	ShipmentStatusPending,
	ShipmentStatusAssigned,
	ShipmentStatusPickedUp,
	ShipmentStatusInTransit,
	ShipmentStatusOutForDelivery,
	ShipmentStatusNoResponse,
	ShipmentStatusAttempted,
	ShipmentStatusContacted,
	ShipmentStatusDelivered,
	ShipmentStatusReturned,
	ShipmentStatusCancelled,
}

// String implements fmt.Stringer.
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShipmentStatus.
func (s ShipmentStatus) IsValid() bool {
	for _, candidate := range validShipmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the delivery lifecycle.
// Only privileged roles may move an order out of a terminal status.
func (s ShipmentStatus) IsTerminal() bool {
	switch s {
	case ShipmentStatusDelivered, ShipmentStatusReturned, ShipmentStatusCancelled:
		return true
	default:
		return false
	}
}

// IsLateral reports whether the status is a lateral exit that keeps the
// order inside the active delivery set.
func (s ShipmentStatus) IsLateral() bool {
	switch s {
	case ShipmentStatusNoResponse, ShipmentStatusAttempted, ShipmentStatusContacted:
		return true
	default:
		return false
	}
}

// ParseShipmentStatus converts raw input into a ShipmentStatus. The legacy
// value "shipped" is accepted and mapped to in_transit.
func ParseShipmentStatus(value string) (ShipmentStatus, error) {
	if value == "shipped" {
		return ShipmentStatusInTransit, nil
	}
	for _, candidate := range validShipmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipment status %q", value)
}
