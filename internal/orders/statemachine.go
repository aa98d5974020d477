package orders

import (
	"github.com/google/uuid"

	"github.com/droptide/droptide-backend/pkg/db/models"
	"github.com/droptide/droptide-backend/pkg/enums"
	pkgerrors "github.com/droptide/droptide-backend/pkg/errors"
)

// Actor is the authenticated identity a guard decision is made for.
type Actor struct {
	ID   uuid.UUID
	Role enums.Role
}

// driverTargets are the statuses a driver may move an order into, on top of
// the cancel/return exits.
var driverTargets = map[enums.ShipmentStatus]bool{
	enums.ShipmentStatusNoResponse:     true,
	enums.ShipmentStatusAttempted:      true,
	enums.ShipmentStatusContacted:      true,
	enums.ShipmentStatusPickedUp:       true,
	enums.ShipmentStatusOutForDelivery: true,
	enums.ShipmentStatusDelivered:      true,
	enums.ShipmentStatusReturned:       true,
	enums.ShipmentStatusCancelled:      true,
}

// CanTransition decides whether the actor may move the order into target.
// Privileged roles move freely, including out of terminal states; everyone
// else is stopped at a terminal and further narrowed by role.
func CanTransition(actor Actor, order *models.Order, target enums.ShipmentStatus) error {
	if !target.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown shipment status")
	}
	from := order.Status
	if from == target {
		return pkgerrors.InvalidTransition(string(from), string(target))
	}
	if actor.Role.IsPrivileged() {
		return nil
	}
	if from.IsTerminal() {
		return pkgerrors.InvalidTransition(string(from), string(target))
	}

	switch actor.Role {
	case enums.RoleDriver:
		if order.DriverID == nil || *order.DriverID != actor.ID {
			return pkgerrors.NotAllowed("move an order assigned to another driver")
		}
		if !driverTargets[target] {
			return pkgerrors.InvalidTransition(string(from), string(target))
		}
		return nil
	case enums.RoleManager:
		if order.ManagerID == nil || *order.ManagerID != actor.ID {
			return pkgerrors.NotAllowed("move an order outside your assignment")
		}
		return nil
	case enums.RoleAgent:
		if order.CreatedBy != actor.ID {
			return pkgerrors.NotAllowed("move an order created by someone else")
		}
		if target != enums.ShipmentStatusReturned && target != enums.ShipmentStatusCancelled {
			return pkgerrors.InvalidTransition(string(from), string(target))
		}
		return nil
	default:
		return pkgerrors.NotAllowed("change order status")
	}
}
