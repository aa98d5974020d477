package orders

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/droptide/droptide-backend/pkg/db/models"
	"github.com/droptide/droptide-backend/pkg/enums"
	pkgerrors "github.com/droptide/droptide-backend/pkg/errors"
)

func TestCanTransitionTable(t *testing.T) {
	driverID := uuid.New()
	managerID := uuid.New()
	agentID := uuid.New()

	orderFor := func(status enums.ShipmentStatus) *models.Order {
		return &models.Order{
			Status:    status,
			CreatedBy: agentID,
			DriverID:  &driverID,
			ManagerID: &managerID,
		}
	}

	tests := []struct {
		name     string
		actor    Actor
		from     enums.ShipmentStatus
		target   enums.ShipmentStatus
		wantCode pkgerrors.Code
	}{
		{
			name:   "admin reverses delivered",
			actor:  Actor{ID: uuid.New(), Role: enums.RoleAdmin},
			from:   enums.ShipmentStatusDelivered,
			target: enums.ShipmentStatusReturned,
		},
		{
			name:   "owner moves freely",
			actor:  Actor{ID: uuid.New(), Role: enums.RoleUser},
			from:   enums.ShipmentStatusCancelled,
			target: enums.ShipmentStatusPending,
		},
		{
			name:     "driver never exits delivered",
			actor:    Actor{ID: driverID, Role: enums.RoleDriver},
			from:     enums.ShipmentStatusDelivered,
			target:   enums.ShipmentStatusInTransit,
			wantCode: pkgerrors.CodeStateConflict,
		},
		{
			name:   "driver delivers own order",
			actor:  Actor{ID: driverID, Role: enums.RoleDriver},
			from:   enums.ShipmentStatusOutForDelivery,
			target: enums.ShipmentStatusDelivered,
		},
		{
			name:     "driver cannot move foreign order",
			actor:    Actor{ID: uuid.New(), Role: enums.RoleDriver},
			from:     enums.ShipmentStatusAssigned,
			target:   enums.ShipmentStatusPickedUp,
			wantCode: pkgerrors.CodeForbidden,
		},
		{
			name:     "driver cannot move into in_transit",
			actor:    Actor{ID: driverID, Role: enums.RoleDriver},
			from:     enums.ShipmentStatusPickedUp,
			target:   enums.ShipmentStatusInTransit,
			wantCode: pkgerrors.CodeStateConflict,
		},
		{
			name:   "driver lateral exit",
			actor:  Actor{ID: driverID, Role: enums.RoleDriver},
			from:   enums.ShipmentStatusOutForDelivery,
			target: enums.ShipmentStatusNoResponse,
		},
		{
			name:   "manager moves assigned order",
			actor:  Actor{ID: managerID, Role: enums.RoleManager},
			from:   enums.ShipmentStatusPending,
			target: enums.ShipmentStatusAssigned,
		},
		{
			name:     "manager never exits delivered",
			actor:    Actor{ID: managerID, Role: enums.RoleManager},
			from:     enums.ShipmentStatusDelivered,
			target:   enums.ShipmentStatusPending,
			wantCode: pkgerrors.CodeStateConflict,
		},
		{
			name:   "agent cancels own order",
			actor:  Actor{ID: agentID, Role: enums.RoleAgent},
			from:   enums.ShipmentStatusPending,
			target: enums.ShipmentStatusCancelled,
		},
		{
			name:     "agent cannot advance shipment",
			actor:    Actor{ID: agentID, Role: enums.RoleAgent},
			from:     enums.ShipmentStatusPending,
			target:   enums.ShipmentStatusPickedUp,
			wantCode: pkgerrors.CodeStateConflict,
		},
		{
			name:     "agent cannot cancel foreign order",
			actor:    Actor{ID: uuid.New(), Role: enums.RoleAgent},
			from:     enums.ShipmentStatusPending,
			target:   enums.ShipmentStatusCancelled,
			wantCode: pkgerrors.CodeForbidden,
		},
		{
			name:     "dropshipper cannot transition",
			actor:    Actor{ID: uuid.New(), Role: enums.RoleDropshipper},
			from:     enums.ShipmentStatusPending,
			target:   enums.ShipmentStatusCancelled,
			wantCode: pkgerrors.CodeForbidden,
		},
		{
			name:     "same state is rejected",
			actor:    Actor{ID: uuid.New(), Role: enums.RoleAdmin},
			from:     enums.ShipmentStatusPending,
			target:   enums.ShipmentStatusPending,
			wantCode: pkgerrors.CodeStateConflict,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CanTransition(tc.actor, orderFor(tc.from), tc.target)
			if tc.wantCode == "" {
				require.NoError(t, err)
				return
			}
			appErr := pkgerrors.As(err)
			require.NotNil(t, appErr)
			require.Equal(t, tc.wantCode, appErr.Code())
		})
	}
}

func TestCanTransitionRejectsUnknownStatus(t *testing.T) {
	err := CanTransition(Actor{ID: uuid.New(), Role: enums.RoleAdmin},
		&models.Order{Status: enums.ShipmentStatusPending}, enums.ShipmentStatus("lost"))
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}
