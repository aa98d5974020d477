package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/droptide/droptide-backend/internal/orders"
	"github.com/droptide/droptide-backend/internal/stock"
	"github.com/droptide/droptide-backend/pkg/db/models"
	"github.com/droptide/droptide-backend/pkg/enums"
	pkgerrors "github.com/droptide/droptide-backend/pkg/errors"
	"github.com/droptide/droptide-backend/pkg/logger"
	"github.com/droptide/droptide-backend/pkg/metrics"
	"github.com/droptide/droptide-backend/pkg/outbox"
	"github.com/droptide/droptide-backend/pkg/outbox/payloads"
	"github.com/droptide/droptide-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the two-step return hand-back: the assigned driver submits the
// physical goods, then company staff verifies and restores stock. Restocking
// happens here and nowhere else, so a returned order whose goods never come
// back never inflates inventory.
type Service interface {
	Submit(ctx context.Context, actor orders.Actor, orderID uuid.UUID) (*models.Order, error)
	Verify(ctx context.Context, actor orders.Actor, orderID uuid.UUID) (*models.Order, error)
}

type service struct {
	repo    orders.Repository
	stock   stock.Service
	tx      txRunner
	outbox  outboxPublisher
	logg    *logger.Logger
	metrics *metrics.FulfillmentMetrics
}

// NewService builds the return workflow service. Metrics are optional.
func NewService(
	repo orders.Repository,
	stockSvc stock.Service,
	tx txRunner,
	publisher outboxPublisher,
	logg *logger.Logger,
	m *metrics.FulfillmentMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if stockSvc == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:    repo,
		stock:   stockSvc,
		tx:      tx,
		outbox:  publisher,
		logg:    logg,
		metrics: m,
	}, nil
}

// Submit marks the goods as handed back to the company. Only the assigned
// driver can submit, only for a returned or cancelled order, and only once.
func (s *service) Submit(ctx context.Context, actor orders.Actor, orderID uuid.UUID) (*models.Order, error) {
	if actor.Role != enums.RoleDriver {
		return nil, pkgerrors.NotAllowed("submit a return")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if loaded == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if loaded.DriverID == nil || *loaded.DriverID != actor.ID {
			return pkgerrors.NotAllowed("submit a return for this order")
		}
		if !returnable(loaded.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not in a returnable state").
				WithDetails(map[string]any{"status": string(loaded.Status)})
		}
		if loaded.ReturnSubmittedToCompany {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "return already submitted")
		}

		now := time.Now()
		loaded.ReturnSubmittedToCompany = true
		loaded.ReturnSubmittedAt = &now
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist return submission")
		}

		order = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReturnSubmitted,
			AggregateType: enums.AggregateReturn,
			AggregateID:   loaded.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: actor.ID, Role: string(actor.Role)},
			Data: payloads.ReturnSubmittedEvent{
				OrderID:       loaded.ID,
				InvoiceNumber: loaded.InvoiceNumber,
				DriverID:      actor.ID,
				SubmittedAt:   now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "return submitted to company")
	}
	return order, nil
}

// Verify confirms the goods arrived and restores whichever stock tier the
// order consumed. Privileged roles and the assigned manager can verify; a
// second verification is rejected rather than double-restocking.
func (s *service) Verify(ctx context.Context, actor orders.Actor, orderID uuid.UUID) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if loaded == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if !actor.Role.IsPrivileged() {
			if actor.Role != enums.RoleManager || loaded.ManagerID == nil || *loaded.ManagerID != actor.ID {
				return pkgerrors.NotAllowed("verify this return")
			}
		}
		if !returnable(loaded.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not in a returnable state").
				WithDetails(map[string]any{"status": string(loaded.Status)})
		}
		if loaded.ReturnVerified {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "return already verified")
		}

		actorRef := &outbox.ActorRef{UserID: actor.ID, Role: string(actor.Role)}
		if loaded.InventoryAdjusted {
			if err := s.restoreStock(ctx, tx, loaded, actorRef); err != nil {
				return err
			}
			loaded.InventoryAdjusted = false
		}

		now := time.Now()
		loaded.ReturnVerified = true
		loaded.ReturnVerifiedAt = &now
		loaded.ReturnVerifiedBy = &actor.ID
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist return verification")
		}

		order = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReturnVerified,
			AggregateType: enums.AggregateReturn,
			AggregateID:   loaded.ID,
			Version:       1,
			Actor:         actorRef,
			Data: payloads.ReturnVerifiedEvent{
				OrderID:       loaded.ID,
				InvoiceNumber: loaded.InvoiceNumber,
				VerifiedBy:    actor.ID,
				VerifiedAt:    now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "return verified, stock restored")
	}
	return order, nil
}

func (s *service) restoreStock(ctx context.Context, tx *gorm.DB, order *models.Order, actorRef *outbox.ActorRef) error {
	stockSvc := s.stock.WithTx(tx)
	var items []types.ConsumedItem

	if !order.ManagerStockConsumed.IsZero() {
		items = order.ManagerStockConsumed.Items
		if err := stockSvc.ReleaseManager(ctx, order.ManagerStockConsumed); err != nil {
			return err
		}
	} else {
		items = make([]types.ConsumedItem, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, types.ConsumedItem{ProductID: item.ProductID, Qty: item.Qty})
		}
		if err := stockSvc.ReleaseGlobal(ctx, order.Country, items); err != nil {
			return err
		}
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventStockReleased,
		AggregateType: enums.AggregateStockAllocation,
		AggregateID:   order.ID,
		Version:       1,
		Actor:         actorRef,
		Data: payloads.StockReleasedEvent{
			OrderID:   order.ID,
			OwnerID:   order.OwnerID,
			ManagerID: order.ManagerID,
			Country:   order.Country,
			Items:     items,
			Reason:    "return_verified",
		},
	})
}

func returnable(status enums.ShipmentStatus) bool {
	return status == enums.ShipmentStatusReturned || status == enums.ShipmentStatusCancelled
}
