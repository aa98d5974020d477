package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/droptide/droptide-backend/internal/payouts"
	"github.com/droptide/droptide-backend/internal/sequence"
	"github.com/droptide/droptide-backend/internal/stock"
	"github.com/droptide/droptide-backend/pkg/config"
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

// duplicateGuard is the slice of the redis client the duplicate-submission
// window needs. A nil guard disables the window.
type duplicateGuard interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	DuplicateOrderKey(creatorID, fingerprint string) string
}

// Service drives the order lifecycle: creation with synchronous stock
// reservation, the role-gated status machine, assignments, and deletion.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error)
	Transition(ctx context.Context, actor Actor, id uuid.UUID, input TransitionInput) (*models.Order, error)
	SetConfirmation(ctx context.Context, actor Actor, id uuid.UUID, status enums.ConfirmationStatus) (*models.Order, error)
	AssignDriver(ctx context.Context, actor Actor, orderID, driverID uuid.UUID) (*models.Order, error)
	AssignManager(ctx context.Context, actor Actor, orderID, managerID uuid.UUID) (*models.Order, error)
	Delete(ctx context.Context, actor Actor, orderID uuid.UUID) error
}

type service struct {
	repo       Repository
	stock      stock.Service
	sequences  sequence.Service
	payouts    payouts.Service
	tx         txRunner
	outbox     outboxPublisher
	duplicates duplicateGuard
	logg       *logger.Logger
	metrics    *metrics.FulfillmentMetrics
	cfg        config.OrdersConfig
}

// NewService builds the order service. The duplicate guard and metrics are
// optional; everything else is required.
func NewService(
	repo Repository,
	stockSvc stock.Service,
	sequences sequence.Service,
	payoutSvc payouts.Service,
	tx txRunner,
	publisher outboxPublisher,
	duplicates duplicateGuard,
	logg *logger.Logger,
	m *metrics.FulfillmentMetrics,
	cfg config.OrdersConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if stockSvc == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if sequences == nil {
		return nil, fmt.Errorf("sequence service required")
	}
	if payoutSvc == nil {
		return nil, fmt.Errorf("payout service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:       repo,
		stock:      stockSvc,
		sequences:  sequences,
		payouts:    payoutSvc,
		tx:         tx,
		outbox:     publisher,
		duplicates: duplicates,
		logg:       logg,
		metrics:    m,
		cfg:        cfg,
	}, nil
}

// Create reserves stock, issues the invoice number, runs the creation-time
// waterfall steps and persists the order, all in one transaction. A repeat
// submission inside the duplicate window returns the already-created order.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}
	country := enums.CanonicalCountry(input.Country)
	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyForCountry(country)
	}

	orderID := uuid.New()
	if existing, err := s.checkDuplicateWindow(ctx, input, orderID); err != nil || existing != nil {
		return existing, err
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		items, computedTotal, err := s.buildItems(ctx, repo, input)
		if err != nil {
			return err
		}
		total := input.Total
		if total.IsZero() {
			total = computedTotal.Sub(input.Discount)
			if total.IsNegative() {
				total = decimal.Zero
			}
		}

		order = &models.Order{
			ID:               orderID,
			OwnerID:          input.OwnerID,
			CreatedBy:        input.Actor.ID,
			CreatedByRole:    input.Actor.Role,
			CustomerName:     strings.TrimSpace(input.CustomerName),
			CustomerPhone:    strings.TrimSpace(input.CustomerPhone),
			CustomerAddress:  strings.TrimSpace(input.CustomerAddress),
			Country:          country,
			City:             strings.TrimSpace(input.City),
			Currency:         currency,
			Status:           enums.ShipmentStatusPending,
			Confirmation:     enums.ConfirmationStatusPending,
			Total:            total,
			Discount:         input.Discount,
			ShippingFee:      input.ShippingFee,
			CODAmount:        input.CODAmount,
			DriverCommission: input.DriverCommission,
			Items:            items,
		}

		consumed := consumedFromInput(input.Items)
		stockSvc := s.stock.WithTx(tx)
		if input.Actor.Role == enums.RoleManager {
			snapshot, err := stockSvc.ReserveManager(ctx, stock.ReserveManagerInput{
				OwnerID:   input.OwnerID,
				ManagerID: input.Actor.ID,
				Country:   country,
				Items:     consumed,
			})
			if err != nil {
				return err
			}
			order.ManagerStockConsumed = snapshot
			order.ManagerID = &input.Actor.ID
		} else {
			if err := stockSvc.ReserveGlobal(ctx, stock.ReserveGlobalInput{
				Country: country,
				Items:   consumed,
			}); err != nil {
				return err
			}
		}
		order.InventoryAdjusted = true

		invoice, err := s.sequences.WithTx(tx).NextInvoice(ctx, s.cfg.InvoiceSequence)
		if err != nil {
			return err
		}
		order.InvoiceNumber = invoice

		payoutSvc := s.payouts.WithTx(tx)
		if err := payoutSvc.PreassignInvestor(ctx, order); err != nil {
			return err
		}
		if err := payoutSvc.AssignCommissioner(ctx, order); err != nil {
			return err
		}

		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}

		actorRef := &outbox.ActorRef{UserID: input.Actor.ID, Role: string(input.Actor.Role)}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actorRef,
			Data: payloads.OrderCreatedEvent{
				OrderID:       order.ID,
				InvoiceNumber: order.InvoiceNumber,
				OwnerID:       order.OwnerID,
				CreatedBy:     order.CreatedBy,
				CreatedByRole: order.CreatedByRole,
				Country:       order.Country,
				Currency:      order.Currency,
				Total:         order.Total,
			},
		}); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStockReserved,
			AggregateType: enums.AggregateStockAllocation,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actorRef,
			Data: payloads.StockReservedEvent{
				OrderID:   order.ID,
				OwnerID:   order.OwnerID,
				ManagerID: order.ManagerID,
				Country:   order.Country,
				Items:     consumed,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":       order.ID.String(),
			"invoice_number": order.InvoiceNumber,
			"country":        order.Country,
		})
		s.logg.Info(logCtx, "order created")
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err := canRead(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Transition moves the order through the state machine. Delivery triggers
// payout finalization in its own follow-up transaction so a waterfall
// failure can never undo a physical delivery.
func (s *service) Transition(ctx context.Context, actor Actor, id uuid.UUID, input TransitionInput) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if loaded == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if err := CanTransition(actor, loaded, input.Target); err != nil {
			return err
		}

		from := loaded.Status
		applyEntryEffects(loaded, input)
		loaded.Status = input.Target
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist transition")
		}

		order = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   loaded.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: actor.ID, Role: string(actor.Role)},
			Data: payloads.OrderStatusChangedEvent{
				OrderID:       loaded.ID,
				InvoiceNumber: loaded.InvoiceNumber,
				From:          from,
				To:            input.Target,
				ActorRole:     actor.Role,
				OwnerID:       loaded.OwnerID,
				CreatedBy:     loaded.CreatedBy,
				DriverID:      loaded.DriverID,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if input.Target == enums.ShipmentStatusDelivered {
		if refreshed := s.finalizeDelivered(ctx, order.ID); refreshed != nil {
			order = refreshed
		}
	}
	return order, nil
}

// finalizeDelivered runs the waterfall after the delivery committed. Errors
// are logged and counted, never propagated: the order stays delivered with
// payout_finalized_at unset so a later pass can settle it.
func (s *service) finalizeDelivered(ctx context.Context, orderID uuid.UUID) *models.Order {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if loaded == nil || loaded.Status != enums.ShipmentStatusDelivered {
			return nil
		}
		_, finalizeErr := s.payouts.WithTx(tx).FinalizeDelivery(ctx, loaded)
		if finalizeErr != nil && loaded.PayoutFinalizedAt == nil {
			return finalizeErr
		}
		if finalizeErr != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithOrderID(ctx, loaded.ID.String()), "payout finalization skipped components: "+finalizeErr.Error())
		}
		if err := repo.Save(ctx, loaded); err != nil {
			return err
		}
		order = loaded
		return nil
	})
	if err != nil {
		s.metrics.IncPayout("order", "error")
		if s.logg != nil {
			s.logg.Error(s.logg.WithOrderID(ctx, orderID.String()), "payout finalization failed", err)
		}
		return nil
	}
	return order
}

func (s *service) SetConfirmation(ctx context.Context, actor Actor, id uuid.UUID, status enums.ConfirmationStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown confirmation status")
	}
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if loaded == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if !actor.Role.IsPrivileged() {
			if actor.Role != enums.RoleManager || loaded.ManagerID == nil || *loaded.ManagerID != actor.ID {
				return pkgerrors.NotAllowed("confirm this order")
			}
			if loaded.Status.IsTerminal() {
				return pkgerrors.InvalidTransition(string(loaded.Status), string(loaded.Status))
			}
		}

		loaded.Confirmation = status
		if status == enums.ConfirmationStatusConfirmed && loaded.ConfirmedAt == nil {
			now := time.Now()
			loaded.ConfirmedAt = &now
		}
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist confirmation")
		}

		order = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderConfirmed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   loaded.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: actor.ID, Role: string(actor.Role)},
			Data: payloads.OrderConfirmationChangedEvent{
				OrderID:       loaded.ID,
				InvoiceNumber: loaded.InvoiceNumber,
				Confirmation:  status,
				DecidedBy:     actor.ID,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// AssignDriver attaches a driver. Countries must match; the city must match
// too when a user-role actor assigns (managers and admins bypass the city
// rule).
func (s *service) AssignDriver(ctx context.Context, actor Actor, orderID, driverID uuid.UUID) (*models.Order, error) {
	return s.assign(ctx, actor, orderID, driverID, enums.RoleDriver)
}

// AssignManager hands the order to a manager in the same country.
func (s *service) AssignManager(ctx context.Context, actor Actor, orderID, managerID uuid.UUID) (*models.Order, error) {
	return s.assign(ctx, actor, orderID, managerID, enums.RoleManager)
}

func (s *service) assign(ctx context.Context, actor Actor, orderID, assigneeID uuid.UUID, wantRole enums.Role) (*models.Order, error) {
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
			if wantRole == enums.RoleManager {
				return pkgerrors.NotAllowed("assign a manager")
			}
			if actor.Role != enums.RoleManager || loaded.ManagerID == nil || *loaded.ManagerID != actor.ID {
				return pkgerrors.NotAllowed("assign a driver to this order")
			}
		}

		assignee, err := repo.FindUser(ctx, assigneeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignee")
		}
		if assignee == nil || assignee.Role != wantRole || !assignee.IsActive {
			return pkgerrors.New(pkgerrors.CodeNotFound, "assignee not found")
		}
		if enums.CanonicalCountry(string(assignee.Country)) != loaded.Country {
			return pkgerrors.CountryMismatch(string(assignee.Country), string(loaded.Country))
		}
		if wantRole == enums.RoleDriver && actor.Role == enums.RoleUser &&
			!strings.EqualFold(assignee.City, loaded.City) {
			return pkgerrors.CityMismatch(assignee.City, loaded.City)
		}

		if wantRole == enums.RoleDriver {
			loaded.DriverID = &assignee.ID
		} else {
			loaded.ManagerID = &assignee.ID
		}
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist assignment")
		}

		order = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderAssigned,
			AggregateType: enums.AggregateOrder,
			AggregateID:   loaded.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: actor.ID, Role: string(actor.Role)},
			Data: payloads.OrderAssignedEvent{
				OrderID:       loaded.ID,
				InvoiceNumber: loaded.InvoiceNumber,
				AssigneeID:    assignee.ID,
				AssigneeRole:  wantRole,
				AssignedBy:    actor.ID,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Delete removes an order after restoring whatever it reserved. Privileged
// roles only.
func (s *service) Delete(ctx context.Context, actor Actor, orderID uuid.UUID) error {
	if !actor.Role.IsPrivileged() {
		return pkgerrors.NotAllowed("delete an order")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if loaded == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}

		actorRef := &outbox.ActorRef{UserID: actor.ID, Role: string(actor.Role)}
		if loaded.InventoryAdjusted {
			if err := s.releaseOrderStock(ctx, tx, loaded, "order_deleted", actorRef); err != nil {
				return err
			}
			loaded.InventoryAdjusted = false
			if err := repo.Save(ctx, loaded); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist release")
			}
		}

		if err := repo.Delete(ctx, loaded.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDeleted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   loaded.ID,
			Version:       1,
			Actor:         actorRef,
			Data: payloads.OrderDeletedEvent{
				OrderID:       loaded.ID,
				InvoiceNumber: loaded.InvoiceNumber,
				DeletedBy:     actor.ID,
			},
		})
	})
}

// releaseOrderStock restores whichever tier the order consumed and emits the
// release event. Shared by deletion and return verification.
func (s *service) releaseOrderStock(ctx context.Context, tx *gorm.DB, order *models.Order, reason string, actorRef *outbox.ActorRef) error {
	stockSvc := s.stock.WithTx(tx)
	items := consumedFromOrder(order)

	if !order.ManagerStockConsumed.IsZero() {
		if err := stockSvc.ReleaseManager(ctx, order.ManagerStockConsumed); err != nil {
			return err
		}
	} else {
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
			Reason:    reason,
		},
	})
}

func (s *service) checkDuplicateWindow(ctx context.Context, input CreateOrderInput, orderID uuid.UUID) (*models.Order, error) {
	if s.duplicates == nil || s.cfg.DuplicateWindow <= 0 {
		return nil, nil
	}
	key := s.duplicates.DuplicateOrderKey(input.Actor.ID.String(), input.fingerprint())
	set, err := s.duplicates.SetNX(ctx, key, orderID.String(), s.cfg.DuplicateWindow)
	if err != nil {
		// the window is a convenience guard, not a correctness gate
		if s.logg != nil {
			s.logg.Warn(ctx, "duplicate window unavailable: "+err.Error())
		}
		return nil, nil
	}
	if set {
		return nil, nil
	}
	existingID, err := s.duplicates.Get(ctx, key)
	if err != nil {
		return nil, nil
	}
	parsed, err := uuid.Parse(existingID)
	if err != nil {
		return nil, nil
	}
	existing, err := s.repo.FindByID(ctx, parsed)
	if err != nil || existing == nil {
		return nil, nil
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, existing.ID.String()), "duplicate submission returned existing order")
	}
	return existing, nil
}

func (s *service) buildItems(ctx context.Context, repo Repository, input CreateOrderInput) ([]models.OrderItem, decimal.Decimal, error) {
	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := repo.LoadProducts(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	items := make([]models.OrderItem, 0, len(input.Items))
	total := decimal.Zero
	for _, item := range input.Items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": item.ProductID.String()})
		}
		if product.OwnerID != input.OwnerID || !product.IsActive {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "product not orderable").
				WithDetails(map[string]any{"product_id": item.ProductID.String()})
		}
		items = append(items, models.OrderItem{
			ID:                uuid.New(),
			ProductID:         product.ID,
			SKU:               product.SKU,
			Title:             product.Title,
			Qty:               item.Qty,
			UnitPrice:         product.Price,
			PurchasePrice:     product.PurchasePrice,
			DropshippingPrice: product.DropshippingPrice,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	return items, total, nil
}

func validateCreate(input CreateOrderInput) error {
	if input.OwnerID == uuid.Nil || input.Actor.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner and actor ids required")
	}
	if strings.TrimSpace(input.CustomerName) == "" || strings.TrimSpace(input.CustomerPhone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name and phone required")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil || item.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "every item needs a product and a positive qty")
		}
	}
	if input.Total.IsNegative() || input.Discount.IsNegative() || input.ShippingFee.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amounts must not be negative")
	}
	return nil
}

func applyEntryEffects(order *models.Order, input TransitionInput) {
	now := time.Now()
	switch input.Target {
	case enums.ShipmentStatusPickedUp:
		order.PickedUpAt = &now
	case enums.ShipmentStatusInTransit:
		order.ShippedAt = &now
	case enums.ShipmentStatusOutForDelivery:
		order.OutForDeliveryAt = &now
	case enums.ShipmentStatusDelivered:
		order.DeliveredAt = &now
		if input.CollectedAmount != nil {
			order.CollectedAmount = *input.CollectedAmount
		}
		if order.CollectedAmount.IsZero() {
			if order.CODAmount.IsPositive() {
				order.CollectedAmount = order.CODAmount
			} else {
				order.CollectedAmount = order.Total
			}
		}
		order.BalanceDue = balanceDue(order.CODAmount, order.CollectedAmount, order.ShippingFee)
	case enums.ShipmentStatusReturned:
		order.ReturnedAt = &now
		if input.ReturnReason != nil {
			order.ReturnReason = input.ReturnReason
		}
	case enums.ShipmentStatusCancelled:
		order.CancelledAt = &now
		if input.ReturnReason != nil {
			order.ReturnReason = input.ReturnReason
		}
	}
}

func balanceDue(cod, collected, shipping decimal.Decimal) decimal.Decimal {
	due := cod.Sub(collected).Sub(shipping)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// canRead is the visibility guard: everyone sees only orders inside their
// own slice of the workspace.
func canRead(actor Actor, order *models.Order) error {
	if actor.Role.IsPrivileged() {
		return nil
	}
	switch actor.Role {
	case enums.RoleManager:
		if order.ManagerID != nil && *order.ManagerID == actor.ID {
			return nil
		}
	case enums.RoleDriver:
		if order.DriverID != nil && *order.DriverID == actor.ID {
			return nil
		}
	case enums.RoleAgent, enums.RoleDropshipper:
		if order.CreatedBy == actor.ID {
			return nil
		}
	case enums.RoleInvestor:
		for _, share := range order.InvestorShares {
			if share.InvestorID == actor.ID {
				return nil
			}
		}
	}
	return pkgerrors.NotAllowed("view this order")
}

func consumedFromInput(items []ItemInput) []types.ConsumedItem {
	out := make([]types.ConsumedItem, 0, len(items))
	for _, item := range items {
		out = append(out, types.ConsumedItem{ProductID: item.ProductID, Qty: item.Qty})
	}
	return out
}

func consumedFromOrder(order *models.Order) []types.ConsumedItem {
	if !order.ManagerStockConsumed.IsZero() {
		return order.ManagerStockConsumed.Items
	}
	out := make([]types.ConsumedItem, 0, len(order.Items))
	for _, item := range order.Items {
		out = append(out, types.ConsumedItem{ProductID: item.ProductID, Qty: item.Qty})
	}
	return out
}
