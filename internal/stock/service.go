package stock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/droptide/droptide-backend/pkg/enums"
	pkgerrors "github.com/droptide/droptide-backend/pkg/errors"
	"github.com/droptide/droptide-backend/pkg/metrics"
	"github.com/droptide/droptide-backend/pkg/outbox"
	"github.com/droptide/droptide-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the stock ledger. Reserve and Release are designed to run
// inside the caller's order transaction; SetAllocation opens its own.
type Service interface {
	WithTx(tx *gorm.DB) Service

	ReserveManager(ctx context.Context, input ReserveManagerInput) (*types.ManagerStockConsumed, error)
	ReleaseManager(ctx context.Context, snapshot *types.ManagerStockConsumed) error

	ReserveGlobal(ctx context.Context, input ReserveGlobalInput) error
	ReleaseGlobal(ctx context.Context, country enums.Country, items []types.ConsumedItem) error

	FreeStock(ctx context.Context, ownerID, productID uuid.UUID, country enums.Country) (int, error)
	SetAllocation(ctx context.Context, input SetAllocationInput) error
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.FulfillmentMetrics
}

// ReserveManagerInput consumes quantities from one manager's allocation.
type ReserveManagerInput struct {
	OwnerID   uuid.UUID
	ManagerID uuid.UUID
	Country   enums.Country
	Items     []types.ConsumedItem
}

// ReserveGlobalInput consumes quantities from the owner's country counters.
type ReserveGlobalInput struct {
	Country enums.Country
	Items   []types.ConsumedItem
}

// SetAllocationInput replaces a manager's carve-out for one product/country.
type SetAllocationInput struct {
	OwnerID   uuid.UUID
	ManagerID uuid.UUID
	ProductID uuid.UUID
	Country   enums.Country
	Qty       int
	ActorID   uuid.UUID
	ActorRole enums.Role
}

// NewService builds the stock ledger with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, m *metrics.FulfillmentMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: publisher, metrics: m}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx), tx: s.tx, outbox: s.outbox, metrics: s.metrics}
}

// ReserveManager decrements each item from the manager allocation with the
// conditional-update primitive. On the first shortfall it reports both sides
// of it; the surrounding transaction undoes any earlier decrements.
func (s *service) ReserveManager(ctx context.Context, input ReserveManagerInput) (*types.ManagerStockConsumed, error) {
	if input.OwnerID == uuid.Nil || input.ManagerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner and manager ids required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	country := enums.CanonicalCountry(string(input.Country))

	for _, item := range input.Items {
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item qty must be positive")
		}
		affected, err := s.repo.DecrementManagerStock(ctx, input.OwnerID, input.ManagerID, item.ProductID, country, item.Qty)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement manager stock")
		}
		if affected == 0 {
			s.metrics.IncReservation("manager", "insufficient")
			available := 0
			if row, findErr := s.repo.FindManagerStock(ctx, input.OwnerID, input.ManagerID, item.ProductID, country); findErr == nil && row != nil {
				available = row.Qty
			}
			return nil, pkgerrors.InsufficientStock(available, item.Qty)
		}
	}

	s.metrics.IncReservation("manager", "ok")
	return &types.ManagerStockConsumed{
		OwnerID:   input.OwnerID,
		ManagerID: input.ManagerID,
		Country:   string(country),
		Items:     input.Items,
	}, nil
}

// ReleaseManager restores the exact recorded tuple. The allocation row may
// have been edited or deleted since the reservation, so the restore is an
// upsert keyed on the snapshot, never a read of current product stock.
func (s *service) ReleaseManager(ctx context.Context, snapshot *types.ManagerStockConsumed) error {
	if snapshot.IsZero() {
		return nil
	}
	country := enums.CanonicalCountry(snapshot.Country)
	for _, item := range snapshot.Items {
		if item.Qty <= 0 {
			continue
		}
		if err := s.repo.AddManagerStock(ctx, snapshot.OwnerID, snapshot.ManagerID, item.ProductID, country, item.Qty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore manager stock")
		}
	}
	s.metrics.IncRelease("manager")
	return nil
}

// ReserveGlobal decrements the owner-level country counters and refreshes
// the derived product fields.
func (s *service) ReserveGlobal(ctx context.Context, input ReserveGlobalInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	country := enums.CanonicalCountry(string(input.Country))

	for _, item := range input.Items {
		if item.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item qty must be positive")
		}
		affected, err := s.repo.DecrementCountryStock(ctx, item.ProductID, country, item.Qty)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement country stock")
		}
		if affected == 0 {
			s.metrics.IncReservation("global", "insufficient")
			available, availErr := s.repo.GetCountryQty(ctx, item.ProductID, country)
			if availErr != nil {
				available = 0
			}
			return pkgerrors.InsufficientStock(available, item.Qty)
		}
		if err := s.repo.RecomputeProductTotals(ctx, item.ProductID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recompute product totals")
		}
	}

	s.metrics.IncReservation("global", "ok")
	return nil
}

func (s *service) ReleaseGlobal(ctx context.Context, country enums.Country, items []types.ConsumedItem) error {
	canonical := enums.CanonicalCountry(string(country))
	for _, item := range items {
		if item.Qty <= 0 {
			continue
		}
		if err := s.repo.AddCountryStock(ctx, item.ProductID, canonical, item.Qty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore country stock")
		}
		if err := s.repo.RecomputeProductTotals(ctx, item.ProductID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recompute product totals")
		}
	}
	s.metrics.IncRelease("global")
	return nil
}

// FreeStock reports the owner quantity not yet carved out to any manager.
// It is two separate reads, so a concurrent allocation can make the answer
// stale by the time the caller acts on it; reservation itself stays safe
// because the decrement re-checks atomically.
func (s *service) FreeStock(ctx context.Context, ownerID, productID uuid.UUID, country enums.Country) (int, error) {
	canonical := enums.CanonicalCountry(string(country))
	ownerQty, err := s.repo.GetCountryQty(ctx, productID, canonical)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read country stock")
	}
	allocated, err := s.repo.SumManagerAllocations(ctx, ownerID, productID, canonical, nil)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum manager allocations")
	}
	free := ownerQty - allocated
	if free < 0 {
		free = 0
	}
	return free, nil
}

// SetAllocation replaces a manager's carve-out, holding the invariant that
// the sum of all manager allocations never exceeds the owner's country stock.
func (s *service) SetAllocation(ctx context.Context, input SetAllocationInput) error {
	if input.OwnerID == uuid.Nil || input.ManagerID == uuid.Nil || input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner, manager and product ids required")
	}
	if input.Qty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "allocation qty must not be negative")
	}
	country := enums.CanonicalCountry(string(input.Country))

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ownerQty, err := repo.GetCountryQty(ctx, input.ProductID, country)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read country stock")
		}
		others, err := repo.SumManagerAllocations(ctx, input.OwnerID, input.ProductID, country, &input.ManagerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum manager allocations")
		}
		if others+input.Qty > ownerQty {
			return pkgerrors.New(pkgerrors.CodeValidation, "allocation exceeds available country stock").
				WithDetails(map[string]any{
					"owner_stock":     ownerQty,
					"other_allocated": others,
					"requested":       input.Qty,
				})
		}

		if err := repo.SetManagerStock(ctx, input.OwnerID, input.ManagerID, input.ProductID, country, input.Qty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set manager allocation")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStockAllocationSet,
			AggregateType: enums.AggregateStockAllocation,
			AggregateID:   input.ProductID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID, Role: string(input.ActorRole)},
			Data: allocationSetEvent{
				OwnerID:   input.OwnerID,
				ManagerID: input.ManagerID,
				ProductID: input.ProductID,
				Country:   country,
				Qty:       input.Qty,
			},
		})
	})
}

type allocationSetEvent struct {
	OwnerID   uuid.UUID     `json:"owner_id"`
	ManagerID uuid.UUID     `json:"manager_id"`
	ProductID uuid.UUID     `json:"product_id"`
	Country   enums.Country `json:"country"`
	Qty       int           `json:"qty"`
}
