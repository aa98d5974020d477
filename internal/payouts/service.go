package payouts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/droptide/droptide-backend/pkg/db/models"
	"github.com/droptide/droptide-backend/pkg/enums"
	pkgerrors "github.com/droptide/droptide-backend/pkg/errors"
	"github.com/droptide/droptide-backend/pkg/logger"
	"github.com/droptide/droptide-backend/pkg/metrics"
	"github.com/droptide/droptide-backend/pkg/outbox"
	"github.com/droptide/droptide-backend/pkg/outbox/payloads"
	"github.com/droptide/droptide-backend/pkg/types"
)

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service runs the profit waterfall. Every method mutates the order in
// memory and writes the counterparty accumulators; persisting the order row
// itself stays with the caller, inside whose transaction these methods run.
type Service interface {
	WithTx(tx *gorm.DB) Service

	PreassignInvestor(ctx context.Context, order *models.Order) error
	AssignCommissioner(ctx context.Context, order *models.Order) error
	FinalizeDelivery(ctx context.Context, order *models.Order) (*Finalization, error)
	DriverAggregate(ctx context.Context, driverID uuid.UUID) (decimal.Decimal, error)
}

// Finalization summarizes the settled waterfall amounts for one order.
type Finalization struct {
	DropshipperAmount decimal.Decimal
	InvestorAmount    decimal.Decimal
	ReferenceSkim     decimal.Decimal
	DriverCommission  decimal.Decimal
	AgentCommission   decimal.Decimal
	FinalizedAt       time.Time
}

type service struct {
	repo    Repository
	outbox  outboxPublisher
	logg    *logger.Logger
	metrics *metrics.FulfillmentMetrics
	tx      *gorm.DB
}

// NewService builds the payout service with the required dependencies.
func NewService(repo Repository, publisher outboxPublisher, logg *logger.Logger, m *metrics.FulfillmentMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payout repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, outbox: publisher, logg: logg, metrics: m}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx), outbox: s.outbox, logg: s.logg, metrics: s.metrics, tx: tx}
}

// PreassignInvestor attaches the order's gross share to the oldest eligible
// active investor and bumps that investor's pending accumulator. Candidates
// are walked oldest first; the first one whose target still has room wins.
// Orders that already carry a share are left alone.
func (s *service) PreassignInvestor(ctx context.Context, order *models.Order) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	if len(order.InvestorShares) > 0 {
		return nil
	}

	refs, err := s.repo.ListActiveReferences(ctx, order.OwnerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list references")
	}
	candidates, err := s.repo.ListActiveInvestors(ctx, order.OwnerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list investors")
	}

	for _, candidate := range candidates {
		inv, err := s.repo.LockUser(ctx, candidate.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock investor")
		}
		if inv == nil {
			continue
		}
		expected, ok := ExpectedInvestorShare(inv, refs, order.Total)
		if !ok {
			continue
		}
		if err := s.repo.AddInvestorPendingGross(ctx, inv.ID, expected); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve investor share")
		}
		order.InvestorShares = []types.InvestorProfitShare{{
			InvestorID:       inv.ID,
			InvestorName:     inv.Name,
			ProfitPercentage: inv.ProfitPercentage,
			ProfitAmount:     expected,
			IsPending:        true,
			AssignedAt:       time.Now(),
		}}
		s.metrics.IncPayout("investor", "preassigned")
		return nil
	}
	return nil
}

// AssignCommissioner stamps the owner's commissioner and the flat fee in the
// order currency. The conversion happens here, once, so later rate changes
// never move an already-created order.
func (s *service) AssignCommissioner(ctx context.Context, order *models.Order) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	commissioner, err := s.repo.FindActiveCommissioner(ctx, order.OwnerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find commissioner")
	}
	if commissioner == nil {
		return nil
	}
	order.CommissionerID = &commissioner.ID
	order.CommissionerCommission = CommissionerFee(order.Currency)
	return nil
}

// FinalizeDelivery settles the full waterfall for a delivered order. The
// components are independent: a skipped one (missing driver profile, no
// pending share) is collected into the returned error without blocking the
// rest. Repository write failures abort immediately so the surrounding
// transaction rolls back cleanly.
func (s *service) FinalizeDelivery(ctx context.Context, order *models.Order) (*Finalization, error) {
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	var softErrs error
	summary := &Finalization{FinalizedAt: time.Now()}

	if order.CreatedByRole == enums.RoleDropshipper {
		amount := DropshipperProfit(order.Items, order.Total)
		share := types.DropshipperProfitShare{Amount: amount}
		if prev := order.DropshipperProfit; prev != nil {
			share.IsPaid = prev.IsPaid
			share.PaidAt = prev.PaidAt
			share.PaidBy = prev.PaidBy
		}
		order.DropshipperProfit = &share
		summary.DropshipperAmount = amount
		s.metrics.IncPayout("dropshipper", "ok")
	}

	if err := s.settleInvestorShares(ctx, order, summary); err != nil {
		return nil, err
	}

	if order.DriverID != nil {
		driver, err := s.repo.FindUser(ctx, *order.DriverID)
		switch {
		case err != nil:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
		case driver == nil:
			softErrs = multierr.Append(softErrs, pkgerrors.New(pkgerrors.CodeNotFound, "driver profile missing"))
			s.metrics.IncPayout("driver", "skipped")
		default:
			order.DriverCommission = DriverCommissionFor(order.DriverCommission, driver.CommissionPerOrder)
			summary.DriverCommission = order.DriverCommission
			s.metrics.IncPayout("driver", "ok")
		}
	}

	if order.CreatedByRole == enums.RoleAgent && order.AgentCommissionPKR.IsZero() {
		order.AgentCommissionPKR = AgentCommission(order.Total, order.Currency)
		s.metrics.IncPayout("agent", "ok")
	}
	summary.AgentCommission = order.AgentCommissionPKR

	now := summary.FinalizedAt
	order.PayoutFinalizedAt = &now

	if s.tx != nil {
		err := s.outbox.Emit(ctx, s.tx, outbox.DomainEvent{
			EventType:     enums.EventPayoutFinalized,
			AggregateType: enums.AggregatePayout,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.PayoutFinalizedEvent{
				OrderID:           order.ID,
				InvoiceNumber:     order.InvoiceNumber,
				DropshipperAmount: summary.DropshipperAmount,
				InvestorAmount:    summary.InvestorAmount,
				ReferenceSkim:     summary.ReferenceSkim,
				DriverCommission:  summary.DriverCommission,
				AgentCommission:   summary.AgentCommission,
				FinalizedAt:       summary.FinalizedAt,
			},
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit payout event")
		}
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":        order.ID.String(),
			"invoice_number":  order.InvoiceNumber,
			"investor_amount": summary.InvestorAmount,
			"reference_skim":  summary.ReferenceSkim,
		})
		s.logg.Info(logCtx, "payout finalized")
	}
	return summary, softErrs
}

func (s *service) settleInvestorShares(ctx context.Context, order *models.Order, summary *Finalization) error {
	for i := range order.InvestorShares {
		share := &order.InvestorShares[i]
		if !share.IsPending {
			continue
		}

		inv, err := s.repo.LockUser(ctx, share.InvestorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock investor")
		}
		if inv == nil {
			share.IsPending = false
			share.ProfitAmount = decimal.Zero
			s.metrics.IncPayout("investor", "skipped")
			continue
		}
		refs, err := s.repo.ListActiveReferences(ctx, order.OwnerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list references")
		}

		settled := SettleInvestor(inv, refs, share.ProfitAmount)
		if err := s.repo.SettleInvestorRow(ctx, inv.ID, settled.Net, share.ProfitAmount, settled.Completed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle investor")
		}
		for _, skim := range settled.Skims {
			if err := s.repo.CreditReference(ctx, skim.ReferenceID, skim.Amount); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit reference")
			}
		}

		share.ProfitAmount = settled.Net
		share.IsPending = false
		summary.InvestorAmount = summary.InvestorAmount.Add(settled.Net)
		summary.ReferenceSkim = summary.ReferenceSkim.Add(settled.TotalSkim)
		s.metrics.IncPayout("investor", "ok")
	}
	return nil
}

// DriverAggregate recomputes the driver's lifetime delivered commission.
func (s *service) DriverAggregate(ctx context.Context, driverID uuid.UUID) (decimal.Decimal, error) {
	total, err := s.repo.SumDriverCommission(ctx, driverID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum driver commission")
	}
	return total, nil
}
