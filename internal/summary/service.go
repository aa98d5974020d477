package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/droptide/droptide-backend/internal/orders"
	"github.com/droptide/droptide-backend/pkg/config"
	"github.com/droptide/droptide-backend/pkg/enums"
	pkgerrors "github.com/droptide/droptide-backend/pkg/errors"
	"github.com/droptide/droptide-backend/pkg/logger"
)

// summaryCache is the slice of the redis client the TTL cache needs. A nil
// cache disables caching entirely.
type summaryCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SummaryKey(role, userID, query string) string
}

// Query bounds the aggregation window. Zero values mean unbounded.
type Query struct {
	From *time.Time
	To   *time.Time
}

func (q Query) cacheKey() string {
	from, to := "all", "all"
	if q.From != nil {
		from = fmt.Sprintf("%d", q.From.Unix())
	}
	if q.To != nil {
		to = fmt.Sprintf("%d", q.To.Unix())
	}
	return from + "-" + to
}

// Overview is the aggregation response. Amounts are kept per currency; the
// agent payout is already converted to PKR at finalization so it stays a
// single number.
type Overview struct {
	StatusCounts     map[enums.ShipmentStatus]int64     `json:"status_counts"`
	TotalsByCurrency map[enums.Currency]decimal.Decimal `json:"totals_by_currency"`

	DeliveredCount     int64                              `json:"delivered_count"`
	DeliveredRevenue   map[enums.Currency]decimal.Decimal `json:"delivered_revenue"`
	PayoutCost         map[enums.Currency]decimal.Decimal `json:"payout_cost"`
	NetMargin          map[enums.Currency]decimal.Decimal `json:"net_margin"`
	AgentCommissionPKR decimal.Decimal                    `json:"agent_commission_pkr"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Service is the read-only aggregation consumer. Responses are cached in
// redis with a pure time-based expiry; nothing invalidates on write, so a
// summary can lag the ledger by at most the configured TTL.
type Service interface {
	Overview(ctx context.Context, actor orders.Actor, query Query) (*Overview, error)
}

type service struct {
	repo  Repository
	cache summaryCache
	logg  *logger.Logger
	cfg   config.CacheConfig
}

// NewService builds the aggregation service. The cache is optional.
func NewService(repo Repository, cache summaryCache, logg *logger.Logger, cfg config.CacheConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("summary repository required")
	}
	return &service{repo: repo, cache: cache, logg: logg, cfg: cfg}, nil
}

func (s *service) Overview(ctx context.Context, actor orders.Actor, query Query) (*Overview, error) {
	scope, err := scopeFor(actor, query)
	if err != nil {
		return nil, err
	}

	var key string
	if s.cache != nil && s.cfg.SummaryTTL > 0 {
		key = s.cache.SummaryKey(string(actor.Role), actor.ID.String(), query.cacheKey())
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
			var overview Overview
			if err := json.Unmarshal([]byte(cached), &overview); err == nil {
				return &overview, nil
			}
		}
	}

	overview, err := s.compute(ctx, scope)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if encoded, err := json.Marshal(overview); err == nil {
			if err := s.cache.Set(ctx, key, string(encoded), s.cfg.SummaryTTL); err != nil && s.logg != nil {
				s.logg.Warn(ctx, "summary cache write failed: "+err.Error())
			}
		}
	}
	return overview, nil
}

func (s *service) compute(ctx context.Context, scope Scope) (*Overview, error) {
	counts, err := s.repo.StatusCounts(ctx, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	totals, err := s.repo.CurrencyTotals(ctx, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum order totals")
	}
	delivered, err := s.repo.DeliveredOrders(ctx, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivered orders")
	}

	overview := &Overview{
		StatusCounts:       counts,
		TotalsByCurrency:   totals,
		DeliveredCount:     int64(len(delivered)),
		DeliveredRevenue:   map[enums.Currency]decimal.Decimal{},
		PayoutCost:         map[enums.Currency]decimal.Decimal{},
		NetMargin:          map[enums.Currency]decimal.Decimal{},
		AgentCommissionPKR: decimal.Zero,
		GeneratedAt:        time.Now().UTC(),
	}
	for _, order := range delivered {
		revenue := overview.DeliveredRevenue[order.Currency]
		overview.DeliveredRevenue[order.Currency] = revenue.Add(order.Total)

		cost := overview.PayoutCost[order.Currency]
		cost = cost.Add(order.DriverCommission).Add(order.CommissionerCommission)
		if order.DropshipperProfit != nil {
			cost = cost.Add(order.DropshipperProfit.Amount)
		}
		for _, share := range order.InvestorShares {
			if !share.IsPending {
				cost = cost.Add(share.ProfitAmount)
			}
		}
		overview.PayoutCost[order.Currency] = cost
		overview.AgentCommissionPKR = overview.AgentCommissionPKR.Add(order.AgentCommissionPKR)
	}
	for currency, revenue := range overview.DeliveredRevenue {
		overview.NetMargin[currency] = revenue.Sub(overview.PayoutCost[currency])
	}
	return overview, nil
}

// scopeFor maps the actor onto the slice of orders they may aggregate over.
// The rules mirror order read visibility.
func scopeFor(actor orders.Actor, query Query) (Scope, error) {
	scope := Scope{From: query.From, To: query.To}
	switch actor.Role {
	case enums.RoleAdmin:
		// unscoped
	case enums.RoleUser:
		id := actor.ID
		scope.OwnerID = &id
	case enums.RoleManager:
		id := actor.ID
		scope.ManagerID = &id
	case enums.RoleDriver:
		id := actor.ID
		scope.DriverID = &id
	case enums.RoleAgent, enums.RoleDropshipper:
		id := actor.ID
		scope.CreatedBy = &id
	case enums.RoleInvestor:
		id := actor.ID
		scope.InvestorID = &id
	default:
		return Scope{}, pkgerrors.NotAllowed("view order summaries")
	}
	return scope, nil
}
