package summary

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/droptide/droptide-backend/pkg/db/models"
	"github.com/droptide/droptide-backend/pkg/enums"
)

// Scope narrows every aggregation query to the slice of orders the actor is
// allowed to see. Exactly one of the id filters is set for non-privileged
// actors; a privileged scope sets only OwnerID (or nothing for admins).
type Scope struct {
	OwnerID    *uuid.UUID
	ManagerID  *uuid.UUID
	DriverID   *uuid.UUID
	CreatedBy  *uuid.UUID
	InvestorID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// Repository runs the read-only aggregation queries.
type Repository interface {
	StatusCounts(ctx context.Context, scope Scope) (map[enums.ShipmentStatus]int64, error)
	CurrencyTotals(ctx context.Context, scope Scope) (map[enums.Currency]decimal.Decimal, error)
	DeliveredOrders(ctx context.Context, scope Scope) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a summary repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) scoped(ctx context.Context, scope Scope) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if scope.OwnerID != nil {
		query = query.Where("owner_id = ?", *scope.OwnerID)
	}
	if scope.ManagerID != nil {
		query = query.Where("manager_id = ?", *scope.ManagerID)
	}
	if scope.DriverID != nil {
		query = query.Where("driver_id = ?", *scope.DriverID)
	}
	if scope.CreatedBy != nil {
		query = query.Where("created_by = ?", *scope.CreatedBy)
	}
	if scope.InvestorID != nil {
		// the shares column is jsonb; a substring match on the investor id is
		// enough because uuids cannot collide with other payload content
		query = query.Where("CAST(investor_shares AS TEXT) LIKE ?", "%"+scope.InvestorID.String()+"%")
	}
	if scope.From != nil {
		query = query.Where("created_at >= ?", *scope.From)
	}
	if scope.To != nil {
		query = query.Where("created_at < ?", *scope.To)
	}
	return query
}

func (r *repository) StatusCounts(ctx context.Context, scope Scope) (map[enums.ShipmentStatus]int64, error) {
	var rows []struct {
		Status enums.ShipmentStatus
		N      int64
	}
	err := r.scoped(ctx, scope).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.ShipmentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.N
	}
	return counts, nil
}

func (r *repository) CurrencyTotals(ctx context.Context, scope Scope) (map[enums.Currency]decimal.Decimal, error) {
	var rows []struct {
		Currency enums.Currency
		Total    decimal.Decimal
	}
	err := r.scoped(ctx, scope).
		Select("currency, COALESCE(SUM(total), 0) AS total").
		Group("currency").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	totals := make(map[enums.Currency]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.Currency] = row.Total
	}
	return totals, nil
}

// DeliveredOrders loads the delivered slice with only the financial columns
// the profit/loss fold needs. The payout attributions live in jsonb, so the
// fold happens in Go rather than SQL.
func (r *repository) DeliveredOrders(ctx context.Context, scope Scope) ([]models.Order, error) {
	var rows []models.Order
	err := r.scoped(ctx, scope).
		Where("status = ?", enums.ShipmentStatusDelivered).
		Select("id", "currency", "total", "driver_commission", "agent_commission_pkr",
			"commissioner_commission", "dropshipper_profit", "investor_shares").
		Find(&rows).Error
	return rows, err
}
