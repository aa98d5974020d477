package payouts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/droptide/droptide-backend/pkg/db/models"
	"github.com/droptide/droptide-backend/pkg/enums"
)

// Repository covers the payout side of the user and reference tables plus
// the delivered-order aggregate used for driver recomputes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListActiveInvestors(ctx context.Context, ownerID uuid.UUID) ([]models.User, error)
	LockUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	AddInvestorPendingGross(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
	SettleInvestorRow(ctx context.Context, id uuid.UUID, net, grossRelease decimal.Decimal, completed bool) error

	ListActiveReferences(ctx context.Context, ownerID uuid.UUID) ([]models.Reference, error)
	CreditReference(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error

	FindActiveCommissioner(ctx context.Context, ownerID uuid.UUID) (*models.User, error)
	SumDriverCommission(ctx context.Context, driverID uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payout repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// ListActiveInvestors returns the owner's pre-assignment candidates oldest
// first. Assignment order is strictly by account age.
func (r *repository) ListActiveInvestors(ctx context.Context, ownerID uuid.UUID) ([]models.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND role = ? AND is_active = ? AND investor_status = ?",
			ownerID, enums.RoleInvestor, true, enums.InvestorStatusActive).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// LockUser reads one user row FOR UPDATE so concurrent settlements against
// the same investor serialize on the row lock.
func (r *repository) LockUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var row models.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var row models.User
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repository) AddInvestorPendingGross(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("pending_gross", gorm.Expr("pending_gross + ?", delta)).Error
}

// SettleInvestorRow credits the net amount, releases the gross from the
// pending accumulator and flips the status when the target was reached,
// all in one statement.
func (r *repository) SettleInvestorRow(ctx context.Context, id uuid.UUID, net, grossRelease decimal.Decimal, completed bool) error {
	updates := map[string]interface{}{
		"earned_profit": gorm.Expr("earned_profit + ?", net),
		"pending_gross": gorm.Expr("pending_gross - ?", grossRelease),
	}
	if completed {
		updates["investor_status"] = enums.InvestorStatusCompleted
	}
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListActiveReferences(ctx context.Context, ownerID uuid.UUID) ([]models.Reference, error) {
	var rows []models.Reference
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CreditReference(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&models.Reference{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_profit":   gorm.Expr("total_profit + ?", amount),
			"pending_amount": gorm.Expr("pending_amount + ?", amount),
		}).Error
}

// FindActiveCommissioner returns the owner's commissioner, oldest first when
// more than one row slipped in. Nil when the owner has none.
func (r *repository) FindActiveCommissioner(ctx context.Context, ownerID uuid.UUID) (*models.User, error) {
	var row models.User
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND role = ? AND is_active = ?", ownerID, enums.RoleCommissioner, true).
		Order("created_at ASC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// SumDriverCommission is a full recompute over the driver's delivered
// orders, never an increment.
func (r *repository) SumDriverCommission(ctx context.Context, driverID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("driver_id = ? AND status = ?", driverID, enums.ShipmentStatusDelivered).
		Select("SUM(driver_commission)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
