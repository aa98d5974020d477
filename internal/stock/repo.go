package stock

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/droptide/droptide-backend/pkg/db/models"
	"github.com/droptide/droptide-backend/pkg/enums"
)

// Repository covers both stock tiers: manager allocations and the owner's
// per-country counters.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	DecrementManagerStock(ctx context.Context, ownerID, managerID, productID uuid.UUID, country enums.Country, qty int) (int64, error)
	FindManagerStock(ctx context.Context, ownerID, managerID, productID uuid.UUID, country enums.Country) (*models.ManagerProductStock, error)
	AddManagerStock(ctx context.Context, ownerID, managerID, productID uuid.UUID, country enums.Country, qty int) error
	SetManagerStock(ctx context.Context, ownerID, managerID, productID uuid.UUID, country enums.Country, qty int) error
	SumManagerAllocations(ctx context.Context, ownerID, productID uuid.UUID, country enums.Country, excludeManagerID *uuid.UUID) (int, error)

	DecrementCountryStock(ctx context.Context, productID uuid.UUID, country enums.Country, qty int) (int64, error)
	AddCountryStock(ctx context.Context, productID uuid.UUID, country enums.Country, qty int) error
	GetCountryQty(ctx context.Context, productID uuid.UUID, country enums.Country) (int, error)

	RecomputeProductTotals(ctx context.Context, productID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stock repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// DecrementManagerStock is the tier-1 reservation primitive. The qty guard in
// the WHERE clause makes the check and the write one statement; zero rows
// affected means insufficient stock (or no allocation row at all).
func (r *repository) DecrementManagerStock(ctx context.Context, ownerID, managerID, productID uuid.UUID, country enums.Country, qty int) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.ManagerProductStock{}).
		Where("owner_id = ? AND manager_id = ? AND product_id = ? AND country = ? AND qty >= ?",
			ownerID, managerID, productID, country, qty).
		Update("qty", gorm.Expr("qty - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *repository) FindManagerStock(ctx context.Context, ownerID, managerID, productID uuid.UUID, country enums.Country) (*models.ManagerProductStock, error) {
	var row models.ManagerProductStock
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND manager_id = ? AND product_id = ? AND country = ?",
			ownerID, managerID, productID, country).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// AddManagerStock restores quantity onto the exact allocation tuple. The row
// may have been deleted since the reservation, so this is an upsert.
func (r *repository) AddManagerStock(ctx context.Context, ownerID, managerID, productID uuid.UUID, country enums.Country, qty int) error {
	row := models.ManagerProductStock{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		ManagerID: managerID,
		ProductID: productID,
		Country:   country,
		Qty:       qty,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "owner_id"}, {Name: "manager_id"}, {Name: "product_id"}, {Name: "country"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"qty": gorm.Expr("manager_product_stocks.qty + ?", qty),
		}),
	}).Create(&row).Error
}

func (r *repository) SetManagerStock(ctx context.Context, ownerID, managerID, productID uuid.UUID, country enums.Country, qty int) error {
	row := models.ManagerProductStock{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		ManagerID: managerID,
		ProductID: productID,
		Country:   country,
		Qty:       qty,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "owner_id"}, {Name: "manager_id"}, {Name: "product_id"}, {Name: "country"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{"qty": qty}),
	}).Create(&row).Error
}

func (r *repository) SumManagerAllocations(ctx context.Context, ownerID, productID uuid.UUID, country enums.Country, excludeManagerID *uuid.UUID) (int, error) {
	query := r.db.WithContext(ctx).Model(&models.ManagerProductStock{}).
		Where("owner_id = ? AND product_id = ? AND country = ?", ownerID, productID, country)
	if excludeManagerID != nil {
		query = query.Where("manager_id <> ?", *excludeManagerID)
	}
	var total *int
	if err := query.Select("SUM(qty)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// DecrementCountryStock is the tier-2 counterpart of DecrementManagerStock,
// against the owner-level country counter.
func (r *repository) DecrementCountryStock(ctx context.Context, productID uuid.UUID, country enums.Country, qty int) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.ProductCountryStock{}).
		Where("product_id = ? AND country = ? AND qty >= ?", productID, country, qty).
		Update("qty", gorm.Expr("qty - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *repository) AddCountryStock(ctx context.Context, productID uuid.UUID, country enums.Country, qty int) error {
	row := models.ProductCountryStock{
		ProductID: productID,
		Country:   country,
		Qty:       qty,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "country"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"qty": gorm.Expr("product_country_stocks.qty + ?", qty),
		}),
	}).Create(&row).Error
}

func (r *repository) GetCountryQty(ctx context.Context, productID uuid.UUID, country enums.Country) (int, error) {
	var row models.ProductCountryStock
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND country = ?", productID, country).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.Qty, nil
}

// RecomputeProductTotals refreshes the derived stock_qty/in_stock fields from
// the country rows after any tier-2 mutation.
func (r *repository) RecomputeProductTotals(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE products SET
			stock_qty = COALESCE((SELECT SUM(qty) FROM product_country_stocks WHERE product_id = products.id), 0),
			in_stock = COALESCE((SELECT SUM(qty) FROM product_country_stocks WHERE product_id = products.id), 0) > 0
		 WHERE id = ?`,
		productID,
	).Error
}
