package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/droptide/droptide-backend/pkg/db/models"
)

// Repository persists orders and loads the product rows creation snapshots
// are cut from.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByInvoice(ctx context.Context, invoiceNumber string) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id uuid.UUID) error

	LoadProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an order repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var row models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindByInvoice(ctx context.Context, invoiceNumber string) (*models.Order, error) {
	var row models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		First(&row, "invoice_number = ?", invoiceNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Save writes the order row without touching the item lines; lines are
// immutable after creation.
func (r *repository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: false}).
		Omit("Items").
		Save(order).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id).Error
}

func (r *repository) LoadProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.Product, len(rows))
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
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
