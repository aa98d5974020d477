package sequence

import (
	"context"

	"gorm.io/gorm"
)

// Repository hands out monotonically increasing sequence values.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Next(ctx context.Context, name string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sequence repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Next increments and fetches the named counter in one statement. The upsert
// keeps the read and the write atomic, so two concurrent callers can never
// observe the same value.
func (r *repository) Next(ctx context.Context, name string) (int64, error) {
	var seq int64
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO counters (name, seq) VALUES (?, 1)
		 ON CONFLICT (name) DO UPDATE SET seq = counters.seq + 1
		 RETURNING seq`,
		name,
	).Scan(&seq).Error
	if err != nil {
		return 0, err
	}
	return seq, nil
}
