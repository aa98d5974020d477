package sequence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	pkgerrors "github.com/droptide/droptide-backend/pkg/errors"
)

// Service issues unique, never-reused sequence values and formats invoice
// numbers from them.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Next(ctx context.Context, name string) (int64, error)
	NextInvoice(ctx context.Context, name string) (string, error)
}

type service struct {
	repo Repository
}

// NewService wires a sequence service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sequence repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Next(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "sequence name is required")
	}
	seq, err := s.repo.Next(ctx, name)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issuing sequence value")
	}
	return seq, nil
}

func (s *service) NextInvoice(ctx context.Context, name string) (string, error) {
	seq, err := s.Next(ctx, name)
	if err != nil {
		return "", err
	}
	return FormatInvoice(seq), nil
}

// FormatInvoice renders a sequence value as a zero-padded invoice number.
// Values beyond five digits keep their natural width instead of wrapping.
func FormatInvoice(seq int64) string {
	return fmt.Sprintf("%05d", seq)
}
