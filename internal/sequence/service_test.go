package sequence

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	pkgerrors "github.com/droptide/droptide-backend/pkg/errors"
)

type stubRepo struct {
	next int64
	err  error
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Next(ctx context.Context, name string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.next++
	return s.next, nil
}

func TestNextInvoiceZeroPads(t *testing.T) {
	svc, err := NewService(&stubRepo{next: 41})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	invoice, err := svc.NextInvoice(context.Background(), "orders")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if invoice != "00042" {
		t.Fatalf("expected 00042, got %q", invoice)
	}
}

func TestNextRejectsEmptyName(t *testing.T) {
	svc, _ := NewService(&stubRepo{})
	_, err := svc.Next(context.Background(), "")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNextWrapsRepositoryFailure(t *testing.T) {
	svc, _ := NewService(&stubRepo{err: errors.New("connection reset")})
	_, err := svc.Next(context.Background(), "orders")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestFormatInvoice(t *testing.T) {
	cases := map[int64]string{
		1:      "00001",
		42:     "00042",
		99999:  "99999",
		100000: "100000",
	}
	for seq, want := range cases {
		if got := FormatInvoice(seq); got != want {
			t.Fatalf("FormatInvoice(%d) = %q, want %q", seq, got, want)
		}
	}
}
