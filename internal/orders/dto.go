package orders

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/droptide/droptide-backend/pkg/enums"
)

// ItemInput is one requested order line.
type ItemInput struct {
	ProductID uuid.UUID
	Qty       int
}

// CreateOrderInput carries everything order creation needs. A manager
// creator reserves from their own allocation; everyone else reserves from
// the owner's country counters.
type CreateOrderInput struct {
	OwnerID uuid.UUID
	Actor   Actor

	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Country         string
	City            string
	Currency        enums.Currency

	Items []ItemInput

	Total            decimal.Decimal
	Discount         decimal.Decimal
	ShippingFee      decimal.Decimal
	CODAmount        decimal.Decimal
	DriverCommission decimal.Decimal
}

// TransitionInput is the optional payload accompanying a status change.
type TransitionInput struct {
	Target          enums.ShipmentStatus
	ReturnReason    *string
	CollectedAmount *decimal.Decimal
}

// fingerprint condenses the creator-visible identity of a submission so the
// duplicate window can match a resubmission of the same order.
func (in CreateOrderInput) fingerprint() string {
	parts := make([]string, 0, len(in.Items)+2)
	for _, item := range in.Items {
		parts = append(parts, fmt.Sprintf("%s:%d", item.ProductID, item.Qty))
	}
	sort.Strings(parts)
	parts = append(parts, strings.TrimSpace(in.CustomerPhone), in.Total.String())
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:16])
}
