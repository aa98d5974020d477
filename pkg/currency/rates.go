package currency

import (
	"github.com/shopspring/decimal"

	"github.com/droptide/droptide-backend/pkg/enums"
)

// Static snapshot tables. Rates are deliberately fixed: commissioner amounts
// are converted exactly once at order creation and agent commissions exactly
// once at delivery, so a live feed would only make replays non-deterministic.

// sarCross holds the value of 1 SAR expressed in each supported currency.
var sarCross = map[enums.Currency]decimal.Decimal{
	enums.CurrencySAR: decimal.NewFromInt(1),
	enums.CurrencyAED: decimal.RequireFromString("0.98"),
	enums.CurrencyOMR: decimal.RequireFromString("0.10"),
	enums.CurrencyBHD: decimal.RequireFromString("0.10"),
	enums.CurrencyKWD: decimal.RequireFromString("0.082"),
	enums.CurrencyQAR: decimal.RequireFromString("0.97"),
	enums.CurrencyJOD: decimal.RequireFromString("0.19"),
	enums.CurrencyINR: decimal.RequireFromString("22.30"),
	enums.CurrencyPKR: decimal.RequireFromString("74.25"),
	enums.CurrencyUSD: decimal.RequireFromString("0.27"),
	enums.CurrencyGBP: decimal.RequireFromString("0.21"),
	enums.CurrencyCAD: decimal.RequireFromString("0.36"),
	enums.CurrencyAUD: decimal.RequireFromString("0.40"),
}

// toPKR holds the value of 1 unit of each supported currency in PKR.
var toPKR = map[enums.Currency]decimal.Decimal{
	enums.CurrencyPKR: decimal.NewFromInt(1),
	enums.CurrencySAR: decimal.RequireFromString("74.25"),
	enums.CurrencyAED: decimal.RequireFromString("75.80"),
	enums.CurrencyOMR: decimal.RequireFromString("723.40"),
	enums.CurrencyBHD: decimal.RequireFromString("738.60"),
	enums.CurrencyKWD: decimal.RequireFromString("905.10"),
	enums.CurrencyQAR: decimal.RequireFromString("76.45"),
	enums.CurrencyJOD: decimal.RequireFromString("392.70"),
	enums.CurrencyINR: decimal.RequireFromString("3.34"),
	enums.CurrencyUSD: decimal.RequireFromString("278.50"),
	enums.CurrencyGBP: decimal.RequireFromString("353.20"),
	enums.CurrencyCAD: decimal.RequireFromString("203.90"),
	enums.CurrencyAUD: decimal.RequireFromString("183.10"),
}

// FromSAR converts an SAR-denominated amount into the target currency using
// the static cross table. Unknown currencies fall back to a 1:1 rate so the
// caller still records a non-zero commission.
func FromSAR(amount decimal.Decimal, target enums.Currency) decimal.Decimal {
	rate, ok := sarCross[target]
	if !ok {
		rate = decimal.NewFromInt(1)
	}
	return amount.Mul(rate).Round(2)
}

// ToPKR converts an amount in the given currency into PKR using the static
// table. Unknown currencies fall back to a 1:1 rate.
func ToPKR(amount decimal.Decimal, from enums.Currency) decimal.Decimal {
	rate, ok := toPKR[from]
	if !ok {
		rate = decimal.NewFromInt(1)
	}
	return amount.Mul(rate).Round(2)
}
