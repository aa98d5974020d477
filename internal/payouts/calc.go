package payouts

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/droptide/droptide-backend/pkg/currency"
	"github.com/droptide/droptide-backend/pkg/db/models"
	"github.com/droptide/droptide-backend/pkg/enums"
)

var (
	hundred = decimal.NewFromInt(100)

	// commissionerFeeSAR is the flat per-order commissioner fee, converted
	// into the order currency exactly once at creation.
	commissionerFeeSAR = decimal.NewFromInt(2)

	// agentRate is the agent cut of the order total, paid out in PKR.
	agentRate = decimal.RequireFromString("0.12")
)

// DropshipperProfit is the margin owed to a dropshipper creator. The single
// highest-dropshipping-price line is charged that price for exactly one unit;
// every other unit on the order is charged at purchase price. The result
// never goes below zero.
func DropshipperProfit(items []models.OrderItem, total decimal.Decimal) decimal.Decimal {
	if len(items) == 0 {
		return decimal.Zero
	}

	anchor := 0
	for i := 1; i < len(items); i++ {
		if items[i].DropshippingPrice.GreaterThan(items[anchor].DropshippingPrice) {
			anchor = i
		}
	}

	paid := decimal.Zero
	for i, item := range items {
		qty := decimal.NewFromInt(int64(item.Qty))
		if i == anchor {
			rest := decimal.NewFromInt(int64(item.Qty - 1))
			paid = paid.Add(item.DropshippingPrice).Add(item.PurchasePrice.Mul(rest))
			continue
		}
		paid = paid.Add(item.PurchasePrice.Mul(qty))
	}

	profit := total.Sub(paid).Round(2)
	if profit.IsNegative() {
		return decimal.Zero
	}
	return profit
}

// NetFactor is the share of an investor settlement that survives the
// reference skim: 1 minus the sum of all active reference rates.
func NetFactor(refs []models.Reference) decimal.Decimal {
	factor := decimal.NewFromInt(1)
	for _, ref := range refs {
		factor = factor.Sub(ref.ProfitRate.Div(hundred))
	}
	return factor
}

// ExpectedInvestorShare computes the gross amount to pre-assign to an
// investor for an order, or reports the investor ineligible. A zero target
// means the investor is unbounded; otherwise the share is capped so that the
// net credit after the reference skim can never push earnings past the
// target, counting gross amounts already pending on open orders.
func ExpectedInvestorShare(inv *models.User, refs []models.Reference, total decimal.Decimal) (decimal.Decimal, bool) {
	if inv == nil || inv.ProfitPercentage.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	grossCap := total.Mul(inv.ProfitPercentage).Div(hundred)

	if inv.TargetProfit.LessThanOrEqual(decimal.Zero) {
		expected := grossCap.Round(2)
		return expected, expected.IsPositive()
	}

	netFactor := NetFactor(refs)
	if netFactor.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	remainingNet := inv.TargetProfit.
		Sub(inv.EarnedProfit).
		Sub(inv.PendingGross.Mul(netFactor))
	if remainingNet.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}

	expected := decimal.Min(grossCap, remainingNet.Div(netFactor)).Round(2)
	return expected, expected.IsPositive()
}

// SkimPortion is one reference's cut of a settlement.
type SkimPortion struct {
	ReferenceID uuid.UUID
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

// Settlement is the outcome of settling one pending investor share.
type Settlement struct {
	Gross     decimal.Decimal
	Clamped   decimal.Decimal
	Net       decimal.Decimal
	TotalSkim decimal.Decimal
	Skims     []SkimPortion
	Completed bool
}

// SettleInvestor finalizes a pending gross share against the investor's
// current accumulators. The gross is re-clamped to what the target still
// allows (other orders may have settled since pre-assignment), each reference
// skims its rate off the clamped amount, and the remainder is the net credit.
func SettleInvestor(inv *models.User, refs []models.Reference, gross decimal.Decimal) Settlement {
	result := Settlement{Gross: gross}
	if inv == nil || gross.LessThanOrEqual(decimal.Zero) {
		return result
	}

	netFactor := NetFactor(refs)
	clamped := gross
	if inv.TargetProfit.IsPositive() {
		if netFactor.LessThanOrEqual(decimal.Zero) {
			return result
		}
		remaining := inv.TargetProfit.Sub(inv.EarnedProfit)
		if remaining.LessThanOrEqual(decimal.Zero) {
			result.Completed = true
			return result
		}
		clamped = decimal.Min(gross, remaining.Div(netFactor))
	}

	totalSkim := decimal.Zero
	for _, ref := range refs {
		amount := clamped.Mul(ref.ProfitRate).Div(hundred).Round(2)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		totalSkim = totalSkim.Add(amount)
		result.Skims = append(result.Skims, SkimPortion{
			ReferenceID: ref.ID,
			Rate:        ref.ProfitRate,
			Amount:      amount,
		})
	}

	net := clamped.Sub(totalSkim).Round(2)
	if net.IsNegative() {
		net = decimal.Zero
	}

	result.Clamped = clamped.Round(2)
	result.TotalSkim = totalSkim
	result.Net = net
	if inv.TargetProfit.IsPositive() && inv.EarnedProfit.Add(net).GreaterThanOrEqual(inv.TargetProfit) {
		result.Completed = true
	}
	return result
}

// CommissionerFee converts the flat SAR fee into the order currency.
func CommissionerFee(cur enums.Currency) decimal.Decimal {
	return currency.FromSAR(commissionerFeeSAR, cur)
}

// DriverCommissionFor picks the per-order override when set, otherwise the
// driver's profile default.
func DriverCommissionFor(orderValue, profileDefault decimal.Decimal) decimal.Decimal {
	if orderValue.IsPositive() {
		return orderValue
	}
	return profileDefault
}

// AgentCommission is the agent cut of the order total converted to PKR.
func AgentCommission(total decimal.Decimal, cur enums.Currency) decimal.Decimal {
	return currency.ToPKR(total.Mul(agentRate), cur)
}
