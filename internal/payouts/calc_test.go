package payouts

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/droptide/droptide-backend/pkg/db/models"
	"github.com/droptide/droptide-backend/pkg/enums"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestDropshipperProfitChargesAnchorOnce(t *testing.T) {
	items := []models.OrderItem{
		{Qty: 2, UnitPrice: dec("50"), DropshippingPrice: dec("40"), PurchasePrice: dec("30")},
		{Qty: 1, UnitPrice: dec("20"), DropshippingPrice: dec("15"), PurchasePrice: dec("10")},
	}

	// anchor line pays 40 for one unit and 30 for the second;
	// the other line pays purchase price: 40 + 30 + 10 = 80
	profit := DropshipperProfit(items, dec("120"))
	require.True(t, dec("40").Equal(profit), "got %s", profit)
}

func TestDropshipperProfitFloorsAtZero(t *testing.T) {
	items := []models.OrderItem{
		{Qty: 1, DropshippingPrice: dec("90"), PurchasePrice: dec("80")},
	}
	profit := DropshipperProfit(items, dec("50"))
	require.True(t, profit.IsZero(), "got %s", profit)
}

func TestDropshipperProfitEmptyOrder(t *testing.T) {
	require.True(t, DropshipperProfit(nil, dec("120")).IsZero())
}

func TestNetFactor(t *testing.T) {
	refs := []models.Reference{
		{ProfitRate: dec("5")},
		{ProfitRate: dec("3")},
	}
	require.True(t, dec("0.92").Equal(NetFactor(refs)))
	require.True(t, decimal.NewFromInt(1).Equal(NetFactor(nil)))
}

func TestExpectedInvestorShareUnbounded(t *testing.T) {
	inv := &models.User{ProfitPercentage: dec("10")}
	expected, ok := ExpectedInvestorShare(inv, nil, dec("250"))
	require.True(t, ok)
	require.True(t, dec("25").Equal(expected), "got %s", expected)
}

func TestExpectedInvestorShareSkipsZeroPercentage(t *testing.T) {
	inv := &models.User{ProfitPercentage: decimal.Zero, TargetProfit: dec("100")}
	_, ok := ExpectedInvestorShare(inv, nil, dec("250"))
	require.False(t, ok)
}

func TestExpectedInvestorShareClampsToRemainingTarget(t *testing.T) {
	refs := []models.Reference{{ProfitRate: dec("5")}, {ProfitRate: dec("3")}}
	inv := &models.User{
		ProfitPercentage: dec("10"),
		TargetProfit:     dec("100"),
		EarnedProfit:     dec("96"),
	}

	// remaining net 4 grossed up by the 0.92 net factor
	expected, ok := ExpectedInvestorShare(inv, refs, dec("1000"))
	require.True(t, ok)
	require.True(t, dec("4.35").Equal(expected), "got %s", expected)
}

func TestExpectedInvestorShareCountsPendingGross(t *testing.T) {
	inv := &models.User{
		ProfitPercentage: dec("10"),
		TargetProfit:     dec("100"),
		EarnedProfit:     dec("50"),
		PendingGross:     dec("50"),
	}

	// pending 50 gross already covers the remaining 50 net at factor 1
	_, ok := ExpectedInvestorShare(inv, nil, dec("1000"))
	require.False(t, ok)
}

func TestSettleInvestorSkimsReferences(t *testing.T) {
	refA, refB := uuid.New(), uuid.New()
	refs := []models.Reference{
		{ID: refA, ProfitRate: dec("5")},
		{ID: refB, ProfitRate: dec("3")},
	}
	inv := &models.User{ProfitPercentage: dec("10")}

	settled := SettleInvestor(inv, refs, dec("100"))
	require.True(t, dec("8").Equal(settled.TotalSkim), "got %s", settled.TotalSkim)
	require.True(t, dec("92").Equal(settled.Net), "got %s", settled.Net)
	require.False(t, settled.Completed)
	require.Len(t, settled.Skims, 2)
	require.Equal(t, refA, settled.Skims[0].ReferenceID)
	require.True(t, dec("5").Equal(settled.Skims[0].Amount))
	require.True(t, dec("3").Equal(settled.Skims[1].Amount))
}

func TestSettleInvestorReclampsAndCompletes(t *testing.T) {
	refs := []models.Reference{{ProfitRate: dec("5")}, {ProfitRate: dec("3")}}
	inv := &models.User{
		TargetProfit: dec("100"),
		EarnedProfit: dec("96"),
	}

	settled := SettleInvestor(inv, refs, dec("4.35"))
	require.True(t, dec("4").Equal(settled.Net), "got %s", settled.Net)
	require.True(t, settled.Completed)
}

func TestSettleInvestorZeroWhenTargetAlreadyMet(t *testing.T) {
	inv := &models.User{
		TargetProfit: dec("100"),
		EarnedProfit: dec("100"),
	}

	settled := SettleInvestor(inv, nil, dec("40"))
	require.True(t, settled.Net.IsZero())
	require.Empty(t, settled.Skims)
	require.True(t, settled.Completed)
}

func TestCommissionerFee(t *testing.T) {
	require.True(t, dec("2").Equal(CommissionerFee(enums.CurrencySAR)))
	require.True(t, dec("1.96").Equal(CommissionerFee(enums.CurrencyAED)))
}

func TestDriverCommissionFor(t *testing.T) {
	require.True(t, dec("7").Equal(DriverCommissionFor(dec("7"), dec("5"))))
	require.True(t, dec("5").Equal(DriverCommissionFor(decimal.Zero, dec("5"))))
}

func TestAgentCommissionConvertsToPKR(t *testing.T) {
	// 100 USD -> 12 USD cut -> 12 * 278.50 PKR
	got := AgentCommission(dec("100"), enums.CurrencyUSD)
	require.True(t, dec("3342").Equal(got), "got %s", got)
}
