package summary

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/droptide/droptide-backend/internal/orders"
	"github.com/droptide/droptide-backend/pkg/config"
	"github.com/droptide/droptide-backend/pkg/db/models"
	"github.com/droptide/droptide-backend/pkg/enums"
	pkgerrors "github.com/droptide/droptide-backend/pkg/errors"
	"github.com/droptide/droptide-backend/pkg/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		invoice_number TEXT NOT NULL UNIQUE,
		owner_id TEXT NOT NULL,
		created_by TEXT NOT NULL,
		created_by_role TEXT NOT NULL,
		manager_id TEXT,
		driver_id TEXT,
		commissioner_id TEXT,
		customer_name TEXT NOT NULL,
		customer_phone TEXT NOT NULL,
		customer_address TEXT,
		country TEXT NOT NULL,
		city TEXT,
		currency TEXT NOT NULL DEFAULT 'USD',
		status TEXT NOT NULL DEFAULT 'pending',
		confirmation_status TEXT NOT NULL DEFAULT 'pending',
		total NUMERIC NOT NULL DEFAULT 0,
		discount NUMERIC NOT NULL DEFAULT 0,
		cod_amount NUMERIC NOT NULL DEFAULT 0,
		collected_amount NUMERIC NOT NULL DEFAULT 0,
		shipping_fee NUMERIC NOT NULL DEFAULT 0,
		balance_due NUMERIC NOT NULL DEFAULT 0,
		dropshipper_profit TEXT,
		investor_shares TEXT,
		driver_commission NUMERIC NOT NULL DEFAULT 0,
		agent_commission_pkr NUMERIC NOT NULL DEFAULT 0,
		commissioner_commission NUMERIC NOT NULL DEFAULT 0,
		payout_finalized_at DATETIME,
		manager_stock_consumed TEXT,
		inventory_adjusted INTEGER NOT NULL DEFAULT 0,
		return_reason TEXT,
		return_submitted_to_company INTEGER NOT NULL DEFAULT 0,
		return_submitted_at DATETIME,
		return_verified INTEGER NOT NULL DEFAULT 0,
		return_verified_at DATETIME,
		return_verified_by TEXT,
		confirmed_at DATETIME,
		picked_up_at DATETIME,
		shipped_at DATETIME,
		out_for_delivery_at DATETIME,
		delivered_at DATETIME,
		returned_at DATETIME,
		cancelled_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	return db
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

type orderRow struct {
	ownerID     uuid.UUID
	createdBy   uuid.UUID
	driverID    *uuid.UUID
	status      enums.ShipmentStatus
	currency    enums.Currency
	total       string
	driverComm  string
	commissComm string
	agentPKR    string
	dropshipper *types.DropshipperProfitShare
	shares      []types.InvestorProfitShare
}

func seedOrderRow(t *testing.T, db *gorm.DB, row orderRow) {
	t.Helper()
	currency := row.currency
	if currency == "" {
		currency = enums.CurrencyAED
	}
	driverComm := decimal.Zero
	if row.driverComm != "" {
		driverComm = dec(row.driverComm)
	}
	commissComm := decimal.Zero
	if row.commissComm != "" {
		commissComm = dec(row.commissComm)
	}
	agentPKR := decimal.Zero
	if row.agentPKR != "" {
		agentPKR = dec(row.agentPKR)
	}
	require.NoError(t, db.Create(&models.Order{
		ID:                     uuid.New(),
		InvoiceNumber:          uuid.NewString()[:8],
		OwnerID:                row.ownerID,
		CreatedBy:              row.createdBy,
		CreatedByRole:          enums.RoleAgent,
		DriverID:               row.driverID,
		CustomerName:           "Latifa R",
		CustomerPhone:          "+971500000003",
		Country:                enums.CountryUAE,
		Currency:               currency,
		Status:                 row.status,
		Confirmation:           enums.ConfirmationStatusPending,
		Total:                  dec(row.total),
		DriverCommission:       driverComm,
		CommissionerCommission: commissComm,
		AgentCommissionPKR:     agentPKR,
		DropshipperProfit:      row.dropshipper,
		InvestorShares:         row.shares,
	}).Error)
}

func TestOverviewOwnerScope(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ownerID := uuid.New()
	otherOwner := uuid.New()
	investorID := uuid.New()

	seedOrderRow(t, db, orderRow{ownerID: ownerID, createdBy: ownerID, status: enums.ShipmentStatusPending, total: "100"})
	seedOrderRow(t, db, orderRow{ownerID: ownerID, createdBy: ownerID, status: enums.ShipmentStatusReturned, total: "50"})
	seedOrderRow(t, db, orderRow{
		ownerID:     ownerID,
		createdBy:   ownerID,
		status:      enums.ShipmentStatusDelivered,
		total:       "200",
		driverComm:  "5",
		commissComm: "2",
		agentPKR:    "6684",
		dropshipper: &types.DropshipperProfitShare{Amount: dec("40")},
		shares: []types.InvestorProfitShare{
			{InvestorID: investorID, ProfitAmount: dec("92"), IsPending: false},
			{InvestorID: uuid.New(), ProfitAmount: dec("5"), IsPending: true},
		},
	})
	seedOrderRow(t, db, orderRow{ownerID: otherOwner, createdBy: otherOwner, status: enums.ShipmentStatusDelivered, total: "999"})

	svc, err := NewService(NewRepository(db), nil, nil, config.CacheConfig{})
	require.NoError(t, err)

	overview, err := svc.Overview(ctx, orders.Actor{ID: ownerID, Role: enums.RoleUser}, Query{})
	require.NoError(t, err)

	require.Equal(t, int64(1), overview.StatusCounts[enums.ShipmentStatusPending])
	require.Equal(t, int64(1), overview.StatusCounts[enums.ShipmentStatusReturned])
	require.Equal(t, int64(1), overview.StatusCounts[enums.ShipmentStatusDelivered])
	require.True(t, dec("350").Equal(overview.TotalsByCurrency[enums.CurrencyAED]),
		"got %s", overview.TotalsByCurrency[enums.CurrencyAED])

	require.Equal(t, int64(1), overview.DeliveredCount)
	require.True(t, dec("200").Equal(overview.DeliveredRevenue[enums.CurrencyAED]))
	// 5 driver + 2 commissioner + 40 dropshipper + 92 settled investor; the
	// pending 5 is excluded
	require.True(t, dec("139").Equal(overview.PayoutCost[enums.CurrencyAED]),
		"got %s", overview.PayoutCost[enums.CurrencyAED])
	require.True(t, dec("61").Equal(overview.NetMargin[enums.CurrencyAED]))
	require.True(t, dec("6684").Equal(overview.AgentCommissionPKR))
}

func TestOverviewDriverScope(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ownerID := uuid.New()
	driverID := uuid.New()

	seedOrderRow(t, db, orderRow{ownerID: ownerID, createdBy: ownerID, driverID: &driverID, status: enums.ShipmentStatusDelivered, total: "80", driverComm: "5"})
	seedOrderRow(t, db, orderRow{ownerID: ownerID, createdBy: ownerID, status: enums.ShipmentStatusDelivered, total: "60"})

	svc, err := NewService(NewRepository(db), nil, nil, config.CacheConfig{})
	require.NoError(t, err)

	overview, err := svc.Overview(ctx, orders.Actor{ID: driverID, Role: enums.RoleDriver}, Query{})
	require.NoError(t, err)
	require.Equal(t, int64(1), overview.DeliveredCount)
	require.True(t, dec("80").Equal(overview.DeliveredRevenue[enums.CurrencyAED]))
}

func TestOverviewInvestorScope(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ownerID := uuid.New()
	investorID := uuid.New()

	seedOrderRow(t, db, orderRow{
		ownerID:   ownerID,
		createdBy: ownerID,
		status:    enums.ShipmentStatusDelivered,
		total:     "120",
		shares:    []types.InvestorProfitShare{{InvestorID: investorID, ProfitAmount: dec("30")}},
	})
	seedOrderRow(t, db, orderRow{ownerID: ownerID, createdBy: ownerID, status: enums.ShipmentStatusDelivered, total: "75"})

	svc, err := NewService(NewRepository(db), nil, nil, config.CacheConfig{})
	require.NoError(t, err)

	overview, err := svc.Overview(ctx, orders.Actor{ID: investorID, Role: enums.RoleInvestor}, Query{})
	require.NoError(t, err)
	require.Equal(t, int64(1), overview.DeliveredCount)
	require.True(t, dec("120").Equal(overview.TotalsByCurrency[enums.CurrencyAED]))
}

func TestOverviewRejectsUnknownRole(t *testing.T) {
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db), nil, nil, config.CacheConfig{})
	require.NoError(t, err)

	_, err = svc.Overview(context.Background(), orders.Actor{ID: uuid.New(), Role: enums.Role("auditor")}, Query{})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeForbidden, appErr.Code())
}

type stubCache struct {
	store map[string]string
	sets  int
	hits  int
}

func (c *stubCache) Get(ctx context.Context, key string) (string, error) {
	value, ok := c.store[key]
	if ok && value != "" {
		c.hits++
	}
	return value, nil
}

func (c *stubCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.sets++
	c.store[key] = value.(string)
	return nil
}

func (c *stubCache) SummaryKey(role, userID, query string) string {
	return "dt:summary:" + role + ":" + userID + ":" + query
}

func TestOverviewServedFromCache(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ownerID := uuid.New()
	seedOrderRow(t, db, orderRow{ownerID: ownerID, createdBy: ownerID, status: enums.ShipmentStatusPending, total: "100"})

	cache := &stubCache{store: map[string]string{}}
	svc, err := NewService(NewRepository(db), cache, nil, config.CacheConfig{SummaryTTL: 30 * time.Second})
	require.NoError(t, err)
	actor := orders.Actor{ID: ownerID, Role: enums.RoleUser}

	first, err := svc.Overview(ctx, actor, Query{})
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)

	// a row added after the cached read stays invisible until the TTL lapses
	seedOrderRow(t, db, orderRow{ownerID: ownerID, createdBy: ownerID, status: enums.ShipmentStatusPending, total: "40"})

	second, err := svc.Overview(ctx, actor, Query{})
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)
	require.Equal(t, 1, cache.hits)
	require.Equal(t, first.StatusCounts, second.StatusCounts)
	require.True(t, first.TotalsByCurrency[enums.CurrencyAED].Equal(second.TotalsByCurrency[enums.CurrencyAED]))
}
