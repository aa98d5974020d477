package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/droptide/droptide-backend/internal/payouts"
	"github.com/droptide/droptide-backend/internal/sequence"
	"github.com/droptide/droptide-backend/internal/stock"
	"github.com/droptide/droptide-backend/pkg/config"
	"github.com/droptide/droptide-backend/pkg/db/models"
	"github.com/droptide/droptide-backend/pkg/enums"
	pkgerrors "github.com/droptide/droptide-backend/pkg/errors"
	"github.com/droptide/droptide-backend/pkg/outbox"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT,
			role TEXT NOT NULL DEFAULT 'user',
			country TEXT,
			city TEXT,
			is_active INTEGER NOT NULL DEFAULT 1,
			owner_id TEXT,
			investor_status TEXT,
			profit_percentage NUMERIC NOT NULL DEFAULT 0,
			invested_amount NUMERIC NOT NULL DEFAULT 0,
			target_profit NUMERIC NOT NULL DEFAULT 0,
			earned_profit NUMERIC NOT NULL DEFAULT 0,
			pending_gross NUMERIC NOT NULL DEFAULT 0,
			commission_per_order NUMERIC NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE products (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			sku TEXT NOT NULL,
			title TEXT NOT NULL,
			price NUMERIC NOT NULL DEFAULT 0,
			purchase_price NUMERIC NOT NULL DEFAULT 0,
			dropshipping_price NUMERIC NOT NULL DEFAULT 0,
			stock_qty INTEGER NOT NULL DEFAULT 0,
			in_stock INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE product_country_stocks (
			product_id TEXT NOT NULL,
			country TEXT NOT NULL,
			qty INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME,
			PRIMARY KEY (product_id, country)
		)`,
		`CREATE TABLE manager_product_stocks (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			manager_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			country TEXT NOT NULL,
			qty INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME,
			UNIQUE (owner_id, manager_id, product_id, country)
		)`,
		`CREATE TABLE counters (
			name TEXT PRIMARY KEY,
			seq INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE orders (
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
		)`,
		`CREATE TABLE order_items (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			sku TEXT NOT NULL,
			title TEXT NOT NULL,
			qty INTEGER NOT NULL,
			unit_price NUMERIC NOT NULL DEFAULT 0,
			purchase_price NUMERIC NOT NULL DEFAULT 0,
			dropshipping_price NUMERIC NOT NULL DEFAULT 0,
			created_at DATETIME
		)`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r *gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type recordingOutbox struct {
	events []outbox.DomainEvent
}

func (o *recordingOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	o.events = append(o.events, event)
	return nil
}

func (o *recordingOutbox) types() []enums.OutboxEventType {
	out := make([]enums.OutboxEventType, 0, len(o.events))
	for _, event := range o.events {
		out = append(out, event.EventType)
	}
	return out
}

type stubPayouts struct {
	preassigned  int
	commissioned int
	finalized    int
}

func (p *stubPayouts) WithTx(tx *gorm.DB) payouts.Service { return p }

func (p *stubPayouts) PreassignInvestor(ctx context.Context, order *models.Order) error {
	p.preassigned++
	return nil
}

func (p *stubPayouts) AssignCommissioner(ctx context.Context, order *models.Order) error {
	p.commissioned++
	return nil
}

func (p *stubPayouts) FinalizeDelivery(ctx context.Context, order *models.Order) (*payouts.Finalization, error) {
	p.finalized++
	now := time.Now()
	order.PayoutFinalizedAt = &now
	return &payouts.Finalization{FinalizedAt: now}, nil
}

func (p *stubPayouts) DriverAggregate(ctx context.Context, driverID uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type stubDuplicates struct {
	store map[string]string
}

func (d *stubDuplicates) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := d.store[key]; ok {
		return false, nil
	}
	d.store[key] = fmt.Sprint(value)
	return true, nil
}

func (d *stubDuplicates) Get(ctx context.Context, key string) (string, error) {
	return d.store[key], nil
}

func (d *stubDuplicates) DuplicateOrderKey(creatorID, fingerprint string) string {
	return "dt:duplicate:" + creatorID + ":" + fingerprint
}

type testEnv struct {
	db      *gorm.DB
	svc     Service
	sink    *recordingOutbox
	payouts *stubPayouts
	dup     *stubDuplicates
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	sink := &recordingOutbox{}
	payoutStub := &stubPayouts{}
	dup := &stubDuplicates{store: map[string]string{}}

	stockSvc, err := stock.NewService(stock.NewRepository(db), &gormTxRunner{db: db}, sink, nil)
	require.NoError(t, err)
	seqSvc, err := sequence.NewService(sequence.NewRepository(db))
	require.NoError(t, err)

	svc, err := NewService(
		NewRepository(db), stockSvc, seqSvc, payoutStub,
		&gormTxRunner{db: db}, sink, dup, nil, nil,
		config.OrdersConfig{DuplicateWindow: 2 * time.Minute, InvoiceSequence: "orders"},
	)
	require.NoError(t, err)
	return &testEnv{db: db, svc: svc, sink: sink, payouts: payoutStub, dup: dup}
}

func seedProduct(t *testing.T, db *gorm.DB, ownerID uuid.UUID, countryQty int) uuid.UUID {
	t.Helper()
	productID := uuid.New()
	require.NoError(t, db.Create(&models.Product{
		ID:                productID,
		OwnerID:           ownerID,
		SKU:               "SKU-1",
		Title:             "Widget",
		Price:             decimal.RequireFromString("50"),
		PurchasePrice:     decimal.RequireFromString("30"),
		DropshippingPrice: decimal.RequireFromString("40"),
		IsActive:          true,
	}).Error)
	if countryQty > 0 {
		require.NoError(t, stock.NewRepository(db).AddCountryStock(
			context.Background(), productID, enums.CountryUAE, countryQty))
	}
	return productID
}

func seedUser(t *testing.T, db *gorm.DB, role enums.Role, country enums.Country, city string) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Name:     "Someone",
		Email:    uuid.NewString() + "@example.com",
		Role:     role,
		Country:  country,
		City:     city,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createInput(ownerID uuid.UUID, actor Actor, productID uuid.UUID, qty int) CreateOrderInput {
	return CreateOrderInput{
		OwnerID:       ownerID,
		Actor:         actor,
		CustomerName:  "Amna K",
		CustomerPhone: "+971500000001",
		Country:       "uae",
		City:          "Dubai",
		Items:         []ItemInput{{ProductID: productID, Qty: qty}},
		CODAmount:     decimal.RequireFromString("200"),
	}
}

func TestCreateGlobalTier(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ownerID := uuid.New()
	productID := seedProduct(t, env.db, ownerID, 10)

	order, err := env.svc.Create(ctx, createInput(ownerID, Actor{ID: ownerID, Role: enums.RoleUser}, productID, 4))
	require.NoError(t, err)

	require.Equal(t, "00001", order.InvoiceNumber)
	require.Equal(t, enums.CountryUAE, order.Country)
	require.Equal(t, enums.CurrencyAED, order.Currency)
	require.True(t, decimal.RequireFromString("200").Equal(order.Total), "got %s", order.Total)
	require.True(t, order.InventoryAdjusted)
	require.Nil(t, order.ManagerStockConsumed)
	require.Len(t, order.Items, 1)
	require.True(t, decimal.RequireFromString("50").Equal(order.Items[0].UnitPrice))

	qty, err := stock.NewRepository(env.db).GetCountryQty(ctx, productID, enums.CountryUAE)
	require.NoError(t, err)
	require.Equal(t, 6, qty)

	require.Equal(t, 1, env.payouts.preassigned)
	require.Equal(t, 1, env.payouts.commissioned)
	require.Contains(t, env.sink.types(), enums.EventOrderCreated)
	require.Contains(t, env.sink.types(), enums.EventStockReserved)
}

func TestCreateDuplicateWindowReturnsExisting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ownerID := uuid.New()
	productID := seedProduct(t, env.db, ownerID, 10)
	input := createInput(ownerID, Actor{ID: ownerID, Role: enums.RoleUser}, productID, 2)

	first, err := env.svc.Create(ctx, input)
	require.NoError(t, err)
	second, err := env.svc.Create(ctx, input)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestCreateManagerTierRecordsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ownerID := uuid.New()
	productID := seedProduct(t, env.db, ownerID, 10)
	manager := seedUser(t, env.db, enums.RoleManager, enums.CountryUAE, "Dubai")
	require.NoError(t, stock.NewRepository(env.db).SetManagerStock(ctx, ownerID, manager.ID, productID, enums.CountryUAE, 5))

	order, err := env.svc.Create(ctx, createInput(ownerID, Actor{ID: manager.ID, Role: enums.RoleManager}, productID, 3))
	require.NoError(t, err)

	require.NotNil(t, order.ManagerID)
	require.Equal(t, manager.ID, *order.ManagerID)
	require.NotNil(t, order.ManagerStockConsumed)
	require.Equal(t, manager.ID, order.ManagerStockConsumed.ManagerID)

	row, err := stock.NewRepository(env.db).FindManagerStock(ctx, ownerID, manager.ID, productID, enums.CountryUAE)
	require.NoError(t, err)
	require.Equal(t, 2, row.Qty)
}

func TestCreateInsufficientStockRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ownerID := uuid.New()
	productID := seedProduct(t, env.db, ownerID, 10)

	_, err := env.svc.Create(ctx, createInput(ownerID, Actor{ID: ownerID, Role: enums.RoleUser}, productID, 20))
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeConflict, appErr.Code())

	var count int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&count).Error)
	require.Equal(t, int64(0), count)

	qty, err := stock.NewRepository(env.db).GetCountryQty(ctx, productID, enums.CountryUAE)
	require.NoError(t, err)
	require.Equal(t, 10, qty)
}

func TestTransitionToDeliveredFinalizesPayouts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ownerID := uuid.New()
	productID := seedProduct(t, env.db, ownerID, 10)
	actor := Actor{ID: ownerID, Role: enums.RoleUser}

	order, err := env.svc.Create(ctx, createInput(ownerID, actor, productID, 2))
	require.NoError(t, err)

	updated, err := env.svc.Transition(ctx, actor, order.ID, TransitionInput{Target: enums.ShipmentStatusDelivered})
	require.NoError(t, err)

	require.Equal(t, enums.ShipmentStatusDelivered, updated.Status)
	require.NotNil(t, updated.DeliveredAt)
	require.True(t, decimal.RequireFromString("200").Equal(updated.CollectedAmount), "got %s", updated.CollectedAmount)
	require.True(t, updated.BalanceDue.IsZero())
	require.Equal(t, 1, env.payouts.finalized)
	require.NotNil(t, updated.PayoutFinalizedAt)
	require.Contains(t, env.sink.types(), enums.EventOrderStatusChanged)
}

func TestTransitionRecordsReturnReason(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ownerID := uuid.New()
	productID := seedProduct(t, env.db, ownerID, 10)
	actor := Actor{ID: ownerID, Role: enums.RoleUser}

	order, err := env.svc.Create(ctx, createInput(ownerID, actor, productID, 2))
	require.NoError(t, err)

	reason := "customer refused"
	updated, err := env.svc.Transition(ctx, actor, order.ID, TransitionInput{
		Target:       enums.ShipmentStatusReturned,
		ReturnReason: &reason,
	})
	require.NoError(t, err)
	require.Equal(t, enums.ShipmentStatusReturned, updated.Status)
	require.NotNil(t, updated.ReturnReason)
	require.Equal(t, reason, *updated.ReturnReason)
	require.Equal(t, 0, env.payouts.finalized)

	// stock does not move on the terminal transition itself
	qty, err := stock.NewRepository(env.db).GetCountryQty(ctx, productID, enums.CountryUAE)
	require.NoError(t, err)
	require.Equal(t, 8, qty)
	require.True(t, updated.InventoryAdjusted)
}

func TestAssignDriverChecksCountryAndCity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ownerID := uuid.New()
	productID := seedProduct(t, env.db, ownerID, 10)
	actor := Actor{ID: ownerID, Role: enums.RoleUser}

	order, err := env.svc.Create(ctx, createInput(ownerID, actor, productID, 1))
	require.NoError(t, err)

	foreign := seedUser(t, env.db, enums.RoleDriver, enums.CountryOman, "Muscat")
	_, err = env.svc.AssignDriver(ctx, actor, order.ID, foreign.ID)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	wrongCity := seedUser(t, env.db, enums.RoleDriver, enums.CountryUAE, "Sharjah")
	_, err = env.svc.AssignDriver(ctx, actor, order.ID, wrongCity.ID)
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	driver := seedUser(t, env.db, enums.RoleDriver, enums.CountryUAE, "Dubai")
	updated, err := env.svc.AssignDriver(ctx, actor, order.ID, driver.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.DriverID)
	require.Equal(t, driver.ID, *updated.DriverID)
	require.Contains(t, env.sink.types(), enums.EventOrderAssigned)
}

func TestDeleteRestoresStockFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ownerID := uuid.New()
	productID := seedProduct(t, env.db, ownerID, 10)
	actor := Actor{ID: ownerID, Role: enums.RoleUser}

	order, err := env.svc.Create(ctx, createInput(ownerID, actor, productID, 4))
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, actor, order.ID))

	qty, err := stock.NewRepository(env.db).GetCountryQty(ctx, productID, enums.CountryUAE)
	require.NoError(t, err)
	require.Equal(t, 10, qty)

	gone, err := NewRepository(env.db).FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
	require.Contains(t, env.sink.types(), enums.EventStockReleased)
	require.Contains(t, env.sink.types(), enums.EventOrderDeleted)
}

func TestDeleteRequiresPrivilege(t *testing.T) {
	env := newTestEnv(t)
	err := env.svc.Delete(context.Background(), Actor{ID: uuid.New(), Role: enums.RoleDriver}, uuid.New())
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeForbidden, appErr.Code())
}
