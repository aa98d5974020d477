package stock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/droptide/droptide-backend/pkg/enums"
	pkgerrors "github.com/droptide/droptide-backend/pkg/errors"
	"github.com/droptide/droptide-backend/pkg/outbox"
	"github.com/droptide/droptide-backend/pkg/types"
)

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

func newTestService(t *testing.T) (Service, *gorm.DB, *recordingOutbox) {
	t.Helper()
	db := newTestDB(t)
	sink := &recordingOutbox{}
	svc, err := NewService(NewRepository(db), &gormTxRunner{db: db}, sink, nil)
	require.NoError(t, err)
	return svc, db, sink
}

func TestReserveManagerProducesSnapshot(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	repo := NewRepository(db)

	ownerID, managerID := uuid.New(), uuid.New()
	productID := seedProduct(t, db, ownerID)
	require.NoError(t, repo.SetManagerStock(ctx, ownerID, managerID, productID, enums.CountryUAE, 10))

	snapshot, err := svc.ReserveManager(ctx, ReserveManagerInput{
		OwnerID:   ownerID,
		ManagerID: managerID,
		Country:   "uae",
		Items:     []types.ConsumedItem{{ProductID: productID, Qty: 4}},
	})
	require.NoError(t, err)
	require.Equal(t, string(enums.CountryUAE), snapshot.Country)
	require.Len(t, snapshot.Items, 1)

	row, err := repo.FindManagerStock(ctx, ownerID, managerID, productID, enums.CountryUAE)
	require.NoError(t, err)
	require.Equal(t, 6, row.Qty)
}

func TestReserveManagerInsufficientReportsShortfall(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	repo := NewRepository(db)

	ownerID, managerID := uuid.New(), uuid.New()
	productID := seedProduct(t, db, ownerID)
	require.NoError(t, repo.SetManagerStock(ctx, ownerID, managerID, productID, enums.CountryUAE, 2))

	_, err := svc.ReserveManager(ctx, ReserveManagerInput{
		OwnerID:   ownerID,
		ManagerID: managerID,
		Country:   enums.CountryUAE,
		Items:     []types.ConsumedItem{{ProductID: productID, Qty: 5}},
	})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeConflict, appErr.Code())
	details, ok := appErr.Details().(map[string]any)
	require.True(t, ok)
	require.Equal(t, 2, details["available"])
	require.Equal(t, 5, details["requested"])
}

func TestReleaseManagerRestoresSnapshotExactly(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	repo := NewRepository(db)

	ownerID, managerID := uuid.New(), uuid.New()
	productID := seedProduct(t, db, ownerID)
	require.NoError(t, repo.SetManagerStock(ctx, ownerID, managerID, productID, enums.CountryOman, 8))

	snapshot, err := svc.ReserveManager(ctx, ReserveManagerInput{
		OwnerID:   ownerID,
		ManagerID: managerID,
		Country:   enums.CountryOman,
		Items:     []types.ConsumedItem{{ProductID: productID, Qty: 3}},
	})
	require.NoError(t, err)

	// allocation row edited after reservation; release must still restore
	// exactly the snapshot amount on top of whatever is there now
	require.NoError(t, repo.SetManagerStock(ctx, ownerID, managerID, productID, enums.CountryOman, 1))
	require.NoError(t, svc.ReleaseManager(ctx, snapshot))

	row, err := repo.FindManagerStock(ctx, ownerID, managerID, productID, enums.CountryOman)
	require.NoError(t, err)
	require.Equal(t, 4, row.Qty)
}

func TestReleaseManagerNilSnapshotIsNoop(t *testing.T) {
	svc, _, _ := newTestService(t)
	require.NoError(t, svc.ReleaseManager(context.Background(), nil))
}

func TestReserveGlobalInsufficient(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	repo := NewRepository(db)

	ownerID := uuid.New()
	productID := seedProduct(t, db, ownerID)
	require.NoError(t, repo.AddCountryStock(ctx, productID, enums.CountryKSA, 1))

	err := svc.ReserveGlobal(ctx, ReserveGlobalInput{
		Country: enums.CountryKSA,
		Items:   []types.ConsumedItem{{ProductID: productID, Qty: 2}},
	})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestSetAllocationHoldsSumInvariant(t *testing.T) {
	svc, db, sink := newTestService(t)
	ctx := context.Background()
	repo := NewRepository(db)

	ownerID := uuid.New()
	productID := seedProduct(t, db, ownerID)
	managerA, managerB := uuid.New(), uuid.New()
	require.NoError(t, repo.AddCountryStock(ctx, productID, enums.CountryUAE, 10))
	require.NoError(t, repo.SetManagerStock(ctx, ownerID, managerA, productID, enums.CountryUAE, 6))

	err := svc.SetAllocation(ctx, SetAllocationInput{
		OwnerID:   ownerID,
		ManagerID: managerB,
		ProductID: productID,
		Country:   enums.CountryUAE,
		Qty:       5,
		ActorID:   ownerID,
		ActorRole: enums.RoleUser,
	})
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	require.NoError(t, svc.SetAllocation(ctx, SetAllocationInput{
		OwnerID:   ownerID,
		ManagerID: managerB,
		ProductID: productID,
		Country:   enums.CountryUAE,
		Qty:       4,
		ActorID:   ownerID,
		ActorRole: enums.RoleUser,
	}))
	require.Len(t, sink.events, 1)
	require.Equal(t, enums.EventStockAllocationSet, sink.events[0].EventType)
}

func TestFreeStockSubtractsAllocations(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	repo := NewRepository(db)

	ownerID := uuid.New()
	productID := seedProduct(t, db, ownerID)
	require.NoError(t, repo.AddCountryStock(ctx, productID, enums.CountryUAE, 10))
	require.NoError(t, repo.SetManagerStock(ctx, ownerID, uuid.New(), productID, enums.CountryUAE, 3))
	require.NoError(t, repo.SetManagerStock(ctx, ownerID, uuid.New(), productID, enums.CountryUAE, 4))

	free, err := svc.FreeStock(ctx, ownerID, productID, enums.CountryUAE)
	require.NoError(t, err)
	require.Equal(t, 3, free)
}
