package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/dominusaudio/commerce-api/internal/domains/inventory/application/types"
	"github.com/dominusaudio/commerce-api/internal/domains/inventory/domain"
	"github.com/dominusaudio/commerce-api/internal/domains/inventory/ports"
	"github.com/dominusaudio/commerce-api/internal/shared/pagination"
	"github.com/dominusaudio/commerce-api/internal/shared/tx"
)

type fakeInventoryRepo struct {
	byProduct map[string]*domain.Inventory
	movements []*domain.StockMovement
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{byProduct: map[string]*domain.Inventory{}}
}

func (f *fakeInventoryRepo) seed(inv *domain.Inventory) {
	f.byProduct[inv.ProductID] = inv
}

func (f *fakeInventoryRepo) GetByProductID(_ context.Context, productID string) (*domain.Inventory, error) {
	if inv, ok := f.byProduct[productID]; ok {
		clone := *inv
		return &clone, nil
	}
	return nil, ports.ErrNotFound
}

func (f *fakeInventoryRepo) GetByProductIDForUpdate(ctx context.Context, productID string) (*domain.Inventory, error) {
	return f.GetByProductID(ctx, productID)
}

func (f *fakeInventoryRepo) Save(_ context.Context, inv *domain.Inventory) error {
	clone := *inv
	f.byProduct[inv.ProductID] = &clone
	return nil
}

func (f *fakeInventoryRepo) AppendMovement(_ context.Context, mv *domain.StockMovement) error {
	f.movements = append(f.movements, mv)
	return nil
}

func (f *fakeInventoryRepo) List(_ context.Context, _ pagination.Params) ([]*domain.Inventory, int64, error) {
	var out []*domain.Inventory
	for _, inv := range f.byProduct {
		out = append(out, inv)
	}
	return out, int64(len(out)), nil
}

func (f *fakeInventoryRepo) ListLowStock(_ context.Context, _ pagination.Params) ([]*domain.Inventory, int64, error) {
	var out []*domain.Inventory
	for _, inv := range f.byProduct {
		if inv.LowStock() {
			out = append(out, inv)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeInventoryRepo) ListMovements(_ context.Context, inventoryID string, _ pagination.Params) ([]*domain.StockMovement, int64, error) {
	var out []*domain.StockMovement
	for _, mv := range f.movements {
		if mv.InventoryID == inventoryID {
			out = append(out, mv)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeInventoryRepo) RecentMovements(ctx context.Context, inventoryID string, _ int) ([]*domain.StockMovement, error) {
	out, _, err := f.ListMovements(ctx, inventoryID, pagination.Params{})
	return out, err
}

func newLedger(repo ports.Repository) *Service {
	return NewService(repo, tx.NopRunner{})
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("pairs update with one movement", func(t *testing.T) {
		repo := newFakeInventoryRepo()
		repo.seed(&domain.Inventory{ID: "inv-1", ProductID: "p1", Quantity: 10})
		svc := newLedger(repo)

		inv, err := svc.AdjustStock(ctx, "p1", types.AdjustStockInput{Type: domain.AdjustAdd, Quantity: 5, Reason: "Entrada de mercadoria NF 12345"}, "admin-1")
		require.NoError(t, err)
		assert.Equal(t, 15, inv.Quantity)
		require.Len(t, repo.movements, 1)
		mv := repo.movements[0]
		assert.Equal(t, domain.MovementIn, mv.Type)
		assert.Equal(t, 10, mv.PreviousQty)
		assert.Equal(t, 15, mv.NewQty)
		assert.Equal(t, "admin-1", mv.CreatedBy)
		assert.Equal(t, "Entrada de mercadoria NF 12345", mv.Reason)
	})

	t.Run("missing inventory row", func(t *testing.T) {
		svc := newLedger(newFakeInventoryRepo())
		_, err := svc.AdjustStock(ctx, "ghost", types.AdjustStockInput{Type: domain.AdjustSet, Quantity: 5}, "")
		require.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("negative result rejected without movement", func(t *testing.T) {
		repo := newFakeInventoryRepo()
		repo.seed(&domain.Inventory{ID: "inv-1", ProductID: "p1", Quantity: 2})
		svc := newLedger(repo)

		_, err := svc.AdjustStock(ctx, "p1", types.AdjustStockInput{Type: domain.AdjustSubtract, Quantity: 3}, "")
		require.ErrorIs(t, err, ErrInvalidInput)
		assert.Empty(t, repo.movements)
		assert.Equal(t, 2, repo.byProduct["p1"].Quantity)
	})
}

func TestReserveConfirmReleaseCycle(t *testing.T) {
	ctx := context.Background()
	repo := newFakeInventoryRepo()
	repo.seed(&domain.Inventory{ID: "inv-1", ProductID: "p1", Quantity: 10, ReservedQty: 0})
	svc := newLedger(repo)

	inv, err := svc.ReserveStock(ctx, "p1", 4, "order-1")
	require.NoError(t, err)
	assert.Equal(t, 4, inv.ReservedQty)
	assert.Equal(t, 10, inv.Quantity)

	inv, err = svc.ConfirmReservation(ctx, "p1", 4, "order-1")
	require.NoError(t, err)
	assert.Equal(t, 0, inv.ReservedQty)
	assert.Equal(t, 6, inv.Quantity)

	require.Len(t, repo.movements, 2)
	assert.Equal(t, domain.MovementReserved, repo.movements[0].Type)
	assert.Equal(t, "order-1", repo.movements[0].Reference)
	assert.Equal(t, domain.MovementOut, repo.movements[1].Type)

	inv, err = svc.ReserveStock(ctx, "p1", 2, "order-2")
	require.NoError(t, err)
	inv, err = svc.ReleaseReservation(ctx, "p1", 2, "order-2")
	require.NoError(t, err)
	assert.Equal(t, 0, inv.ReservedQty)
	assert.Equal(t, 6, inv.Quantity)
}

func TestReserveStockInsufficient(t *testing.T) {
	ctx := context.Background()
	repo := newFakeInventoryRepo()
	repo.seed(&domain.Inventory{ID: "inv-1", ProductID: "p1", Quantity: 5, ReservedQty: 4})
	svc := newLedger(repo)

	_, err := svc.ReserveStock(ctx, "p1", 2, "order-1")
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 1, insufficient.Available)
	assert.Empty(t, repo.movements)
}

func TestAvailableStock(t *testing.T) {
	ctx := context.Background()
	repo := newFakeInventoryRepo()
	repo.seed(&domain.Inventory{ID: "inv-1", ProductID: "p1", Quantity: 7, ReservedQty: 3})
	svc := newLedger(repo)

	available, err := svc.AvailableStock(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 4, available)

	_, err = svc.AvailableStock(ctx, "ghost")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestGetProductInventory(t *testing.T) {
	ctx := context.Background()
	repo := newFakeInventoryRepo()
	repo.seed(&domain.Inventory{ID: "inv-1", ProductID: "p1", Quantity: 10})
	svc := newLedger(repo)

	_, err := svc.ReserveStock(ctx, "p1", 1, "order-1")
	require.NoError(t, err)

	detail, err := svc.GetProductInventory(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", detail.Inventory.ProductID)
	assert.Len(t, detail.RecentMovements, 1)
}
