package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dominusaudio/commerce-api/internal/domains/inventory/domain"
	"github.com/dominusaudio/commerce-api/internal/domains/inventory/ports"
	"github.com/dominusaudio/commerce-api/internal/shared/pagination"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory ledger store for local runs and tests. It offers
// no cross-row atomicity; production uses the PostgreSQL adapter.
type Repository struct {
	mu        sync.Mutex
	byProduct map[string]*domain.Inventory
	movements []*domain.StockMovement
}

func NewRepository() *Repository {
	return &Repository{byProduct: map[string]*domain.Inventory{}}
}

// Seed registers an inventory row, generating an id when absent.
func (r *Repository) Seed(inv *domain.Inventory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	clone := *inv
	r.byProduct[inv.ProductID] = &clone
}

func (r *Repository) GetByProductID(_ context.Context, productID string) (*domain.Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.byProduct[productID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *inv
	return &clone, nil
}

func (r *Repository) GetByProductIDForUpdate(ctx context.Context, productID string) (*domain.Inventory, error) {
	return r.GetByProductID(ctx, productID)
}

func (r *Repository) Save(_ context.Context, inv *domain.Inventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byProduct[inv.ProductID]; !ok {
		return ports.ErrNotFound
	}
	clone := *inv
	clone.UpdatedAt = time.Now()
	r.byProduct[inv.ProductID] = &clone
	return nil
}

func (r *Repository) AppendMovement(_ context.Context, mv *domain.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mv.ID == "" {
		mv.ID = uuid.NewString()
	}
	if mv.CreatedAt.IsZero() {
		mv.CreatedAt = time.Now()
	}
	clone := *mv
	r.movements = append(r.movements, &clone)
	return nil
}

func (r *Repository) List(_ context.Context, params pagination.Params) ([]*domain.Inventory, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sortedByProduct(func(*domain.Inventory) bool { return true })
	return paginate(all, params), int64(len(all)), nil
}

func (r *Repository) ListLowStock(_ context.Context, params pagination.Params) ([]*domain.Inventory, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	low := r.sortedByProduct(func(inv *domain.Inventory) bool { return inv.LowStock() })
	sort.Slice(low, func(i, j int) bool { return low[i].Quantity < low[j].Quantity })
	return paginate(low, params), int64(len(low)), nil
}

func (r *Repository) ListMovements(_ context.Context, inventoryID string, params pagination.Params) ([]*domain.StockMovement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.StockMovement
	for i := len(r.movements) - 1; i >= 0; i-- {
		if r.movements[i].InventoryID == inventoryID {
			clone := *r.movements[i]
			matched = append(matched, &clone)
		}
	}
	return paginate(matched, params), int64(len(matched)), nil
}

func (r *Repository) RecentMovements(ctx context.Context, inventoryID string, limit int) ([]*domain.StockMovement, error) {
	movements, _, err := r.ListMovements(ctx, inventoryID, pagination.Params{Page: 1, Limit: limit})
	return movements, err
}

func (r *Repository) sortedByProduct(keep func(*domain.Inventory) bool) []*domain.Inventory {
	var out []*domain.Inventory
	for _, inv := range r.byProduct {
		if keep(inv) {
			clone := *inv
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func paginate[T any](items []T, params pagination.Params) []T {
	if params.Limit <= 0 {
		return items
	}
	start := params.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + params.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
