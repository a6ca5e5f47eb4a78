package ports

import (
	"context"
	"errors"

	"github.com/dominusaudio/commerce-api/internal/domains/inventory/domain"
	"github.com/dominusaudio/commerce-api/internal/shared/pagination"
)

// ErrNotFound signals a product without an inventory row. The message is
// user-facing.
var ErrNotFound = errors.New("Estoque não encontrado")

// Repository persists the stock ledger. Every mutation of an Inventory row
// must be paired with exactly one movement row inside the same transaction;
// the application service owns that pairing.
type Repository interface {
	GetByProductID(ctx context.Context, productID string) (*domain.Inventory, error)
	// GetByProductIDForUpdate additionally locks the row for the duration of
	// the surrounding transaction so concurrent availability reads serialize.
	GetByProductIDForUpdate(ctx context.Context, productID string) (*domain.Inventory, error)
	Save(ctx context.Context, inv *domain.Inventory) error
	AppendMovement(ctx context.Context, mv *domain.StockMovement) error
	List(ctx context.Context, params pagination.Params) ([]*domain.Inventory, int64, error)
	ListLowStock(ctx context.Context, params pagination.Params) ([]*domain.Inventory, int64, error)
	ListMovements(ctx context.Context, inventoryID string, params pagination.Params) ([]*domain.StockMovement, int64, error)
	RecentMovements(ctx context.Context, inventoryID string, limit int) ([]*domain.StockMovement, error)
}
