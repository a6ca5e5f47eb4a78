package ports

import (
	"context"

	types "github.com/dominusaudio/commerce-api/internal/domains/inventory/application/types"
	"github.com/dominusaudio/commerce-api/internal/domains/inventory/domain"
	"github.com/dominusaudio/commerce-api/internal/shared/pagination"
)

// Service is the stock ledger surface exposed to adapters and to the order
// workflow.
type Service interface {
	AdjustStock(ctx context.Context, productID string, input types.AdjustStockInput, actorID string) (*domain.Inventory, error)
	ReserveStock(ctx context.Context, productID string, quantity int, reference string) (*domain.Inventory, error)
	ConfirmReservation(ctx context.Context, productID string, quantity int, reference string) (*domain.Inventory, error)
	ReleaseReservation(ctx context.Context, productID string, quantity int, reference string) (*domain.Inventory, error)
	AvailableStock(ctx context.Context, productID string) (int, error)
	GetProductInventory(ctx context.Context, productID string) (*types.InventoryDetail, error)
	GetAllInventory(ctx context.Context, params pagination.Params) (*pagination.Page[*domain.Inventory], error)
	GetLowStock(ctx context.Context, params pagination.Params) (*pagination.Page[*domain.Inventory], error)
	GetMovementHistory(ctx context.Context, inventoryID string, params pagination.Params) (*pagination.Page[*domain.StockMovement], error)
}
