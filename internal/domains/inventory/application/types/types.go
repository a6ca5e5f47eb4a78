// Package types holds the request models and projections of the inventory
// application layer.
package types

import "github.com/dominusaudio/commerce-api/internal/domains/inventory/domain"

// AdjustStockInput is a validated manual stock change request.
type AdjustStockInput struct {
	Type     domain.AdjustmentType
	Quantity int
	Reason   string
}

// InventoryDetail is the stock view of one product with its most recent
// movements.
type InventoryDetail struct {
	Inventory       *domain.Inventory
	RecentMovements []*domain.StockMovement
}
