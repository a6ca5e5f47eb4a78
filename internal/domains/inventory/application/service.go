package application

import (
	"context"

	types "github.com/dominusaudio/commerce-api/internal/domains/inventory/application/types"
	"github.com/dominusaudio/commerce-api/internal/domains/inventory/domain"
	"github.com/dominusaudio/commerce-api/internal/domains/inventory/ports"
	"github.com/dominusaudio/commerce-api/internal/shared/pagination"
	"github.com/dominusaudio/commerce-api/internal/shared/tx"
)

// Service is the inventory ledger: the single source of truth for product
// stock. Every mutation runs as one atomic unit that writes the inventory row
// and its paired movement.
type Service struct {
	repo ports.Repository
	tx   tx.Runner
}

// NewService wires the ledger with its storage and transaction boundary.
func NewService(repo ports.Repository, runner tx.Runner) *Service {
	return &Service{repo: repo, tx: runner}
}

// AdjustStock applies a manual set/add/subtract change on behalf of actorID.
func (s *Service) AdjustStock(ctx context.Context, productID string, input types.AdjustStockInput, actorID string) (*domain.Inventory, error) {
	return s.mutate(ctx, productID, func(inv *domain.Inventory) (*domain.StockMovement, error) {
		mv, err := inv.Adjust(input.Type, input.Quantity)
		if err != nil {
			return nil, err
		}
		mv.Reason = input.Reason
		mv.CreatedBy = actorID
		return mv, nil
	})
}

// ReserveStock earmarks stock for the order identified by reference.
func (s *Service) ReserveStock(ctx context.Context, productID string, quantity int, reference string) (*domain.Inventory, error) {
	return s.mutate(ctx, productID, func(inv *domain.Inventory) (*domain.StockMovement, error) {
		mv, err := inv.Reserve(quantity)
		if err != nil {
			return nil, err
		}
		mv.Reference = reference
		return mv, nil
	})
}

// ConfirmReservation decrements on-hand stock for a paid order.
func (s *Service) ConfirmReservation(ctx context.Context, productID string, quantity int, reference string) (*domain.Inventory, error) {
	return s.mutate(ctx, productID, func(inv *domain.Inventory) (*domain.StockMovement, error) {
		mv, err := inv.ConfirmReservation(quantity)
		if err != nil {
			return nil, err
		}
		mv.Reference = reference
		return mv, nil
	})
}

// ReleaseReservation returns earmarked stock of a cancelled order.
func (s *Service) ReleaseReservation(ctx context.Context, productID string, quantity int, reference string) (*domain.Inventory, error) {
	return s.mutate(ctx, productID, func(inv *domain.Inventory) (*domain.StockMovement, error) {
		mv, err := inv.ReleaseReservation(quantity)
		if err != nil {
			return nil, err
		}
		mv.Reference = reference
		return mv, nil
	})
}

// mutate loads the locked inventory row, applies op, and persists the
// inventory update plus its movement in one transaction.
func (s *Service) mutate(ctx context.Context, productID string, op func(*domain.Inventory) (*domain.StockMovement, error)) (*domain.Inventory, error) {
	var result *domain.Inventory
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		inv, err := s.repo.GetByProductIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		mv, err := op(inv)
		if err != nil {
			return mapError(err)
		}
		if err := s.repo.Save(ctx, inv); err != nil {
			return err
		}
		if err := s.repo.AppendMovement(ctx, mv); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AvailableStock returns the buyable quantity of a product.
func (s *Service) AvailableStock(ctx context.Context, productID string) (int, error) {
	inv, err := s.repo.GetByProductID(ctx, productID)
	if err != nil {
		return 0, err
	}
	return inv.Available(), nil
}

// GetProductInventory returns the stock row with its 20 most recent movements.
func (s *Service) GetProductInventory(ctx context.Context, productID string) (*types.InventoryDetail, error) {
	inv, err := s.repo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	movements, err := s.repo.RecentMovements(ctx, inv.ID, 20)
	if err != nil {
		return nil, err
	}
	return &types.InventoryDetail{Inventory: inv, RecentMovements: movements}, nil
}

// GetAllInventory lists every stock row, paginated.
func (s *Service) GetAllInventory(ctx context.Context, params pagination.Params) (*pagination.Page[*domain.Inventory], error) {
	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(items, total, params), nil
}

// GetLowStock lists products at or under their minimum quantity.
func (s *Service) GetLowStock(ctx context.Context, params pagination.Params) (*pagination.Page[*domain.Inventory], error) {
	items, total, err := s.repo.ListLowStock(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(items, total, params), nil
}

// GetMovementHistory lists the movement log of one inventory row, newest first.
func (s *Service) GetMovementHistory(ctx context.Context, inventoryID string, params pagination.Params) (*pagination.Page[*domain.StockMovement], error) {
	movements, total, err := s.repo.ListMovements(ctx, inventoryID, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(movements, total, params), nil
}

var _ ports.Service = (*Service)(nil)
