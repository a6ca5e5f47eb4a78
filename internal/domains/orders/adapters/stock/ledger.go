// Package stock bridges the order workflow to the inventory ledger, keeping
// the two bounded contexts decoupled at the type level.
package stock

import (
	"context"
	"errors"

	inventorydomain "github.com/dominusaudio/commerce-api/internal/domains/inventory/domain"
	inventoryports "github.com/dominusaudio/commerce-api/internal/domains/inventory/ports"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/ports"
)

// Ledger adapts the inventory service to the orders-side StockLedger port,
// translating the ledger's errors into the workflow's vocabulary.
type Ledger struct {
	inventory inventoryports.Service
}

func NewLedger(inventory inventoryports.Service) *Ledger {
	return &Ledger{inventory: inventory}
}

var _ ports.StockLedger = (*Ledger)(nil)

func (l *Ledger) AvailableStock(ctx context.Context, productID string) (int, error) {
	available, err := l.inventory.AvailableStock(ctx, productID)
	if err != nil {
		return 0, l.translate(productID, err)
	}
	return available, nil
}

func (l *Ledger) ReserveStock(ctx context.Context, productID string, quantity int, reference string) error {
	_, err := l.inventory.ReserveStock(ctx, productID, quantity, reference)
	return l.translate(productID, err)
}

func (l *Ledger) ConfirmReservation(ctx context.Context, productID string, quantity int, reference string) error {
	_, err := l.inventory.ConfirmReservation(ctx, productID, quantity, reference)
	return l.translate(productID, err)
}

func (l *Ledger) ReleaseReservation(ctx context.Context, productID string, quantity int, reference string) error {
	_, err := l.inventory.ReleaseReservation(ctx, productID, quantity, reference)
	return l.translate(productID, err)
}

func (l *Ledger) translate(productID string, err error) error {
	if err == nil {
		return nil
	}
	var shortage *inventorydomain.InsufficientStockError
	switch {
	case errors.Is(err, inventoryports.ErrNotFound):
		return ports.ErrStockNotFound
	case errors.As(err, &shortage):
		return &ports.InsufficientStockError{ProductID: productID, Available: shortage.Available}
	}
	return err
}
