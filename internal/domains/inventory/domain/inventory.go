package domain

import (
	"errors"
	"fmt"
	"time"
)

// MovementType classifies one entry of the append-only stock ledger.
type MovementType string

const (
	MovementIn         MovementType = "IN"
	MovementOut        MovementType = "OUT"
	MovementAdjustment MovementType = "ADJUSTMENT"
	MovementReserved   MovementType = "RESERVED"
	MovementReleased   MovementType = "RELEASED"
)

// AdjustmentType selects how a manual stock adjustment computes the new
// on-hand quantity.
type AdjustmentType string

const (
	AdjustSet      AdjustmentType = "set"
	AdjustAdd      AdjustmentType = "add"
	AdjustSubtract AdjustmentType = "subtract"
)

var (
	ErrInvalidAdjustmentType = errors.New("Tipo de ajuste inválido")
	ErrNegativeStock         = errors.New("Estoque não pode ser negativo")
	ErrInvalidQuantity       = errors.New("quantity must be greater than zero")
)

// InsufficientStockError reports a reservation request exceeding the buyable
// stock. It carries the available amount for display.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Estoque insuficiente. Disponível: %d", e.Available)
}

// Inventory is the single stock pool of one product. Quantity is the on-hand
// count; ReservedQty is earmarked for orders not yet payment-confirmed.
type Inventory struct {
	ID          string
	ProductID   string
	Quantity    int
	ReservedQty int
	MinQuantity int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Available is the only number callers outside the ledger may rely on for
// "can I buy N more".
func (i *Inventory) Available() int {
	return i.Quantity - i.ReservedQty
}

// LowStock reports whether on-hand quantity is at or under the threshold.
func (i *Inventory) LowStock() bool {
	return i.Quantity <= i.MinQuantity
}

// Adjust applies a manual stock change and returns the paired movement.
// The on-hand quantity never goes below zero.
func (i *Inventory) Adjust(kind AdjustmentType, quantity int) (*StockMovement, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	prev := i.Quantity
	var next int
	var movement MovementType
	switch kind {
	case AdjustSet:
		next = quantity
		movement = MovementAdjustment
	case AdjustAdd:
		next = prev + quantity
		movement = MovementIn
	case AdjustSubtract:
		next = prev - quantity
		movement = MovementOut
	default:
		return nil, ErrInvalidAdjustmentType
	}
	if next < 0 {
		return nil, ErrNegativeStock
	}
	i.Quantity = next
	delta := next - prev
	if delta < 0 {
		delta = -delta
	}
	return i.newMovement(movement, delta, prev, next), nil
}

// Reserve earmarks stock for an unconfirmed order. On-hand quantity is
// unaffected; the movement snapshots it unchanged.
func (i *Inventory) Reserve(quantity int) (*StockMovement, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if available := i.Available(); available < quantity {
		return nil, &InsufficientStockError{Available: available}
	}
	i.ReservedQty += quantity
	mv := i.newMovement(MovementReserved, quantity, i.Quantity, i.Quantity)
	mv.Reason = "Reserva para pedido"
	return mv, nil
}

// ConfirmReservation converts a reservation into an actual stock decrement;
// this is the point stock leaves the pool.
func (i *Inventory) ConfirmReservation(quantity int) (*StockMovement, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	prev := i.Quantity
	next := prev - quantity
	if next < 0 {
		return nil, ErrNegativeStock
	}
	i.Quantity = next
	i.ReservedQty -= quantity
	if i.ReservedQty < 0 {
		i.ReservedQty = 0
	}
	mv := i.newMovement(MovementOut, quantity, prev, next)
	mv.Reason = "Venda confirmada"
	return mv, nil
}

// ReleaseReservation returns earmarked stock to the buyable pool without
// touching the on-hand quantity.
func (i *Inventory) ReleaseReservation(quantity int) (*StockMovement, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	i.ReservedQty -= quantity
	if i.ReservedQty < 0 {
		i.ReservedQty = 0
	}
	mv := i.newMovement(MovementReleased, quantity, i.Quantity, i.Quantity)
	mv.Reason = "Reserva liberada"
	return mv, nil
}

func (i *Inventory) newMovement(t MovementType, quantity, prev, next int) *StockMovement {
	return &StockMovement{
		InventoryID: i.ID,
		Type:        t,
		Quantity:    quantity,
		PreviousQty: prev,
		NewQty:      next,
	}
}

// StockMovement is one immutable audit record of an inventory mutation.
// PreviousQty and NewQty snapshot the on-hand quantity at write time.
type StockMovement struct {
	ID          string
	InventoryID string
	Type        MovementType
	Quantity    int
	PreviousQty int
	NewQty      int
	Reason      string
	Reference   string
	CreatedBy   string
	CreatedAt   time.Time
}
