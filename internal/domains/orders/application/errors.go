package application

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart rejects order creation from a cart with no lines.
	ErrEmptyCart = errors.New("Carrinho está vazio")
	// ErrForbidden rejects a customer reading another user's order.
	ErrForbidden = errors.New("Acesso negado a este pedido")
	// ErrInvalidTransition rejects a status update the state machine forbids.
	ErrInvalidTransition = errors.New("transição de status inválida")
)

// InsufficientStockError names the offending product for display.
type InsufficientStockError struct {
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Estoque insuficiente para %s. Disponível: %d", e.ProductName, e.Available)
}

// ProductUnavailableError reports a cart line whose product has no tracked
// stock at all.
type ProductUnavailableError struct {
	ProductName string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("Produto %s sem estoque", e.ProductName)
}
